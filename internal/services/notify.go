package services

import (
	"fmt"
	"time"

	"github.com/hunyo/docflow/internal/models"
)

// Builders for the Message records the handlers persist. The dispatcher picks
// them up on creation and forwards them to the providers.

const documentsRequestSubject = "Action required: New documents needed for your application"

func formatDeadline(t time.Time) string {
	return t.Format("January 02, 2006")
}

func documentsRequestSMS(applicantName, companyName, applicantURL string) string {
	return fmt.Sprintf(
		"Hi %s, this is %s. Please click on this link to submit your documentary requirements: %s",
		applicantName, companyName, applicantURL)
}

// documentsRequestMessage asks an applicant to submit their documents via the
// company's configured channels.
func documentsRequestMessage(company models.Company, form models.Form, link string, meta models.MessageMetadata) models.Message {
	applicantName := models.FullName(form.Applicant.Name)
	msg := models.Message{
		CreatedAt:    time.Now(),
		MessageTypes: company.MessageTypes,
	}
	for _, channel := range company.MessageTypes {
		switch channel {
		case models.MessageEmail:
			msg.EmailData = &models.EmailData{
				Subject:    documentsRequestSubject,
				Recipients: []models.Recipient{{Email: form.Applicant.Email, Type: "to"}},
				Body:       form.Dashboard.Messages.Opening,
				FromName:   company.Name,
				Metadata:   &meta,
				Template: &models.EmailTemplate{
					Name: models.TemplateDocumentsRequest,
					Data: map[string]string{
						"FORM_LINK":        link,
						"COMPANY_NAME":     company.Name,
						"COMPANY_DEADLINE": formatDeadline(form.Dashboard.Deadline),
						"APPLICANT_NAME":   applicantName,
					},
				},
			}
		case models.MessageSMS:
			if form.Applicant.PhoneNumbers == nil || form.Applicant.PhoneNumbers.Primary == "" {
				continue
			}
			msg.SMSData = &models.SMSData{
				PhoneNumber: form.Applicant.PhoneNumbers.Primary,
				Message:     documentsRequestSMS(applicantName, company.Name, link),
				SenderName:  company.Name,
				Status:      models.SMSPending,
			}
		}
	}
	return msg
}

// rejectionMessage tells an applicant one of their documents was rejected and
// needs to be resubmitted.
func rejectionMessage(company models.Company, form models.Form, doc models.ApplicantDocument, link string) models.Message {
	applicantName := models.FullName(form.Applicant.Name)
	docName := doc.Name
	if doc.Alias != "" {
		docName = doc.Alias
	}
	msg := models.Message{
		CreatedAt:    time.Now(),
		MessageTypes: []models.MessageType{models.MessageEmail},
		EmailData: &models.EmailData{
			Subject:    fmt.Sprintf("Action required: %s needs to be resubmitted", docName),
			Recipients: []models.Recipient{{Email: form.Applicant.Email, Type: "to"}},
			Body:       form.Dashboard.Messages.Opening,
			FromName:   company.Name,
			Metadata: &models.MessageMetadata{
				CompanyID:   doc.CompanyID,
				DashboardID: doc.DashboardID,
				ApplicantID: doc.ApplicantID,
				FormLink:    link,
			},
			Template: &models.EmailTemplate{
				Name: models.TemplateRejectEmail,
				Data: map[string]string{
					"FORM_LINK":        link,
					"COMPANY_NAME":     company.Name,
					"APPLICANT_NAME":   applicantName,
					"DOCUMENT_NAME":    docName,
					"COMPANY_DEADLINE": formatDeadline(form.Dashboard.Deadline),
				},
			},
		},
	}
	return msg
}

// teamInviteMessage invites a new team member to join a company workspace.
func teamInviteMessage(inviter models.User, invite models.Invite, link string) models.Message {
	inviterName := models.FullName(&inviter.Name)
	return models.Message{
		CreatedAt:    time.Now(),
		MessageTypes: []models.MessageType{models.MessageEmail},
		EmailData: &models.EmailData{
			Subject: fmt.Sprintf("%s has invited you to join %s on Hunyo",
				inviterName, invite.Company.Name),
			Recipients: []models.Recipient{{Email: invite.Email, Type: "to"}},
			Body:       "You have been invited to join your team.",
			FromName:   "Hunyo Team",
			Template: &models.EmailTemplate{
				Name: models.TemplateTeamInvite,
				Data: map[string]string{
					"TEAM_MEMBER_NAME": inviterName,
					"COMPANY_NAME":     invite.Company.Name,
					"INVITE_LINK":      link,
				},
			},
		},
	}
}
