package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunyo/docflow/internal/models"
)

func testForm() models.Form {
	return models.Form{
		Applicant: models.FormApplicant{
			ID:    "a1",
			Email: "juan@example.ph",
			Name:  &models.PersonName{First: "Juan", Last: "dela Cruz"},
			PhoneNumbers: &models.PhoneNumbers{
				Primary: "+63 917 555 0199",
			},
		},
		Company: models.FormCompany{ID: "c1", Name: "Acme Recruiting"},
		Dashboard: models.FormDashboard{
			ID:       "d1",
			Deadline: time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
			Messages: models.DashboardMessages{Opening: "Welcome to your application."},
		},
	}
}

func TestDocumentsRequestMessageBothChannels(t *testing.T) {
	company := models.Company{
		Name:         "Acme Recruiting",
		MessageTypes: []models.MessageType{models.MessageEmail, models.MessageSMS},
	}
	meta := models.MessageMetadata{ApplicantID: "a1", DashboardID: "d1", CompanyID: "c1"}

	msg := documentsRequestMessage(company, testForm(), "https://hunyo.design/applicant/forms/f1", meta)

	require.NotNil(t, msg.EmailData)
	assert.Equal(t, documentsRequestSubject, msg.EmailData.Subject)
	assert.Equal(t, []models.Recipient{{Email: "juan@example.ph", Type: "to"}}, msg.EmailData.Recipients)
	require.NotNil(t, msg.EmailData.Template)
	assert.Equal(t, models.TemplateDocumentsRequest, msg.EmailData.Template.Name)
	assert.Equal(t, "https://hunyo.design/applicant/forms/f1", msg.EmailData.Template.Data["FORM_LINK"])
	assert.Equal(t, "Acme Recruiting", msg.EmailData.Template.Data["COMPANY_NAME"])
	assert.Equal(t, "March 15, 2024", msg.EmailData.Template.Data["COMPANY_DEADLINE"])
	assert.Equal(t, "Juan dela Cruz", msg.EmailData.Template.Data["APPLICANT_NAME"])

	require.NotNil(t, msg.SMSData)
	assert.Equal(t, "+63 917 555 0199", msg.SMSData.PhoneNumber)
	assert.Equal(t, models.SMSPending, msg.SMSData.Status)
	assert.Contains(t, msg.SMSData.Message, "Juan dela Cruz")
	assert.Contains(t, msg.SMSData.Message, "https://hunyo.design/applicant/forms/f1")
}

func TestDocumentsRequestMessageSkipsSMSWithoutNumber(t *testing.T) {
	company := models.Company{
		Name:         "Acme Recruiting",
		MessageTypes: []models.MessageType{models.MessageEmail, models.MessageSMS},
	}
	form := testForm()
	form.Applicant.PhoneNumbers = nil

	msg := documentsRequestMessage(company, form, "link", models.MessageMetadata{})
	require.NotNil(t, msg.EmailData)
	assert.Nil(t, msg.SMSData)
}

func TestRejectionMessageUsesAlias(t *testing.T) {
	company := models.Company{Name: "Acme Recruiting"}
	doc := models.ApplicantDocument{
		CompanyID:   "c1",
		DashboardID: "d1",
		ApplicantID: "a1",
		Name:        "nbi-clearance",
		Alias:       "NBI Clearance",
	}

	msg := rejectionMessage(company, testForm(), doc, "https://hunyo.design/applicant/forms/f1")

	require.NotNil(t, msg.EmailData)
	assert.Contains(t, msg.EmailData.Subject, "NBI Clearance")
	require.NotNil(t, msg.EmailData.Template)
	assert.Equal(t, models.TemplateRejectEmail, msg.EmailData.Template.Name)
	assert.Equal(t, "NBI Clearance", msg.EmailData.Template.Data["DOCUMENT_NAME"])
	require.NotNil(t, msg.EmailData.Metadata)
	assert.Equal(t, "a1", msg.EmailData.Metadata.ApplicantID)
	assert.Equal(t, "https://hunyo.design/applicant/forms/f1", msg.EmailData.Metadata.FormLink)
}

func TestTeamInviteMessage(t *testing.T) {
	inviter := models.User{Name: models.PersonName{First: "Maria", Last: "Santos"}}
	invite := models.Invite{
		Email:   "newhire@example.ph",
		Company: models.CompanyRef{ID: "c1", Name: "Acme Recruiting"},
	}

	msg := teamInviteMessage(inviter, invite, "https://hunyo.design/invites/i1")

	require.NotNil(t, msg.EmailData)
	assert.Equal(t, "Maria Santos has invited you to join Acme Recruiting on Hunyo", msg.EmailData.Subject)
	assert.Equal(t, "Hunyo Team", msg.EmailData.FromName)
	require.NotNil(t, msg.EmailData.Template)
	assert.Equal(t, models.TemplateTeamInvite, msg.EmailData.Template.Name)
	assert.Equal(t, "Maria Santos", msg.EmailData.Template.Data["TEAM_MEMBER_NAME"])
	assert.Equal(t, "https://hunyo.design/invites/i1", msg.EmailData.Template.Data["INVITE_LINK"])
}

func TestFormatDeadline(t *testing.T) {
	assert.Equal(t, "January 02, 2026", formatDeadline(time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)))
}
