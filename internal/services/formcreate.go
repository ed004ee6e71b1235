package services

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"golang.org/x/sync/errgroup"

	"github.com/hunyo/docflow/internal/models"
)

// FormCreateFunction builds the applicant-facing read model: when an
// applicant record appears it creates the form plus one document record per
// configured document type, and when the form itself appears it queues the
// documents-request notification.
type FormCreateFunction struct {
	clients *Clients
	baseURL string
}

func NewFormCreate(ctx context.Context) (*FormCreateFunction, error) {
	clients, err := newClients(ctx, false)
	if err != nil {
		return nil, err
	}
	slog.Info("Form creation handler initialized.")
	return &FormCreateFunction{clients: clients, baseURL: appBaseURL()}, nil
}

// ProcessApplicantCreate creates the form and fans out the document records.
// Missing company or dashboard parents are logged and skipped so a malformed
// event does not retry forever.
func (f *FormCreateFunction) ProcessApplicantCreate(ctx context.Context, e models.ApplicantChangeEvent) error {
	if !e.Created {
		return nil
	}
	applicant := e.After
	logCtx := slog.With(
		"companyId", e.CompanyID,
		"dashboardId", e.DashboardID,
		"applicantId", e.ApplicantID,
	)

	companySnap, err := f.clients.Refs.Company(e.CompanyID).Get(ctx)
	if err != nil {
		logCtx.Error("Company record not found; skipping form creation.", "error", err)
		return nil
	}
	var company models.Company
	if err := companySnap.DataTo(&company); err != nil {
		return fmt.Errorf("failed to decode company %s: %w", e.CompanyID, err)
	}

	dashboardSnap, err := f.clients.Refs.Dashboard(e.CompanyID, e.DashboardID).Get(ctx)
	if err != nil {
		logCtx.Error("Dashboard record not found; skipping form creation.", "error", err)
		return nil
	}
	var dashboard models.Dashboard
	if err := dashboardSnap.DataTo(&dashboard); err != nil {
		return fmt.Errorf("failed to decode dashboard %s: %w", e.DashboardID, err)
	}

	form := models.Form{
		Applicant: models.FormApplicant{
			ID:           e.ApplicantID,
			Status:       models.ApplicantNotSubmitted,
			Name:         applicant.Name,
			Email:        applicant.Email,
			PhoneNumbers: applicant.PhoneNumbers,
		},
		Company: models.FormCompany{
			ID:   e.CompanyID,
			Logo: company.Logo,
			Name: company.Name,
		},
		Dashboard: models.FormDashboard{
			ID:          e.DashboardID,
			FormContent: dashboard.FormContent,
			Deadline:    dashboard.Deadline,
			Job:         dashboard.Job,
			Country:     dashboard.Country,
			Messages:    dashboard.Messages,
		},
	}
	formRef, _, err := f.clients.Refs.Forms().Add(ctx, form)
	if err != nil {
		return fmt.Errorf("failed to create form: %w", err)
	}

	_, err = f.clients.Refs.Applicant(e.CompanyID, e.DashboardID, e.ApplicantID).
		Update(ctx, []firestore.Update{
			{Path: "formId", Value: formRef.ID},
		})
	if err != nil {
		logCtx.Error("Failed to link form onto applicant.", "error", err)
	}

	documents := f.clients.Refs.Documents(e.CompanyID)
	g, gctx := errgroup.WithContext(ctx)
	for name, doc := range dashboard.Docs {
		g.Go(func() error {
			_, _, err := documents.Add(gctx, models.ApplicantDocument{
				FormID:          formRef.ID,
				DashboardID:     e.DashboardID,
				ApplicantID:     e.ApplicantID,
				CompanyID:       e.CompanyID,
				Name:            name,
				Alias:           doc.Alias,
				RequestedFormat: doc.Format,
				IsRequired:      doc.IsRequired,
				Sample:          doc.Sample,
				Instructions:    doc.Instructions,
				DocNumber:       doc.DocNumber,
				Status:          models.DocNotSubmitted,
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to create document records: %w", err)
	}

	logCtx.Info("Form and document records created.", "formId", formRef.ID, "documents", len(dashboard.Docs))
	return nil
}

// ProcessFormCreate queues the initial documents-request message for a newly
// created form.
func (f *FormCreateFunction) ProcessFormCreate(ctx context.Context, e models.FormChangeEvent) error {
	if !e.Created {
		return nil
	}
	form := e.After
	logCtx := slog.With("formId", e.FormID, "companyId", form.Company.ID)

	companySnap, err := f.clients.Refs.Company(form.Company.ID).Get(ctx)
	if err != nil {
		logCtx.Error("Company record not found; skipping notification.", "error", err)
		return nil
	}
	var company models.Company
	if err := companySnap.DataTo(&company); err != nil {
		return fmt.Errorf("failed to decode company %s: %w", form.Company.ID, err)
	}

	meta := models.MessageMetadata{
		ApplicantID: form.Applicant.ID,
		DashboardID: form.Dashboard.ID,
		CompanyID:   form.Company.ID,
	}
	msg := documentsRequestMessage(company, form, formLink(f.baseURL, e.FormID), meta)
	if _, _, err := f.clients.Refs.Messages().Add(ctx, msg); err != nil {
		return fmt.Errorf("failed to queue documents request message: %w", err)
	}

	logCtx.Info("Documents request queued.", "applicantId", form.Applicant.ID)
	return nil
}

// ProcessFormUpdate propagates an applicant-name edit made on the form back
// onto the applicant record, which is the name every other surface reads.
func (f *FormCreateFunction) ProcessFormUpdate(ctx context.Context, e models.FormChangeEvent) error {
	if e.Created {
		return nil
	}
	form := e.After
	if !applicantNameChanged(e.Before.Applicant.Name, form.Applicant.Name) {
		return nil
	}

	ref := f.clients.Refs.Applicant(form.Company.ID, form.Dashboard.ID, form.Applicant.ID)
	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "name", Value: form.Applicant.Name},
	})
	if err != nil {
		return fmt.Errorf("failed to sync applicant name from form %s: %w", e.FormID, err)
	}

	slog.Info("Applicant name synced from form.", "formId", e.FormID, "applicantId", form.Applicant.ID)
	return nil
}

func applicantNameChanged(prev, next *models.PersonName) bool {
	if (prev == nil) != (next == nil) {
		return true
	}
	if prev == nil {
		return false
	}
	return *prev != *next
}
