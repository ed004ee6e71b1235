package services

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"

	"github.com/hunyo/docflow/internal/gcp"
	"github.com/hunyo/docflow/internal/models"
	"github.com/hunyo/docflow/internal/statemachine"
)

// ApplicantStatusFunction derives applicant status from counter updates and
// keeps the dashboard aggregates and the form read model in step. It also
// services the resend-link flag and soft deletes.
type ApplicantStatusFunction struct {
	clients *Clients
	policy  statemachine.RegressionPolicy
	baseURL string
}

func NewApplicantStatus(ctx context.Context) (*ApplicantStatusFunction, error) {
	clients, err := newClients(ctx, false)
	if err != nil {
		return nil, err
	}
	policy := statemachine.ForwardOnly
	if gcp.GetEnv("ALLOW_STATUS_REGRESSION", "false") == "true" {
		policy = statemachine.AllowRegression
	}
	f := &ApplicantStatusFunction{
		clients: clients,
		policy:  policy,
		baseURL: appBaseURL(),
	}
	slog.Info("Applicant status handler initialized.")
	return f, nil
}

func (f *ApplicantStatusFunction) Process(ctx context.Context, e models.ApplicantChangeEvent) error {
	if e.Created {
		return nil
	}
	prev, next := e.Before, e.After
	logCtx := slog.With(
		"companyId", e.CompanyID,
		"dashboardId", e.DashboardID,
		"applicantId", e.ApplicantID,
	)

	if next.IsDeleted && !prev.IsDeleted {
		return f.softDelete(ctx, logCtx, e)
	}

	if next.ResendLink && !prev.ResendLink {
		if err := f.resendLink(ctx, logCtx, e); err != nil {
			logCtx.Error("Failed to resend form link.", "error", err)
		}
	}

	progress := statemachine.ApplicantProgress(prev, next, f.policy)
	if !progress.Changed {
		return nil
	}

	_, err := f.clients.Refs.Applicant(e.CompanyID, e.DashboardID, e.ApplicantID).
		Update(ctx, []firestore.Update{
			{Path: "status", Value: progress.NewStatus},
		})
	if err != nil {
		logCtx.Error("Failed to write applicant status.", "error", err)
		return err
	}

	var dashUpdates []firestore.Update
	if progress.IncompleteApplicants != 0 {
		dashUpdates = append(dashUpdates, firestore.Update{
			Path: "incompleteApplicantsCount", Value: firestore.Increment(progress.IncompleteApplicants),
		})
	}
	if progress.CompleteApplicants != 0 {
		dashUpdates = append(dashUpdates, firestore.Update{
			Path: "completeApplicantsCount", Value: firestore.Increment(progress.CompleteApplicants),
		})
	}
	if len(dashUpdates) > 0 {
		_, err := f.clients.Refs.Dashboard(e.CompanyID, e.DashboardID).Update(ctx, dashUpdates)
		if err != nil {
			logCtx.Error("Failed to adjust dashboard applicant counters.", "error", err)
		}
	}

	if next.FormID != "" {
		_, err := f.clients.Refs.Form(next.FormID).Update(ctx, []firestore.Update{
			{Path: "applicant.status", Value: progress.NewStatus},
		})
		if err != nil {
			logCtx.Error("Failed to sync form applicant status.", "error", err)
		}
	}

	logCtx.Info("Applicant status updated.", "status", progress.NewStatus)
	return nil
}

// softDelete retires the applicant from the dashboard aggregates and hides
// the form. The applicant record itself stays for audit.
func (f *ApplicantStatusFunction) softDelete(ctx context.Context, logCtx *slog.Logger, e models.ApplicantChangeEvent) error {
	a := e.After
	updates := []firestore.Update{
		{Path: "applicantsCount", Value: firestore.Increment(-1)},
	}
	switch a.Status {
	case models.ApplicantIncomplete:
		updates = append(updates, firestore.Update{
			Path: "incompleteApplicantsCount", Value: firestore.Increment(-1),
		})
	case models.ApplicantComplete:
		updates = append(updates, firestore.Update{
			Path: "completeApplicantsCount", Value: firestore.Increment(-1),
		})
	}
	if _, err := f.clients.Refs.Dashboard(e.CompanyID, e.DashboardID).Update(ctx, updates); err != nil {
		logCtx.Error("Failed to retire applicant from dashboard counters.", "error", err)
		return err
	}

	if a.FormID != "" {
		_, err := f.clients.Refs.Form(a.FormID).Update(ctx, []firestore.Update{
			{Path: "isDeleted", Value: true},
		})
		if err != nil {
			logCtx.Error("Failed to hide applicant form.", "error", err)
		}
	}
	logCtx.Info("Applicant soft-deleted.")
	return nil
}

// resendLink re-queues the documents request message and resets the flag.
func (f *ApplicantStatusFunction) resendLink(ctx context.Context, logCtx *slog.Logger, e models.ApplicantChangeEvent) error {
	a := e.After
	if a.FormID == "" {
		return fmt.Errorf("applicant %s has no form to resend", e.ApplicantID)
	}

	companySnap, err := f.clients.Refs.Company(e.CompanyID).Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to read company %s: %w", e.CompanyID, err)
	}
	var company models.Company
	if err := companySnap.DataTo(&company); err != nil {
		return fmt.Errorf("failed to decode company %s: %w", e.CompanyID, err)
	}

	formSnap, err := f.clients.Refs.Form(a.FormID).Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to read form %s: %w", a.FormID, err)
	}
	var form models.Form
	if err := formSnap.DataTo(&form); err != nil {
		return fmt.Errorf("failed to decode form %s: %w", a.FormID, err)
	}

	meta := models.MessageMetadata{
		ApplicantID: e.ApplicantID,
		DashboardID: e.DashboardID,
		CompanyID:   e.CompanyID,
		FormLink:    formLink(f.baseURL, a.FormID),
	}
	msg := documentsRequestMessage(company, form, meta.FormLink, meta)
	if _, _, err := f.clients.Refs.Messages().Add(ctx, msg); err != nil {
		return fmt.Errorf("failed to queue resend message: %w", err)
	}

	logCtx.Info("Form link resend queued.")
	return nil
}
