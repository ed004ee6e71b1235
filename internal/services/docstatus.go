package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"

	"github.com/hunyo/docflow/internal/models"
	"github.com/hunyo/docflow/internal/statemachine"
	"github.com/hunyo/docflow/internal/stitcher"
)

// DocStatusFunction processes document status transitions: it plans the
// counter propagation with the state machine, applies the deltas as atomic
// increments, triggers the PDF stitcher on acceptance, and dispatches
// rejection notifications. It also services the manual restitch flag.
type DocStatusFunction struct {
	clients  *Clients
	stitcher *stitcher.Stitcher
	baseURL  string
}

func NewDocStatus(ctx context.Context) (*DocStatusFunction, error) {
	clients, err := newClients(ctx, true)
	if err != nil {
		return nil, err
	}
	f := &DocStatusFunction{
		clients:  clients,
		stitcher: stitcher.New(clients.Refs, clients.Bucket),
		baseURL:  appBaseURL(),
	}
	slog.Info("Document status handler initialized.")
	return f, nil
}

// Process handles one document change. A redelivery where the status did not
// change is a no-op, so counter effects are never double-applied.
func (f *DocStatusFunction) Process(ctx context.Context, e models.DocumentChangeEvent) error {
	prev, next := e.Before, e.After
	logCtx := slog.With(
		"companyId", e.CompanyID,
		"documentId", e.DocumentID,
		"from", prev.Status,
		"to", next.Status,
	)

	if next.RestitchDocument && !prev.RestitchDocument {
		return f.restitch(ctx, logCtx, e.DocumentID, next)
	}

	if prev.Status == next.Status {
		return nil
	}

	// Stale-event guard: only apply effects if the record still holds the
	// status this event claims it moved to.
	snap, err := f.clients.Refs.Document(e.CompanyID, e.DocumentID).Get(ctx)
	if err != nil {
		logCtx.Error("Failed to read document record.", "error", err)
		return err
	}
	var current models.ApplicantDocument
	if err := snap.DataTo(&current); err != nil {
		return fmt.Errorf("failed to decode document %s: %w", e.DocumentID, err)
	}
	if current.Status != next.Status {
		logCtx.Info("Document status moved on, skipping stale event.", "currentStatus", current.Status)
		return nil
	}

	// The in-progress flag is a UI signal and is cleared exactly once per
	// transition, success or not.
	defer f.clearUpdating(ctx, logCtx, e.CompanyID, e.DocumentID)

	company, ok := f.getCompany(ctx, logCtx, e.CompanyID)
	if !ok {
		return nil
	}

	eff, err := statemachine.Plan(prev, next, company.Options.AdminCheck)
	if err != nil {
		if errors.Is(err, statemachine.ErrNoEdge) {
			logCtx.Warn("Ignoring transition with no edge.")
			return nil
		}
		logCtx.Error("Transition rejected.", "error", err)
		return nil
	}
	f.recordNotApplicableToggle(ctx, logCtx, e.DocumentID, prev, next)

	if eff.IsZero() {
		return nil
	}

	f.applyEffects(ctx, logCtx, next, eff)

	if eff.NotifyRejection {
		if err := f.notifyRejection(ctx, logCtx, next); err != nil {
			logCtx.Error("Failed to dispatch rejection notification.", "error", err)
		}
	}

	if eff.Stitch {
		f.runStitch(ctx, logCtx, e.DocumentID, next)
	}

	logCtx.Info("Document transition processed.")
	return nil
}

// recordNotApplicableToggle keeps previousStatus on the document while it is
// waived, so the writer restores the pre-waiver status when toggling back.
func (f *DocStatusFunction) recordNotApplicableToggle(ctx context.Context, logCtx *slog.Logger, docID string, prev, next models.ApplicantDocument) {
	update, ok := previousStatusUpdate(prev, next)
	if !ok {
		return
	}
	if _, err := f.clients.Refs.Document(next.CompanyID, docID).Update(ctx, []firestore.Update{update}); err != nil {
		logCtx.Error("Failed to record previous status.", "error", err)
	}
}

// previousStatusUpdate stores the pre-waiver status when a document is marked
// not-applicable and clears it again on the reverse toggle.
func previousStatusUpdate(prev, next models.ApplicantDocument) (firestore.Update, bool) {
	switch {
	case next.Status == models.DocNotApplicable:
		return firestore.Update{Path: "previousStatus", Value: prev.Status}, true
	case prev.Status == models.DocNotApplicable:
		return firestore.Update{Path: "previousStatus", Value: firestore.Delete}, true
	}
	return firestore.Update{}, false
}

// applyEffects writes the planned deltas. Each write is independent: a failed
// step is logged and later steps still run, matching the no-rollback model.
func (f *DocStatusFunction) applyEffects(ctx context.Context, logCtx *slog.Logger, doc models.ApplicantDocument, eff statemachine.Effects) {
	if eff.FormAdminCheckDocs != 0 && doc.FormID != "" {
		_, err := f.clients.Refs.Form(doc.FormID).Update(ctx, []firestore.Update{
			{Path: "adminCheckDocs", Value: firestore.Increment(eff.FormAdminCheckDocs)},
		})
		if err != nil {
			logCtx.Error("Failed to adjust form adminCheckDocs.", "error", err)
		}
	}

	var applicantUpdates []firestore.Update
	for path, delta := range map[string]int{
		"totalDocs":             eff.TotalDocs,
		"adminAcceptedDocs":     eff.AdminAcceptedDocs,
		"acceptedDocs":          eff.AcceptedDocs,
		"unCheckedOptionalDocs": eff.UnCheckedOptionalDocs,
	} {
		if delta != 0 {
			applicantUpdates = append(applicantUpdates, firestore.Update{
				Path: path, Value: firestore.Increment(delta),
			})
		}
	}
	if len(applicantUpdates) > 0 {
		_, err := f.clients.Refs.Applicant(doc.CompanyID, doc.DashboardID, doc.ApplicantID).
			Update(ctx, applicantUpdates)
		if err != nil {
			logCtx.Error("Failed to adjust applicant counters.", "error", err)
		}
	}

	if eff.DashboardActions != 0 {
		_, err := f.clients.Refs.Dashboard(doc.CompanyID, doc.DashboardID).Update(ctx, []firestore.Update{
			{Path: "actionsCount", Value: firestore.Increment(eff.DashboardActions)},
		})
		if err != nil {
			logCtx.Error("Failed to adjust dashboard actionsCount.", "error", err)
		}
	}
}

// runStitch invokes the stitcher and records the outcome durably on the
// document so a failed stitch is observable without log inspection.
func (f *DocStatusFunction) runStitch(ctx context.Context, logCtx *slog.Logger, docID string, doc models.ApplicantDocument) {
	docRef := f.clients.Refs.Document(doc.CompanyID, docID)
	if _, err := docRef.Update(ctx, []firestore.Update{
		{Path: "stitchStatus", Value: models.StitchPending},
	}); err != nil {
		logCtx.Error("Failed to mark stitch pending.", "error", err)
	}

	stitchErr := f.stitcher.Stitch(ctx, docID, doc)

	updates := []firestore.Update{
		{Path: "stitchStatus", Value: models.StitchComplete},
		{Path: "stitchError", Value: firestore.Delete},
	}
	if stitchErr != nil {
		logCtx.Error("Stitch failed.", "error", stitchErr)
		updates = []firestore.Update{
			{Path: "stitchStatus", Value: models.StitchFailed},
			{Path: "stitchError", Value: stitchErr.Error()},
		}
	}
	if _, err := docRef.Update(ctx, updates); err != nil {
		logCtx.Error("Failed to record stitch outcome.", "error", err)
	}
}

// restitch services the manual re-trigger flag: the flag is always reset,
// whether or not the stitch succeeds.
func (f *DocStatusFunction) restitch(ctx context.Context, logCtx *slog.Logger, docID string, doc models.ApplicantDocument) error {
	logCtx.Info("Manual restitch requested.")
	defer func() {
		_, err := f.clients.Refs.Document(doc.CompanyID, docID).Update(ctx, []firestore.Update{
			{Path: "restitchDocument", Value: false},
		})
		if err != nil {
			logCtx.Error("Failed to reset restitch flag.", "error", err)
		}
	}()

	f.runStitch(ctx, logCtx, docID, doc)
	return nil
}

func (f *DocStatusFunction) notifyRejection(ctx context.Context, logCtx *slog.Logger, doc models.ApplicantDocument) error {
	company, ok := f.getCompany(ctx, logCtx, doc.CompanyID)
	if !ok {
		return fmt.Errorf("company %s not found", doc.CompanyID)
	}
	formSnap, err := f.clients.Refs.Form(doc.FormID).Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to read form %s: %w", doc.FormID, err)
	}
	var form models.Form
	if err := formSnap.DataTo(&form); err != nil {
		return fmt.Errorf("failed to decode form %s: %w", doc.FormID, err)
	}

	msg := rejectionMessage(company, form, doc, formLink(f.baseURL, doc.FormID))
	if _, _, err := f.clients.Refs.Messages().Add(ctx, msg); err != nil {
		return fmt.Errorf("failed to create rejection message: %w", err)
	}
	logCtx.Info("Rejection notification queued.", "applicantId", doc.ApplicantID)
	return nil
}

func (f *DocStatusFunction) getCompany(ctx context.Context, logCtx *slog.Logger, companyID string) (models.Company, bool) {
	snap, err := f.clients.Refs.Company(companyID).Get(ctx)
	if err != nil {
		logCtx.Error("Company record not found; exiting without side effects.", "error", err)
		return models.Company{}, false
	}
	var company models.Company
	if err := snap.DataTo(&company); err != nil {
		logCtx.Error("Failed to decode company record.", "error", err)
		return models.Company{}, false
	}
	return company, true
}

func (f *DocStatusFunction) clearUpdating(ctx context.Context, logCtx *slog.Logger, companyID, docID string) {
	_, err := f.clients.Refs.Document(companyID, docID).Update(ctx, []firestore.Update{
		{Path: "isUpdating", Value: false},
	})
	if err != nil {
		logCtx.Error("Failed to clear isUpdating flag.", "error", err)
	}
}
