package services

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/hunyo/docflow/internal/models"
	"github.com/hunyo/docflow/internal/statemachine"
)

// ReconcilerFunction recomputes applicant and dashboard counters from the
// underlying records and corrects drift. Incremental updates have no rollback
// path, so this runs on a schedule as the repair mechanism.
type ReconcilerFunction struct {
	clients *Clients
}

func NewReconciler(ctx context.Context) (*ReconcilerFunction, error) {
	clients, err := newClients(ctx, false)
	if err != nil {
		return nil, err
	}
	slog.Info("Counter reconciler initialized.")
	return &ReconcilerFunction{clients: clients}, nil
}

// Process reconciles one dashboard, or every dashboard of the company when
// the request names none.
func (f *ReconcilerFunction) Process(ctx context.Context, req models.ReconcileRequest) error {
	if req.CompanyID == "" {
		return fmt.Errorf("reconcile request missing companyId")
	}
	if req.DashboardID != "" {
		return f.reconcileDashboard(ctx, req.CompanyID, req.DashboardID)
	}

	iter := f.clients.Refs.Dashboards(req.CompanyID).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to list dashboards: %w", err)
		}
		if err := f.reconcileDashboard(ctx, req.CompanyID, snap.Ref.ID); err != nil {
			slog.Error("Dashboard reconcile failed.", "dashboardId", snap.Ref.ID, "error", err)
		}
	}
	return nil
}

func (f *ReconcilerFunction) reconcileDashboard(ctx context.Context, companyID, dashboardID string) error {
	logCtx := slog.With("companyId", companyID, "dashboardId", dashboardID)

	dashSnap, err := f.clients.Refs.Dashboard(companyID, dashboardID).Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to read dashboard %s: %w", dashboardID, err)
	}
	var dashboard models.Dashboard
	if err := dashSnap.DataTo(&dashboard); err != nil {
		return fmt.Errorf("failed to decode dashboard %s: %w", dashboardID, err)
	}
	if !dashboard.IsPublished {
		return nil
	}

	applicantIDs, applicants, err := f.loadApplicants(ctx, companyID, dashboardID)
	if err != nil {
		return err
	}
	docsByApplicant, allDocs, err := f.loadDocuments(ctx, companyID, dashboardID)
	if err != nil {
		return err
	}

	corrected := 0
	for i, id := range applicantIDs {
		canonical := statemachine.RecomputeApplicantCounters(docsByApplicant[id])
		diff := canonical.Diff(applicants[i])
		if diff == nil {
			continue
		}
		corrected++
		logCtx.Warn("Correcting applicant counters.", "applicantId", id, "corrections", diff)
		var updates []firestore.Update
		for path, value := range diff {
			updates = append(updates, firestore.Update{Path: path, Value: value})
		}
		if _, err := f.clients.Refs.Applicant(companyID, dashboardID, id).Update(ctx, updates); err != nil {
			logCtx.Error("Failed to correct applicant counters.", "applicantId", id, "error", err)
		}
	}

	canonical := statemachine.RecomputeDashboardCounters(applicants, allDocs)
	if diff := canonical.Diff(dashboard); diff != nil {
		corrected++
		logCtx.Warn("Correcting dashboard counters.", "corrections", diff)
		var updates []firestore.Update
		for path, value := range diff {
			updates = append(updates, firestore.Update{Path: path, Value: value})
		}
		if _, err := f.clients.Refs.Dashboard(companyID, dashboardID).Update(ctx, updates); err != nil {
			logCtx.Error("Failed to correct dashboard counters.", "error", err)
		}
	}

	if corrected == 0 {
		logCtx.Info("Counters consistent.")
	} else {
		logCtx.Info("Reconcile complete.", "corrections", corrected)
	}
	return nil
}

func (f *ReconcilerFunction) loadApplicants(ctx context.Context, companyID, dashboardID string) ([]string, []models.Applicant, error) {
	var ids []string
	var applicants []models.Applicant
	iter := f.clients.Refs.Applicants(companyID, dashboardID).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list applicants: %w", err)
		}
		var a models.Applicant
		if err := snap.DataTo(&a); err != nil {
			return nil, nil, fmt.Errorf("failed to decode applicant %s: %w", snap.Ref.ID, err)
		}
		ids = append(ids, snap.Ref.ID)
		applicants = append(applicants, a)
	}
	return ids, applicants, nil
}

func (f *ReconcilerFunction) loadDocuments(ctx context.Context, companyID, dashboardID string) (map[string][]models.ApplicantDocument, []models.ApplicantDocument, error) {
	byApplicant := make(map[string][]models.ApplicantDocument)
	var all []models.ApplicantDocument
	iter := f.clients.Refs.Documents(companyID).
		Where("dashboardId", "==", dashboardID).
		Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list documents: %w", err)
		}
		var doc models.ApplicantDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, nil, fmt.Errorf("failed to decode document %s: %w", snap.Ref.ID, err)
		}
		byApplicant[doc.ApplicantID] = append(byApplicant[doc.ApplicantID], doc)
		all = append(all, doc)
	}
	return byApplicant, all, nil
}
