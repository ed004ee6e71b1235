package services

import (
	"context"
	"log/slog"

	"cloud.google.com/go/firestore"
	"golang.org/x/sync/errgroup"

	"github.com/hunyo/docflow/internal/models"
)

// DashboardPublishFunction fans the one-way draft→published flip out into one
// applicant record per queued invite and seeds the dashboard aggregates.
type DashboardPublishFunction struct {
	clients *Clients
}

func NewDashboardPublish(ctx context.Context) (*DashboardPublishFunction, error) {
	clients, err := newClients(ctx, false)
	if err != nil {
		return nil, err
	}
	slog.Info("Dashboard publish handler initialized.")
	return &DashboardPublishFunction{clients: clients}, nil
}

func (f *DashboardPublishFunction) Process(ctx context.Context, e models.DashboardChangeEvent) error {
	prev, next := e.Before, e.After
	if !next.IsPublished || prev.IsPublished {
		return nil
	}
	logCtx := slog.With("companyId", e.CompanyID, "dashboardId", e.DashboardID)
	logCtx.Info("Dashboard published.", "applicants", len(next.NewApplicants))

	if len(next.NewApplicants) == 0 {
		return nil
	}

	seeds := SeedApplicants(next, e.DashboardID)
	applicants := f.clients.Refs.Applicants(e.CompanyID, e.DashboardID)

	g, gctx := errgroup.WithContext(ctx)
	for _, seed := range seeds {
		g.Go(func() error {
			_, _, err := applicants.Add(gctx, seed)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		logCtx.Error("Failed to create applicant records.", "error", err)
		return err
	}

	n := len(seeds)
	_, err := f.clients.Refs.Dashboard(e.CompanyID, e.DashboardID).Update(ctx, []firestore.Update{
		{Path: "applicantsCount", Value: firestore.Increment(n)},
		{Path: "incompleteApplicantsCount", Value: firestore.Increment(n)},
		{Path: "newApplicants", Value: []models.ApplicantItem{}},
	})
	if err != nil {
		logCtx.Error("Failed to seed dashboard counters.", "error", err)
		return err
	}

	logCtx.Info("Applicants created from publish.", "count", n)
	return nil
}

// SeedApplicants builds the initial applicant records for a dashboard's
// invite queue. TotalDocs starts at the number of required document types;
// optional documents are tracked separately and only count once accepted.
func SeedApplicants(d models.Dashboard, dashboardID string) []models.Applicant {
	required := 0
	for _, doc := range d.Docs {
		if doc.IsRequired {
			required++
		}
	}

	seeds := make([]models.Applicant, 0, len(d.NewApplicants))
	for _, item := range d.NewApplicants {
		seeds = append(seeds, models.Applicant{
			Email:        item.Email,
			Name:         item.Name,
			PhoneNumbers: item.PhoneNumbers,
			Address:      item.Address,
			Dashboard:    models.ApplicantDashboard{ID: dashboardID},
			Status:       models.ApplicantNotSubmitted,
			TotalDocs:    required,
		})
	}
	return seeds
}
