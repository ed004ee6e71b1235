package services

import (
	"context"
	"log/slog"
	"slices"

	"cloud.google.com/go/firestore"

	"github.com/hunyo/docflow/internal/models"
)

// DenormalizeFunction mirrors new team members onto the company's user list
// so access checks never need a subcollection query.
type DenormalizeFunction struct {
	clients *Clients
}

func NewDenormalize(ctx context.Context) (*DenormalizeFunction, error) {
	clients, err := newClients(ctx, false)
	if err != nil {
		return nil, err
	}
	slog.Info("Denormalize handler initialized.")
	return &DenormalizeFunction{clients: clients}, nil
}

func (f *DenormalizeFunction) Process(ctx context.Context, e models.UserCreateEvent) error {
	companyID := e.User.Company.ID
	if companyID == "" {
		companyID = e.CompanyID
	}
	logCtx := slog.With("companyId", companyID, "userId", e.UserID)

	snap, err := f.clients.Refs.Company(companyID).Get(ctx)
	if err != nil {
		logCtx.Error("Company record not found; skipping.", "error", err)
		return nil
	}
	var company models.Company
	if err := snap.DataTo(&company); err != nil {
		logCtx.Error("Failed to decode company record.", "error", err)
		return err
	}

	if slices.Contains(company.Users, e.UserID) {
		logCtx.Info("User already on company list.")
		return nil
	}

	_, err = f.clients.Refs.Company(companyID).Update(ctx, []firestore.Update{
		{Path: "users", Value: firestore.ArrayUnion(e.UserID)},
	})
	if err != nil {
		logCtx.Error("Failed to add user to company list.", "error", err)
		return err
	}
	logCtx.Info("User added to company list.", "name", models.FullName(&e.User.Name))
	return nil
}
