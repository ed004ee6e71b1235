package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hunyo/docflow/internal/models"
)

// InviteFunction mails team-member invitations. The inviter's name is read
// from the company's user list to personalize the message.
type InviteFunction struct {
	clients *Clients
	baseURL string
}

func NewInvite(ctx context.Context) (*InviteFunction, error) {
	clients, err := newClients(ctx, false)
	if err != nil {
		return nil, err
	}
	slog.Info("Invite handler initialized.")
	return &InviteFunction{clients: clients, baseURL: appBaseURL()}, nil
}

func (f *InviteFunction) Process(ctx context.Context, e models.InviteCreateEvent) error {
	invite := e.Invite
	logCtx := slog.With("inviteId", e.InviteID, "companyId", invite.Company.ID)

	userSnap, err := f.clients.Refs.User(invite.Company.ID, invite.InvitedBy).Get(ctx)
	if err != nil {
		return fmt.Errorf("inviting user %s not found: %w", invite.InvitedBy, err)
	}
	var inviter models.User
	if err := userSnap.DataTo(&inviter); err != nil {
		return fmt.Errorf("failed to decode user %s: %w", invite.InvitedBy, err)
	}

	msg := teamInviteMessage(inviter, invite, inviteLink(f.baseURL, e.InviteID))
	if _, _, err := f.clients.Refs.Messages().Add(ctx, msg); err != nil {
		return fmt.Errorf("failed to queue invite message: %w", err)
	}

	logCtx.Info("Invite message queued.", "email", invite.Email)
	return nil
}
