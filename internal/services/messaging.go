package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/hunyo/docflow/internal/gcp"
	"github.com/hunyo/docflow/internal/models"
	"github.com/hunyo/docflow/internal/providers"
)

// MessagingConfig holds the provider credentials for the dispatcher.
type MessagingConfig struct {
	MandrillAPIKey  string
	SemaphoreAPIKey string
	FromEmail       string
	SMSSenderName   string
}

// MessagingFunction turns persisted Message records into provider sends and
// writes delivery outcomes back onto the Message and the owning Applicant.
type MessagingFunction struct {
	clients *Clients
	email   providers.EmailProvider
	sms     providers.SMSProvider
	config  MessagingConfig
}

func NewMessaging(ctx context.Context) (*MessagingFunction, error) {
	config := MessagingConfig{
		MandrillAPIKey:  gcp.GetEnv("MANDRILL_API_KEY", ""),
		SemaphoreAPIKey: gcp.GetEnv("SEMAPHORE_API_KEY", ""),
		FromEmail:       gcp.GetEnv("FROM_EMAIL", "info@hunyo.com"),
		SMSSenderName:   gcp.GetEnv("SMS_SENDER_NAME", "Hunyo"),
	}
	if config.MandrillAPIKey == "" {
		return nil, fmt.Errorf("MANDRILL_API_KEY environment variable must be set")
	}

	clients, err := newClients(ctx, false)
	if err != nil {
		return nil, err
	}

	f := &MessagingFunction{
		clients: clients,
		email:   providers.NewMandrillClient(config.MandrillAPIKey, config.FromEmail),
		sms:     providers.NewSemaphoreClient(config.SemaphoreAPIKey),
		config:  config,
	}
	slog.Info("Messaging dispatcher initialized.")
	return f, nil
}

// ProcessCreate forwards a newly created Message to the requested providers.
// Provider failures are logged and leave the Message without response data;
// there is no automatic retry.
func (f *MessagingFunction) ProcessCreate(ctx context.Context, e models.MessageChangeEvent) error {
	msg := e.After
	logCtx := slog.With("messageId", e.MessageID)

	for _, channel := range msg.MessageTypes {
		switch channel {
		case models.MessageEmail:
			f.dispatchEmail(ctx, logCtx, e.MessageID, msg)
		case models.MessageSMS:
			f.dispatchSMS(ctx, logCtx, e.MessageID, msg)
		default:
			logCtx.Warn("Unknown message channel.", "channel", channel)
		}
	}

	if msg.EmailData != nil && msg.EmailData.Metadata != nil {
		f.recordSend(ctx, logCtx, e.MessageID, *msg.EmailData.Metadata)
	}
	return nil
}

func (f *MessagingFunction) dispatchEmail(ctx context.Context, logCtx *slog.Logger, messageID string, msg models.Message) {
	if msg.EmailData == nil {
		logCtx.Warn("Email channel requested but no emailData present.")
		return
	}
	resp, err := f.email.Send(ctx, *msg.EmailData)
	if err != nil {
		logCtx.Error("Email provider send failed.", "error", err)
		return
	}
	_, err = f.clients.Refs.Message(messageID).Update(ctx, []firestore.Update{
		{Path: "emailData.messageResponseData", Value: resp},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		logCtx.Error("Failed to record email provider response.", "error", err)
	}
}

func (f *MessagingFunction) dispatchSMS(ctx context.Context, logCtx *slog.Logger, messageID string, msg models.Message) {
	if msg.SMSData == nil {
		logCtx.Warn("SMS channel requested but no smsData present.")
		return
	}
	status := models.SMSSent
	if err := f.sms.Send(ctx, *msg.SMSData); err != nil {
		logCtx.Error("SMS provider send failed.", "error", err)
		status = models.SMSFailed
	}
	_, err := f.clients.Refs.Message(messageID).Update(ctx, []firestore.Update{
		{Path: "smsData.status", Value: status},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		logCtx.Error("Failed to record sms status.", "error", err)
	}
}

// recordSend bumps the dashboard send counter and stamps the applicant's
// latestMessage as pending delivery.
func (f *MessagingFunction) recordSend(ctx context.Context, logCtx *slog.Logger, messageID string, meta models.MessageMetadata) {
	if meta.CompanyID == "" || meta.DashboardID == "" || meta.ApplicantID == "" {
		return
	}
	_, err := f.clients.Refs.Dashboard(meta.CompanyID, meta.DashboardID).Update(ctx, []firestore.Update{
		{Path: "messagesSentCount", Value: firestore.Increment(1)},
	})
	if err != nil {
		logCtx.Error("Failed to increment messagesSentCount.", "error", err)
	}
	_, err = f.clients.Refs.Applicant(meta.CompanyID, meta.DashboardID, meta.ApplicantID).Update(ctx, []firestore.Update{
		{Path: "latestMessage", Value: models.LatestMessage{
			ID:     messageID,
			Status: models.DeliveryPending,
			SentAt: time.Now(),
		}},
	})
	if err != nil {
		logCtx.Error("Failed to stamp applicant latestMessage.", "error", err)
	}
}

// ProcessUpdate propagates a provider delivery-status update onto the owning
// applicant and re-arms the resend flag.
func (f *MessagingFunction) ProcessUpdate(ctx context.Context, e models.MessageChangeEvent) error {
	prev, next := e.Before, e.After
	if next.EmailData == nil || next.EmailData.Metadata == nil {
		return nil
	}
	newResp := next.EmailData.MessageResponseData
	if newResp == nil {
		return nil
	}
	if prev.EmailData != nil && prev.EmailData.MessageResponseData != nil &&
		prev.EmailData.MessageResponseData.Status == newResp.Status {
		return nil
	}

	meta := *next.EmailData.Metadata
	status := SimplifyDeliveryStatus(newResp.Status)
	_, err := f.clients.Refs.Applicant(meta.CompanyID, meta.DashboardID, meta.ApplicantID).Update(ctx, []firestore.Update{
		{Path: "latestMessage.status", Value: status},
		{Path: "resendLink", Value: false},
	})
	if err != nil {
		return fmt.Errorf("failed to propagate delivery status: %w", err)
	}
	slog.Info("Propagated message delivery status.",
		"messageId", e.MessageID, "providerStatus", newResp.Status, "status", status)
	return nil
}

// SimplifyDeliveryStatus collapses the provider's status vocabulary into the
// two values the applicant dashboard shows.
func SimplifyDeliveryStatus(providerStatus string) models.MessageDeliveryStatus {
	switch providerStatus {
	case "sent", "queued", "scheduled", "delivered":
		return models.DeliveryDelivered
	default:
		return models.DeliveryNotDelivered
	}
}
