// Package providers holds the thin typed clients for the external SaaS
// collaborators: transactional email, SMS, and image analysis. Each sits
// behind an interface so the services can be exercised without the network.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hunyo/docflow/internal/models"
)

// EmailProvider sends one email and reports the provider's per-recipient
// outcome for the first recipient.
type EmailProvider interface {
	Send(ctx context.Context, email models.EmailData) (models.MessageResponse, error)
}

const mandrillBaseURL = "https://mandrillapp.com/api/1.0"

// MandrillClient talks to the Mailchimp Transactional (Mandrill) API.
type MandrillClient struct {
	APIKey     string
	FromEmail  string
	BaseURL    string
	HTTPClient *http.Client
}

func NewMandrillClient(apiKey, fromEmail string) *MandrillClient {
	return &MandrillClient{
		APIKey:     apiKey,
		FromEmail:  fromEmail,
		BaseURL:    mandrillBaseURL,
		HTTPClient: http.DefaultClient,
	}
}

type mandrillRecipient struct {
	Email string `json:"email"`
	Type  string `json:"type,omitempty"`
}

type mandrillMergeVar struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type mandrillMessage struct {
	FromEmail       string              `json:"from_email"`
	FromName        string              `json:"from_name,omitempty"`
	Subject         string              `json:"subject"`
	Text            string              `json:"text"`
	HTML            string              `json:"html"`
	To              []mandrillRecipient `json:"to"`
	TrackOpens      bool                `json:"track_opens"`
	TrackClicks     bool                `json:"track_clicks"`
	GlobalMergeVars []mandrillMergeVar  `json:"global_merge_vars,omitempty"`
}

type mandrillSendRequest struct {
	Key             string          `json:"key"`
	Message         mandrillMessage `json:"message"`
	TemplateName    string          `json:"template_name,omitempty"`
	TemplateContent []struct{}      `json:"template_content,omitempty"`
}

type mandrillSendResponse struct {
	ID           string `json:"_id"`
	Email        string `json:"email"`
	Status       string `json:"status"`
	RejectReason string `json:"reject_reason"`
}

// Send posts to messages/send.json, or messages/send-template.json when the
// email names a stored template, and returns the first recipient's outcome.
func (c *MandrillClient) Send(ctx context.Context, email models.EmailData) (models.MessageResponse, error) {
	msg := mandrillMessage{
		FromEmail:   c.FromEmail,
		FromName:    email.FromName,
		Subject:     email.Subject,
		Text:        email.Body,
		HTML:        email.Body,
		TrackOpens:  true,
		TrackClicks: true,
	}
	for _, r := range email.Recipients {
		msg.To = append(msg.To, mandrillRecipient{Email: r.Email, Type: r.Type})
	}

	endpoint := c.BaseURL + "/messages/send.json"
	req := mandrillSendRequest{Key: c.APIKey, Message: msg}
	if email.Template != nil {
		endpoint = c.BaseURL + "/messages/send-template.json"
		req.TemplateName = email.Template.Name
		req.TemplateContent = []struct{}{}
		for name, content := range email.Template.Data {
			req.Message.GlobalMergeVars = append(req.Message.GlobalMergeVars, mandrillMergeVar{
				Name:    name,
				Content: content,
			})
		}
	}

	var responses []mandrillSendResponse
	if err := c.post(ctx, endpoint, req, &responses); err != nil {
		return models.MessageResponse{}, err
	}
	if len(responses) == 0 {
		return models.MessageResponse{}, fmt.Errorf("email provider returned no recipient results")
	}
	first := responses[0]
	return models.MessageResponse{
		ID:           first.ID,
		Status:       first.Status,
		RejectReason: first.RejectReason,
	}, nil
}

func (c *MandrillClient) post(ctx context.Context, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("email provider request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read email provider response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email provider returned %d: %s", resp.StatusCode, respBody)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode email provider response: %w", err)
	}
	return nil
}
