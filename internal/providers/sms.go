package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hunyo/docflow/internal/models"
)

// SMSProvider sends one SMS message.
type SMSProvider interface {
	Send(ctx context.Context, sms models.SMSData) error
}

const semaphoreEndpoint = "https://api.semaphore.co/api/v4/messages"

// SemaphoreClient talks to the Semaphore SMS gateway.
type SemaphoreClient struct {
	APIKey     string
	Endpoint   string
	HTTPClient *http.Client
}

func NewSemaphoreClient(apiKey string) *SemaphoreClient {
	return &SemaphoreClient{
		APIKey:     apiKey,
		Endpoint:   semaphoreEndpoint,
		HTTPClient: http.DefaultClient,
	}
}

type semaphoreRequest struct {
	APIKey     string `json:"apikey"`
	Number     string `json:"number"`
	Message    string `json:"message"`
	SenderName string `json:"sendername,omitempty"`
}

// Send posts the message with the destination number stripped to digits only,
// as the gateway requires.
func (c *SemaphoreClient) Send(ctx context.Context, sms models.SMSData) error {
	payload, err := json.Marshal(semaphoreRequest{
		APIKey:     c.APIKey,
		Number:     DigitsOnly(sms.PhoneNumber),
		Message:    sms.Message,
		SenderName: sms.SenderName,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("sms provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sms provider returned %d: %s", resp.StatusCode, body)
	}
	return nil
}

// DigitsOnly strips everything but 0-9 from a phone number.
func DigitsOnly(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
