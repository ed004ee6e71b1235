package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/hunyo/docflow/internal/imagefix"
)

// ImageAnalyzer scores an uploaded page image for quality gating.
type ImageAnalyzer interface {
	Analyze(ctx context.Context, image []byte, fileName string) (imagefix.Scores, error)
}

const sightengineEndpoint = "https://api.sightengine.com/1.0/check.json"

// SightengineClient talks to the Sightengine properties model.
type SightengineClient struct {
	APIUser    string
	APISecret  string
	Endpoint   string
	HTTPClient *http.Client
}

func NewSightengineClient(apiUser, apiSecret string) *SightengineClient {
	return &SightengineClient{
		APIUser:    apiUser,
		APISecret:  apiSecret,
		Endpoint:   sightengineEndpoint,
		HTTPClient: http.DefaultClient,
	}
}

type sightengineResponse struct {
	Status     string  `json:"status"`
	Brightness float64 `json:"brightness"`
	Sharpness  float64 `json:"sharpness"`
	Contrast   float64 `json:"contrast"`
}

// Analyze posts the image blob to the properties model and returns the
// brightness/sharpness/contrast scores, each in [0,1].
func (c *SightengineClient) Analyze(ctx context.Context, image []byte, fileName string) (imagefix.Scores, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("media", fileName)
	if err != nil {
		return imagefix.Scores{}, fmt.Errorf("failed to build analysis form: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return imagefix.Scores{}, fmt.Errorf("failed to write analysis image: %w", err)
	}
	_ = form.WriteField("models", "properties")
	_ = form.WriteField("api_user", c.APIUser)
	_ = form.WriteField("api_secret", c.APISecret)
	if err := form.Close(); err != nil {
		return imagefix.Scores{}, fmt.Errorf("failed to finalize analysis form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, &body)
	if err != nil {
		return imagefix.Scores{}, fmt.Errorf("failed to build analysis request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return imagefix.Scores{}, fmt.Errorf("analysis provider request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return imagefix.Scores{}, fmt.Errorf("failed to read analysis response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return imagefix.Scores{}, fmt.Errorf("analysis provider returned %d: %s", resp.StatusCode, respBody)
	}

	var parsed sightengineResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return imagefix.Scores{}, fmt.Errorf("failed to decode analysis response: %w", err)
	}
	return imagefix.Scores{
		Brightness: parsed.Brightness,
		Sharpness:  parsed.Sharpness,
		Contrast:   parsed.Contrast,
	}, nil
}
