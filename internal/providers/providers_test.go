package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunyo/docflow/internal/models"
)

func TestMandrillSendPlainMessage(t *testing.T) {
	var gotPath string
	var gotReq map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"_id":"msg-1","email":"a@b.ph","status":"sent","reject_reason":null}]`))
	}))
	defer server.Close()

	client := NewMandrillClient("test-key", "info@hunyo.com")
	client.BaseURL = server.URL

	resp, err := client.Send(context.Background(), models.EmailData{
		Subject:    "Hello",
		Body:       "Body text",
		Recipients: []models.Recipient{{Email: "a@b.ph", Type: "to"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "/messages/send.json", gotPath)
	assert.Equal(t, "test-key", gotReq["key"])
	msg := gotReq["message"].(map[string]any)
	assert.Equal(t, "info@hunyo.com", msg["from_email"])
	assert.Equal(t, "Hello", msg["subject"])

	assert.Equal(t, "msg-1", resp.ID)
	assert.Equal(t, "sent", resp.Status)
}

func TestMandrillSendTemplateUsesTemplateEndpoint(t *testing.T) {
	var gotPath string
	var gotReq map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(`[{"_id":"msg-2","email":"a@b.ph","status":"queued"}]`))
	}))
	defer server.Close()

	client := NewMandrillClient("test-key", "info@hunyo.com")
	client.BaseURL = server.URL

	resp, err := client.Send(context.Background(), models.EmailData{
		Subject:    "Docs needed",
		Recipients: []models.Recipient{{Email: "a@b.ph", Type: "to"}},
		Template: &models.EmailTemplate{
			Name: models.TemplateDocumentsRequest,
			Data: map[string]string{"formLink": "https://hunyo.design/applicant/forms/f1"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "/messages/send-template.json", gotPath)
	assert.Equal(t, models.TemplateDocumentsRequest, gotReq["template_name"])
	msg := gotReq["message"].(map[string]any)
	vars := msg["global_merge_vars"].([]any)
	require.Len(t, vars, 1)
	assert.Equal(t, "formLink", vars[0].(map[string]any)["name"])
	assert.Equal(t, "queued", resp.Status)
}

func TestMandrillSendErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":"error","message":"Invalid API key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewMandrillClient("bad-key", "info@hunyo.com")
	client.BaseURL = server.URL

	_, err := client.Send(context.Background(), models.EmailData{
		Recipients: []models.Recipient{{Email: "a@b.ph"}},
	})
	assert.ErrorContains(t, err, "401")
}

func TestSemaphoreSendStripsNumber(t *testing.T) {
	var gotReq map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(`[{"message_id":1}]`))
	}))
	defer server.Close()

	client := NewSemaphoreClient("sem-key")
	client.Endpoint = server.URL

	err := client.Send(context.Background(), models.SMSData{
		PhoneNumber: "+63 (917) 555-0199",
		Message:     "Your documents are needed.",
		SenderName:  "Hunyo",
	})
	require.NoError(t, err)

	assert.Equal(t, "sem-key", gotReq["apikey"])
	assert.Equal(t, "639175550199", gotReq["number"])
	assert.Equal(t, "Hunyo", gotReq["sendername"])
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "639175550199", DigitsOnly("+63 917-555-0199"))
	assert.Equal(t, "", DigitsOnly("no digits"))
	assert.Equal(t, "12345", DigitsOnly("12345"))
}

func TestSightengineAnalyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "properties", r.FormValue("models"))
		assert.Equal(t, "user-1", r.FormValue("api_user"))
		_, _, err := r.FormFile("media")
		require.NoError(t, err)
		_, _ = w.Write([]byte(`{"status":"success","brightness":0.62,"sharpness":0.97,"contrast":0.81}`))
	}))
	defer server.Close()

	client := NewSightengineClient("user-1", "secret-1")
	client.Endpoint = server.URL

	scores, err := client.Analyze(context.Background(), []byte{0xff, 0xd8}, "page.jpeg")
	require.NoError(t, err)
	assert.Equal(t, 0.62, scores.Brightness)
	assert.Equal(t, 0.97, scores.Sharpness)
	assert.Equal(t, 0.81, scores.Contrast)
}
