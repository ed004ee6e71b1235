package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/hunyo/docflow/internal/models"
	"github.com/hunyo/docflow/internal/services"
)

var (
	instance *services.FormCreateFunction
	once     sync.Once
	initErr  error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Three deploy targets share this binary: the applicant-create fan-out,
	// the form-create notification, and the form-edit name sync.
	// FUNCTION_TARGET picks one.
	functions.CloudEvent("OnApplicantCreate", onApplicantCreate)
	functions.CloudEvent("OnFormCreate", onFormCreate)
	functions.CloudEvent("OnFormUpdate", onFormUpdate)
}

// main is required by the Go Functions Framework.
func main() {}

func getInstance() (*services.FormCreateFunction, error) {
	once.Do(func() {
		instance, initErr = services.NewFormCreate(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
	}
	return instance, initErr
}

func onApplicantCreate(ctx context.Context, e cloudevents.Event) error {
	f, err := getInstance()
	if err != nil {
		return err
	}

	var event models.ApplicantChangeEvent
	if err := json.Unmarshal(e.Data(), &event); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	return f.ProcessApplicantCreate(ctx, event)
}

func onFormCreate(ctx context.Context, e cloudevents.Event) error {
	f, err := getInstance()
	if err != nil {
		return err
	}

	var event models.FormChangeEvent
	if err := json.Unmarshal(e.Data(), &event); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	return f.ProcessFormCreate(ctx, event)
}

func onFormUpdate(ctx context.Context, e cloudevents.Event) error {
	f, err := getInstance()
	if err != nil {
		return err
	}

	var event models.FormChangeEvent
	if err := json.Unmarshal(e.Data(), &event); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	return f.ProcessFormUpdate(ctx, event)
}
