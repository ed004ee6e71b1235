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
	instance *services.FileIntakeFunction
	once     sync.Once
	initErr  error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("OnFileUpload", onFileUpload)
	functions.CloudEvent("OnFileStatusUpdate", onFileStatusUpdate)
	functions.CloudEvent("OnPageWrite", onPageWrite)
}

// main is required by the Go Functions Framework.
func main() {}

func getInstance() (*services.FileIntakeFunction, error) {
	once.Do(func() {
		instance, initErr = services.NewFileIntake(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
	}
	return instance, initErr
}

func onFileUpload(ctx context.Context, e cloudevents.Event) error {
	f, err := getInstance()
	if err != nil {
		return err
	}

	var event models.StorageObjectEvent
	if err := json.Unmarshal(e.Data(), &event); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	return f.ProcessObject(ctx, event)
}

func onFileStatusUpdate(ctx context.Context, e cloudevents.Event) error {
	f, err := getInstance()
	if err != nil {
		return err
	}

	var event models.StorageObjectEvent
	if err := json.Unmarshal(e.Data(), &event); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	return f.ProcessStatusUpdate(ctx, event)
}

func onPageWrite(ctx context.Context, e cloudevents.Event) error {
	f, err := getInstance()
	if err != nil {
		return err
	}

	var event models.PageChangeEvent
	if err := json.Unmarshal(e.Data(), &event); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	return f.ProcessPage(ctx, event)
}
