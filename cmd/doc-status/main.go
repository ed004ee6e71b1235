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
	instance *services.DocStatusFunction
	once     sync.Once
	initErr  error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("OnDocumentWrite", onDocumentWrite)
}

// main is required by the Go Functions Framework.
func main() {}

func onDocumentWrite(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		instance, initErr = services.NewDocStatus(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var event models.DocumentChangeEvent
	if err := json.Unmarshal(e.Data(), &event); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	return instance.Process(ctx, event)
}
