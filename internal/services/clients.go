package services

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"

	"github.com/hunyo/docflow/internal/gcp"
)

// Clients bundles the store and bucket handles every service needs. Each
// function binary builds one instance during its one-time initialization.
type Clients struct {
	Firestore *firestore.Client
	Refs      gcp.Refs
	Storage   *storage.Client
	Bucket    *storage.BucketHandle
}

func newClients(ctx context.Context, needBucket bool) (*Clients, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, err
	}

	c := &Clients{
		Firestore: firestoreClient,
		Refs:      gcp.NewRefs(firestoreClient),
	}

	if needBucket {
		bucketName := gcp.GetEnv("DOCS_BUCKET", "")
		if bucketName == "" {
			return nil, fmt.Errorf("DOCS_BUCKET environment variable must be set")
		}
		storageClient, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create Storage client: %w", err)
		}
		c.Storage = storageClient
		c.Bucket = storageClient.Bucket(bucketName)
	}

	return c, nil
}

// appBaseURL is where applicant-facing links point; the emulator overrides it
// for local runs.
func appBaseURL() string {
	return gcp.GetEnv("APP_BASE_URL", "https://hunyo.design")
}

func formLink(baseURL, formID string) string {
	return fmt.Sprintf("%s/applicant/forms/%s", baseURL, formID)
}

func inviteLink(baseURL, inviteID string) string {
	return fmt.Sprintf("%s/invites/%s", baseURL, inviteID)
}
