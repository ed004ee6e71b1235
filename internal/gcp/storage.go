package gcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// ObjectMeta carries the writable blob metadata the handlers set on uploads.
type ObjectMeta struct {
	ContentType        string
	ContentDisposition string
	Metadata           map[string]string
}

// WriteObjectIfAbsent writes data to a GCS object only if it doesn't already
// exist. Storage finalize events are delivered at least once, so writes whose
// content is fixed for a given object name go through this to stay idempotent.
func WriteObjectIfAbsent(ctx context.Context, bucket *storage.BucketHandle, object string, data []byte, meta ObjectMeta) error {
	writer := bucket.Object(object).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = meta.ContentType
	writer.ContentDisposition = meta.ContentDisposition
	writer.Metadata = meta.Metadata

	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		if gerr, ok := err.(*googleapi.Error); ok && gerr.Code == 412 {
			slog.Info("Object already exists, skipping.", "object", object)
			return nil
		}
		return fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		if gerr, ok := err.(*googleapi.Error); ok && gerr.Code == 412 {
			slog.Info("Object already exists, skipping.", "object", object)
			return nil
		}
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}

// DownloadToFile streams a GCS object to a local path.
func DownloadToFile(ctx context.Context, bucket *storage.BucketHandle, object, destPath string) error {
	reader, err := bucket.Object(object).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("failed to get GCS object reader for %s: %w", object, err)
	}
	defer reader.Close()
	localFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file at %s: %w", destPath, err)
	}
	defer localFile.Close()
	if _, err := io.Copy(localFile, reader); err != nil {
		return fmt.Errorf("failed to copy GCS object to local file: %w", err)
	}
	return nil
}

// DownloadBytes reads a whole GCS object into memory.
func DownloadBytes(ctx context.Context, bucket *storage.BucketHandle, object string) ([]byte, error) {
	reader, err := bucket.Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for %s: %w", object, err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read GCS object %s: %w", object, err)
	}
	return data, nil
}

// WriteObject uploads data to a GCS object with the given metadata, retrying
// with exponential backoff. Writes are all-or-nothing: a failed writer close
// leaves no partial object behind.
func WriteObject(ctx context.Context, bucket *storage.BucketHandle, object string, data []byte, meta ObjectMeta) error {
	const maxRetries = 4
	backoff := 1 * time.Second
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := func() error {
			writeCtx, cancel := context.WithTimeout(ctx, 50*time.Second)
			defer cancel()

			w := bucket.Object(object).NewWriter(writeCtx)
			w.ContentType = meta.ContentType
			w.ContentDisposition = meta.ContentDisposition
			w.Metadata = meta.Metadata

			if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
				_ = w.Close()
				return fmt.Errorf("io.Copy to GCS failed: %w", err)
			}
			if err := w.Close(); err != nil {
				return fmt.Errorf("failed to close GCS writer (finalize upload): %w", err)
			}
			return nil
		}()

		if err == nil {
			return nil
		}
		lastErr = err
		slog.Warn("Upload failed, will retry.",
			"gcsObject", object,
			"attempt", i+1,
			"maxRetries", maxRetries,
			"backoff", backoff.String(),
			"error", err,
		)

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("upload for %s failed after all retries: %w", object, lastErr)
}

// UploadFile uploads a local file to a GCS object with the given metadata.
func UploadFile(ctx context.Context, bucket *storage.BucketHandle, object, localPath string, meta ObjectMeta) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("could not read local file %s: %w", localPath, err)
	}
	return WriteObject(ctx, bucket, object, data, meta)
}

// CopyObject copies a blob to a new path within the same bucket, optionally
// overriding metadata on the destination.
func CopyObject(ctx context.Context, bucket *storage.BucketHandle, srcObject, dstObject string, meta *ObjectMeta) error {
	copier := bucket.Object(dstObject).CopierFrom(bucket.Object(srcObject))
	if meta != nil {
		copier.ContentType = meta.ContentType
		copier.ContentDisposition = meta.ContentDisposition
		copier.Metadata = meta.Metadata
	}
	if _, err := copier.Run(ctx); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", srcObject, dstObject, err)
	}
	return nil
}

// DeleteObject removes a blob; a missing object is not an error so deletes
// stay idempotent under redelivery.
func DeleteObject(ctx context.Context, bucket *storage.BucketHandle, object string) error {
	err := bucket.Object(object).Delete(ctx)
	if err != nil && err != storage.ErrObjectNotExist {
		return fmt.Errorf("failed to delete %s: %w", object, err)
	}
	return nil
}
