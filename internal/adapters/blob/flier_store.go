// Package blob stores event flier images in Firebase Storage.
package blob

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"

	"eventtiz/internal/domain"
)

type flierStore struct {
	bucket     *storage.BucketHandle
	bucketName string
}

// NewFlierStore returns a FlierStore writing to the named bucket of the given
// Firebase app.
func NewFlierStore(ctx context.Context, app *firebase.App, bucketName string) (domain.FlierStore, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("storage bucket %q: %w", bucketName, err)
	}
	return &flierStore{bucket: bucket, bucketName: bucketName}, nil
}

func objectPath(eventID string) string {
	return fmt.Sprintf("events/%s/image", eventID)
}

func (s *flierStore) Upload(ctx context.Context, eventID, dataURL string) (string, error) {
	contentType, payload, err := decodeDataURL(dataURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	path := objectPath(eventID)
	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(payload); err != nil {
		w.Close()
		return "", fmt.Errorf("write flier object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close flier object: %w", err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, path), nil
}

func (s *flierStore) Delete(ctx context.Context, eventID string) error {
	err := s.bucket.Object(objectPath(eventID)).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete flier object: %w", err)
	}
	return nil
}

// decodeDataURL splits a "data:<mediatype>;base64,<data>" string into its
// content type and decoded payload.
func decodeDataURL(dataURL string) (string, []byte, error) {
	const prefix = "data:"
	if !strings.HasPrefix(dataURL, prefix) {
		return "", nil, fmt.Errorf("not a data URL")
	}
	meta, encoded, ok := strings.Cut(dataURL[len(prefix):], ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URL")
	}
	contentType, _, _ := strings.Cut(meta, ";")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if !strings.HasSuffix(meta, ";base64") {
		return "", nil, fmt.Errorf("unsupported data URL encoding")
	}
	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("decode base64 payload: %w", err)
	}
	return contentType, payload, nil
}
