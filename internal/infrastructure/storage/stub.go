// Package storage provides object storage implementations for drawing
// files.
package storage

import (
	"context"
	"errors"
	"time"

	takeoffapp "github.com/fabmate/backend/internal/application/takeoff"
)

var errEmptyStorageKey = errors.New("storage key is required")

// StubObjectStorage stands in for S3 when no bucket is configured,
// typically in local development. URLs it hands out are not servable;
// they only keep the upload and takeoff flows moving.
type StubObjectStorage struct {
	// BaseURL prefixes every generated URL.
	BaseURL string
}

func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{BaseURL: "https://storage.example.com"}
}

var _ takeoffapp.ObjectStorageService = (*StubObjectStorage)(nil)

// GenerateUploadURL fabricates a presigned-looking upload URL.
func (s *StubObjectStorage) GenerateUploadURL(
	ctx context.Context,
	storageKey, contentType string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	return s.presign("/upload/", storageKey, expiresIn)
}

// GenerateDownloadURL fabricates a presigned-looking download URL.
func (s *StubObjectStorage) GenerateDownloadURL(
	ctx context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	return s.presign("/download/", storageKey, expiresIn)
}

func (s *StubObjectStorage) presign(prefix, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errEmptyStorageKey
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + prefix + storageKey + "?expires=" + expiresAt.Format(time.RFC3339), expiresAt, nil
}

// DeleteObject validates the key and succeeds without touching anything.
func (s *StubObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errEmptyStorageKey
	}
	return nil
}

// ObjectExists reports true so drawing upload confirmation can complete
// without a real bucket behind it.
func (s *StubObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errEmptyStorageKey
	}
	return true, nil
}
