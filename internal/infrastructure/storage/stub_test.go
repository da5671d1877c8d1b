package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stubDrawingKey = "drawings/test/file.pdf"

func TestNewStubObjectStorage(t *testing.T) {
	s := NewStubObjectStorage()
	require.NotNil(t, s)
	assert.Equal(t, "https://storage.example.com", s.BaseURL)
}

func TestStubObjectStorage_URLs(t *testing.T) {
	s := NewStubObjectStorage()
	ctx := context.Background()

	uploadURL, uploadExpiry, err := s.GenerateUploadURL(ctx, stubDrawingKey, "application/pdf", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, uploadURL, "https://storage.example.com/upload/"+stubDrawingKey)
	assert.True(t, uploadExpiry.After(time.Now()))

	downloadURL, downloadExpiry, err := s.GenerateDownloadURL(ctx, stubDrawingKey, time.Hour)
	require.NoError(t, err)
	assert.Contains(t, downloadURL, "https://storage.example.com/download/"+stubDrawingKey)
	assert.True(t, downloadExpiry.After(time.Now()))
}

func TestStubObjectStorage_DeleteIsNoOp(t *testing.T) {
	s := NewStubObjectStorage()

	require.NoError(t, s.DeleteObject(context.Background(), stubDrawingKey))
}

func TestStubObjectStorage_ObjectExists(t *testing.T) {
	s := NewStubObjectStorage()

	exists, err := s.ObjectExists(context.Background(), stubDrawingKey)
	require.NoError(t, err)
	assert.True(t, exists, "the stub reports every valid key as present")
}

func TestStubObjectStorage_EmptyKeyRejected(t *testing.T) {
	s := NewStubObjectStorage()
	ctx := context.Background()

	ops := map[string]func() error{
		"upload url": func() error {
			_, _, err := s.GenerateUploadURL(ctx, "", "application/pdf", 15*time.Minute)
			return err
		},
		"download url": func() error {
			_, _, err := s.GenerateDownloadURL(ctx, "", time.Hour)
			return err
		},
		"delete": func() error {
			return s.DeleteObject(ctx, "")
		},
		"exists": func() error {
			exists, err := s.ObjectExists(ctx, "")
			assert.False(t, exists)
			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			err := op()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "storage key is required")
		})
	}
}
