package storage

import (
	"context"
	"io"
	"net/http"

	"hr-calendar/internal/shared/apperror"
)

var (
	ErrDisabled = apperror.New(
		apperror.CodeServiceUnavailable,
		"document storage is not configured",
		http.StatusServiceUnavailable,
	)
	ErrObjectNotFound = apperror.New(
		apperror.CodeNotFound,
		"file not found",
		http.StatusNotFound,
	)
)

type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

//go:generate mockgen -source=storage.go -destination=mock/storage_mock.go -package=mock
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.ReadSeeker, contentType string) error
	Get(ctx context.Context, key string) (Object, error)
}

type disabled struct{}

// NewDisabled returns the storage used when no bucket is configured. Every
// call fails with ErrDisabled.
func NewDisabled() ObjectStorage {
	return disabled{}
}

func (disabled) Upload(context.Context, string, io.ReadSeeker, string) error {
	return ErrDisabled
}

func (disabled) Get(context.Context, string) (Object, error) {
	return Object{}, ErrDisabled
}
