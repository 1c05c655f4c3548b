package usecase

import (
	"context"
	"io"

	"github.com/polkiloo/prowriters/internal/domain/model"
)

// FileStore persists order file blobs.
type FileStore interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, name string) error
	URL(ctx context.Context, name, downloadAs string) (string, error)
}

// NotificationQueue accepts notifications for asynchronous delivery.
type NotificationQueue interface {
	Enqueue(n model.Notification) bool
}
