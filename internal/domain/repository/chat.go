package repository

import (
	"context"

	"github.com/polkiloo/prowriters/internal/domain/model"
)

// ChatRepository stores order conversations. Messages are append only.
type ChatRepository interface {
	Append(ctx context.Context, msg *model.ChatMessage) (*model.ChatMessage, error)
	ListByOrder(ctx context.Context, orderID int64) ([]model.ChatEntry, error)
}
