package repository

import (
	"context"

	"github.com/polkiloo/prowriters/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// Create stores the order and, when file is not nil, its file row in one transaction.
	Create(ctx context.Context, order *model.Order, file *model.OrderFile) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	SetRemoteOrder(ctx context.Context, id int64, remoteOrderID string) error
	// MarkPaid applies the payment capture if the order is still payable. The
	// returned flag is false when no row was changed; the order is then the
	// current stored state.
	MarkPaid(ctx context.Context, id int64, paymentID string) (*model.Order, bool, error)
	MarkPaymentFailed(ctx context.Context, id int64) (*model.Order, error)
	// UpdateStatus moves the order only if it is still in status from.
	UpdateStatus(ctx context.Context, id int64, from, to model.OrderStatus) (*model.Order, error)
	MarkRefunded(ctx context.Context, id int64) (*model.Order, error)
	AddFile(ctx context.Context, file *model.OrderFile) (*model.OrderFile, error)
	ListFiles(ctx context.Context, orderID int64) ([]model.OrderFile, error)
	GetFile(ctx context.Context, orderID, fileID int64) (*model.OrderFile, error)
}
