package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/polkiloo/prowriters/internal/adapter/gateway"
	"github.com/polkiloo/prowriters/internal/config"
	domainErrors "github.com/polkiloo/prowriters/internal/domain/errors"
	"github.com/polkiloo/prowriters/internal/domain/model"
	"github.com/polkiloo/prowriters/internal/domain/repository"
	"github.com/polkiloo/prowriters/internal/metrics"
	pkgAuth "github.com/polkiloo/prowriters/internal/pkg/auth"
)

// PaymentUseCase drives checkout against the payment processor.
type PaymentUseCase struct {
	orders    repository.OrderRepository
	gateway   gateway.Client
	lifecycle *OrderUseCase
	keyID     string
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(orders repository.OrderRepository, client gateway.Client, lifecycle *OrderUseCase, cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) *PaymentUseCase {
	return &PaymentUseCase{
		orders:    orders,
		gateway:   client,
		lifecycle: lifecycle,
		keyID:     cfg.Gateway.KeyID,
		metrics:   m,
		logger:    logger,
	}
}

// Checkout opens or reuses the processor order for the caller's pending order.
func (u *PaymentUseCase) Checkout(ctx context.Context, caller pkgAuth.Principal, orderID int64) (*model.Checkout, error) {
	order, err := u.ownOrder(ctx, caller, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Payable() {
		if order.PaymentStatus == model.PaymentStatusPaid {
			return nil, domainErrors.ErrAlreadyPaid
		}
		return nil, domainErrors.Transition(string(order.Status), "checkout")
	}

	minor, err := gateway.ToMinorUnits(order.Amount, order.Currency)
	if err != nil {
		return nil, err
	}

	remoteID := order.RemoteOrderID
	if remoteID == "" {
		remote, err := u.gateway.CreateOrder(ctx, order.Amount, order.Currency, order.Number)
		if err != nil {
			u.logger.Error("create remote order failed", slog.Int64("order_id", order.ID), slog.String("error", err.Error()))
			return nil, err
		}
		if err := u.orders.SetRemoteOrder(ctx, order.ID, remote.ID); err != nil {
			return nil, err
		}
		remoteID = remote.ID
		u.logger.Info("remote order created", slog.Int64("order_id", order.ID), slog.String("remote_order_id", remoteID))
	}

	return &model.Checkout{
		OrderID:       order.ID,
		OrderNumber:   order.Number,
		RemoteOrderID: remoteID,
		AmountMinor:   minor,
		Currency:      order.Currency,
		KeyID:         u.keyID,
	}, nil
}

// Confirm verifies the processor callback and marks the order paid. Checks
// run in order: ownership, remote order match, signature. Any failure leaves
// the order untouched and returns ErrPaymentRejected.
func (u *PaymentUseCase) Confirm(ctx context.Context, caller pkgAuth.Principal, orderID int64, cb model.PaymentCallback) (*model.Order, error) {
	order, err := u.ownOrder(ctx, caller, orderID)
	if err != nil {
		return nil, err
	}

	remoteID := strings.TrimSpace(cb.RemoteOrderID)
	if order.RemoteOrderID == "" || remoteID != order.RemoteOrderID {
		return nil, u.reject(order, "remote order mismatch")
	}
	if !u.gateway.VerifySignature(strings.TrimSpace(cb.PaymentID), remoteID, strings.TrimSpace(cb.Signature)) {
		return nil, u.reject(order, "signature mismatch")
	}

	return u.lifecycle.MarkPaid(ctx, order.ID, strings.TrimSpace(cb.PaymentID))
}

// Fail records that the customer's payment attempt did not go through.
func (u *PaymentUseCase) Fail(ctx context.Context, caller pkgAuth.Principal, orderID int64) (*model.Order, error) {
	return u.lifecycle.MarkPaymentFailed(ctx, caller, orderID)
}

func (u *PaymentUseCase) ownOrder(ctx context.Context, caller pkgAuth.Principal, orderID int64) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.OwnedBy(caller.UserID) {
		return nil, domainErrors.ErrNotFound
	}
	return order, nil
}

func (u *PaymentUseCase) reject(order *model.Order, reason string) error {
	u.metrics.PaymentsRejected.Inc()
	u.logger.Warn("payment callback rejected",
		slog.Int64("order_id", order.ID),
		slog.String("number", order.Number),
		slog.String("reason", reason),
	)
	return domainErrors.ErrPaymentRejected
}
