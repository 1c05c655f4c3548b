package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/prowriters/internal/adapter/gateway"
	domainErrors "github.com/polkiloo/prowriters/internal/domain/errors"
	"github.com/polkiloo/prowriters/internal/domain/model"
	"github.com/polkiloo/prowriters/internal/domain/repository"
	"github.com/polkiloo/prowriters/internal/events"
	"github.com/polkiloo/prowriters/internal/metrics"
	pkgAuth "github.com/polkiloo/prowriters/internal/pkg/auth"
	"github.com/polkiloo/prowriters/internal/storage/blob"
)

const (
	// MaxUploadSize bounds a single order file.
	MaxUploadSize      = 10 << 20
	maxRequirementsLen = 5000
	// eventPublishTimeout bounds a lifecycle event write after the state
	// change has been committed.
	eventPublishTimeout = 2 * time.Second
)

// OrderUseCaseParams lists OrderUseCase dependencies.
type OrderUseCaseParams struct {
	fx.In

	Orders  repository.OrderRepository
	Catalog repository.CatalogRepository
	Users   repository.UserRepository
	Files   FileStore
	Queue   NotificationQueue
	Gateway gateway.Client
	Events  events.Publisher
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// OrderUseCase encapsulates order lifecycle logic.
type OrderUseCase struct {
	orders  repository.OrderRepository
	catalog repository.CatalogRepository
	users   repository.UserRepository
	files   FileStore
	queue   NotificationQueue
	gateway gateway.Client
	events  events.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger

	now            func() time.Time
	numbers        func(time.Time) string
	publishTimeout time.Duration
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(p OrderUseCaseParams) *OrderUseCase {
	return &OrderUseCase{
		orders:         p.Orders,
		catalog:        p.Catalog,
		users:          p.Users,
		files:          p.Files,
		queue:          p.Queue,
		gateway:        p.Gateway,
		events:         p.Events,
		metrics:        p.Metrics,
		logger:         p.Logger,
		now:            time.Now,
		numbers:        newOrderNumber,
		publishTimeout: eventPublishTimeout,
	}
}

// Create places a pending order for an active package. The price is copied
// from the package, the optional resume is stored before the order row and
// removed again if the row cannot be written.
func (u *OrderUseCase) Create(ctx context.Context, userID int64, req model.OrderRequest) (*model.Order, error) {
	requirements := strings.TrimSpace(req.Requirements)
	if requirements == "" {
		return nil, domainErrors.Validation("requirements are required")
	}
	if len(requirements) > maxRequirementsLen {
		return nil, domainErrors.Validation("requirements exceed %d characters", maxRequirementsLen)
	}
	currency, err := model.ParseCurrency(req.Currency)
	if err != nil {
		return nil, domainErrors.Validation("%s", err.Error())
	}

	pkg, svc, err := u.catalog.GetPackage(ctx, req.PackageID)
	if err != nil {
		return nil, err
	}
	if !pkg.IsActive || !svc.IsActive {
		return nil, domainErrors.ErrPackageInactive
	}
	amount, err := pkg.PriceFor(currency)
	if err != nil {
		return nil, domainErrors.Validation("%s", err.Error())
	}

	var file *model.OrderFile
	if req.Resume != nil {
		file, err = u.storeFile(ctx, req.Resume, model.FileCategoryResume, model.UploaderCustomer)
		if err != nil {
			return nil, err
		}
	}

	now := u.now()
	order := &model.Order{
		UserID:        userID,
		PackageID:     pkg.ID,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		Amount:        amount,
		Currency:      currency,
		Requirements:  requirements,
		DueAt:         now.AddDate(0, 0, pkg.DeliveryDays),
	}

	var created *model.Order
	for attempt := 1; attempt <= orderNumberAttempts; attempt++ {
		order.Number = u.numbers(now)
		created, err = u.orders.Create(ctx, order, file)
		if !errors.Is(err, domainErrors.ErrAlreadyExists) {
			break
		}
		u.logger.Warn("order number collision", slog.String("number", order.Number), slog.Int("attempt", attempt))
	}
	if err != nil {
		if file != nil {
			u.discardFile(ctx, file.StoredName)
		}
		return nil, err
	}

	u.metrics.OrdersCreated.Inc()
	u.publish(ctx, events.OrderCreated, created)
	u.logger.Info("order created",
		slog.Int64("order_id", created.ID),
		slog.String("number", created.Number),
		slog.String("amount", created.Amount.String()),
		slog.String("currency", string(created.Currency)),
	)
	return created, nil
}

// Get returns the order if the caller owns it or is staff. Anyone else gets
// ErrNotFound so order ids cannot be probed.
func (u *OrderUseCase) Get(ctx context.Context, caller pkgAuth.Principal, id int64) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.OwnedBy(caller.UserID) && !caller.IsStaff() {
		return nil, domainErrors.ErrNotFound
	}
	return order, nil
}

// List returns the user's orders, newest first.
func (u *OrderUseCase) List(ctx context.Context, userID int64) ([]model.Order, error) {
	return u.orders.ListByUser(ctx, userID)
}

// MarkPaid records a verified capture. Replaying the same reference returns
// the order unchanged; a different reference on a paid order is ErrAlreadyPaid.
// The confirmation email is queued only by the call that applied the change.
func (u *OrderUseCase) MarkPaid(ctx context.Context, id int64, paymentID string) (*model.Order, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, domainErrors.Validation("payment reference is required")
	}

	order, applied, err := u.orders.MarkPaid(ctx, id, paymentID)
	if err != nil {
		return nil, err
	}

	if !applied {
		switch {
		case order.PaymentStatus == model.PaymentStatusPaid && order.PaymentID == paymentID:
			return order, nil
		case order.PaymentStatus == model.PaymentStatusPaid:
			u.logger.Error("order already paid with another reference",
				slog.Int64("order_id", order.ID),
				slog.String("number", order.Number),
				slog.String("stored_payment_id", order.PaymentID),
				slog.String("payment_id", paymentID),
			)
			return nil, domainErrors.ErrAlreadyPaid
		default:
			u.logger.Warn("payment for order in wrong state",
				slog.Int64("order_id", order.ID),
				slog.String("status", string(order.Status)),
				slog.String("payment_status", string(order.PaymentStatus)),
			)
			return nil, domainErrors.Transition(string(order.PaymentStatus), string(model.PaymentStatusPaid))
		}
	}

	u.metrics.PaymentsConfirmed.Inc()
	u.notify(ctx, model.NotificationOrderConfirmed, order)
	u.publish(ctx, events.OrderPaid, order)
	u.logger.Info("order paid", slog.Int64("order_id", order.ID), slog.String("payment_id", paymentID))
	return order, nil
}

// MarkPaymentFailed records a failed payment attempt on the caller's pending order.
func (u *OrderUseCase) MarkPaymentFailed(ctx context.Context, caller pkgAuth.Principal, id int64) (*model.Order, error) {
	order, err := u.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPending || !order.PaymentStatus.CanTransition(model.PaymentStatusFailed) {
		return nil, u.rejectTransition(order, string(order.PaymentStatus), string(model.PaymentStatusFailed))
	}
	updated, err := u.orders.MarkPaymentFailed(ctx, id)
	if err != nil {
		return nil, err
	}
	u.logger.Info("payment failed", slog.Int64("order_id", id))
	return updated, nil
}

// StartWork moves a paid order into progress.
func (u *OrderUseCase) StartWork(ctx context.Context, id int64) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := u.move(ctx, order, model.OrderStatusInProgress)
	if err != nil {
		return nil, err
	}
	u.publish(ctx, events.OrderStarted, updated)
	return updated, nil
}

// RequestRevision reopens work on an order in progress or already delivered.
func (u *OrderUseCase) RequestRevision(ctx context.Context, caller pkgAuth.Principal, id int64) (*model.Order, error) {
	order, err := u.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	updated, err := u.move(ctx, order, model.OrderStatusRevision)
	if err != nil {
		return nil, err
	}
	u.publish(ctx, events.OrderRevision, updated)
	return updated, nil
}

// Complete marks work delivered and queues the completion email.
func (u *OrderUseCase) Complete(ctx context.Context, id int64) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := u.move(ctx, order, model.OrderStatusCompleted)
	if err != nil {
		return nil, err
	}
	u.notify(ctx, model.NotificationOrderCompleted, updated)
	u.publish(ctx, events.OrderCompleted, updated)
	return updated, nil
}

// Cancel stops an order. Customers may cancel only before payment; staff may
// cancel anything the status graph allows.
func (u *OrderUseCase) Cancel(ctx context.Context, caller pkgAuth.Principal, id int64) (*model.Order, error) {
	order, err := u.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsStaff() && order.Status != model.OrderStatusPending {
		return nil, u.rejectTransition(order, string(order.Status), string(model.OrderStatusCancelled))
	}
	updated, err := u.move(ctx, order, model.OrderStatusCancelled)
	if err != nil {
		return nil, err
	}
	u.publish(ctx, events.OrderCancelled, updated)
	return updated, nil
}

// Refund returns the captured amount through the processor and then marks
// the order refunded and cancelled. A gateway failure leaves the order as is.
func (u *OrderUseCase) Refund(ctx context.Context, id int64) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.PaymentStatus.CanTransition(model.PaymentStatusRefunded) || order.PaymentID == "" {
		return nil, u.rejectTransition(order, string(order.PaymentStatus), string(model.PaymentStatusRefunded))
	}
	switch order.Status {
	case model.OrderStatusConfirmed, model.OrderStatusInProgress, model.OrderStatusRevision, model.OrderStatusCancelled:
	default:
		return nil, u.rejectTransition(order, string(order.Status), string(model.OrderStatusCancelled))
	}

	refund, err := u.gateway.Refund(ctx, order.PaymentID, order.Amount, order.Currency)
	if err != nil {
		u.logger.Error("gateway refund failed", slog.Int64("order_id", id), slog.String("error", err.Error()))
		return nil, err
	}

	updated, err := u.orders.MarkRefunded(ctx, id)
	if err != nil {
		u.logger.Error("refund issued but order not updated",
			slog.Int64("order_id", id),
			slog.String("refund_id", refund.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	u.publish(ctx, events.OrderRefunded, updated)
	u.logger.Info("order refunded", slog.Int64("order_id", id), slog.String("refund_id", refund.ID))
	return updated, nil
}

// AttachDelivery stores a final product file on a paid order.
func (u *OrderUseCase) AttachDelivery(ctx context.Context, id int64, att *model.Attachment) (*model.OrderFile, error) {
	if att == nil {
		return nil, domainErrors.Validation("file is required")
	}
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.RequiresPayment() {
		return nil, u.rejectTransition(order, string(order.Status), "delivery")
	}

	file, err := u.storeFile(ctx, att, model.FileCategoryFinalProduct, model.UploaderStaff)
	if err != nil {
		return nil, err
	}
	file.OrderID = order.ID

	stored, err := u.orders.AddFile(ctx, file)
	if err != nil {
		u.discardFile(ctx, file.StoredName)
		return nil, err
	}
	u.logger.Info("delivery attached", slog.Int64("order_id", id), slog.Int64("file_id", stored.ID))
	return stored, nil
}

// Files lists files of an order visible to the caller.
func (u *OrderUseCase) Files(ctx context.Context, caller pkgAuth.Principal, id int64) ([]model.OrderFile, error) {
	if _, err := u.Get(ctx, caller, id); err != nil {
		return nil, err
	}
	return u.orders.ListFiles(ctx, id)
}

// FileURL returns a short lived download link for one order file.
func (u *OrderUseCase) FileURL(ctx context.Context, caller pkgAuth.Principal, orderID, fileID int64) (string, error) {
	if _, err := u.Get(ctx, caller, orderID); err != nil {
		return "", err
	}
	file, err := u.orders.GetFile(ctx, orderID, fileID)
	if err != nil {
		return "", err
	}
	return u.files.URL(ctx, file.StoredName, file.OriginalName)
}

func (u *OrderUseCase) move(ctx context.Context, order *model.Order, to model.OrderStatus) (*model.Order, error) {
	if !order.CanMoveTo(to) {
		return nil, u.rejectTransition(order, string(order.Status), string(to))
	}
	updated, err := u.orders.UpdateStatus(ctx, order.ID, order.Status, to)
	if err != nil {
		if errors.Is(err, domainErrors.ErrInvalidTransition) {
			return nil, u.rejectTransition(order, string(order.Status), string(to))
		}
		return nil, err
	}
	u.logger.Info("order status changed",
		slog.Int64("order_id", order.ID),
		slog.String("from", string(order.Status)),
		slog.String("to", string(to)),
	)
	return updated, nil
}

func (u *OrderUseCase) rejectTransition(order *model.Order, from, to string) error {
	u.logger.Warn("invalid order transition",
		slog.Int64("order_id", order.ID),
		slog.String("from", from),
		slog.String("to", to),
	)
	return domainErrors.Transition(from, to)
}

func (u *OrderUseCase) storeFile(ctx context.Context, att *model.Attachment, category model.FileCategory, by model.Uploader) (*model.OrderFile, error) {
	name := strings.TrimSpace(att.OriginalName)
	if name == "" || att.Body == nil {
		return nil, domainErrors.Validation("file is empty")
	}
	if !blob.Allowed(category, name) {
		return nil, domainErrors.Validation("file type of %q is not allowed", name)
	}
	if att.Size <= 0 || att.Size > MaxUploadSize {
		return nil, domainErrors.Validation("file size must be between 1 byte and %d bytes", MaxUploadSize)
	}

	contentType := att.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = blob.ContentType(name)
	}
	stored := blob.ObjectName(category, name)
	if err := u.files.Put(ctx, stored, att.Body, att.Size, contentType); err != nil {
		u.logger.Error("store order file failed", slog.String("name", stored), slog.String("error", err.Error()))
		return nil, err
	}

	return &model.OrderFile{
		StoredName:   stored,
		OriginalName: name,
		Category:     category,
		ContentType:  contentType,
		Size:         att.Size,
		UploadedBy:   by,
	}, nil
}

func (u *OrderUseCase) discardFile(ctx context.Context, name string) {
	if err := u.files.Delete(context.WithoutCancel(ctx), name); err != nil {
		u.logger.Error("remove orphaned order file failed", slog.String("name", name), slog.String("error", err.Error()))
	}
}

// publish writes a lifecycle event on its own bounded context so a slow
// broker neither holds the caller nor consumes its deadline.
func (u *OrderUseCase) publish(ctx context.Context, t events.Type, order *model.Order) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.publishTimeout)
	defer cancel()
	if err := u.events.Publish(ctx, events.FromOrder(t, order)); err != nil {
		u.logger.Warn("publish order event failed",
			slog.String("type", string(t)),
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}
}

// notify queues an order email. Missing context is logged and the email
// skipped; it never fails the calling operation.
func (u *OrderUseCase) notify(ctx context.Context, kind model.NotificationKind, order *model.Order) {
	customer, err := u.users.GetByID(ctx, order.UserID)
	if err != nil {
		u.logger.Error("load order customer for notification failed", slog.Int64("order_id", order.ID), slog.String("error", err.Error()))
		return
	}
	summary := &model.OrderSummary{Number: order.Number, Amount: order.Amount, Currency: order.Currency}
	if pkg, svc, err := u.catalog.GetPackage(ctx, order.PackageID); err == nil {
		summary.ServiceName = svc.Name
		summary.PackageName = pkg.Name
		summary.DeliveryDays = pkg.DeliveryDays
	} else {
		u.logger.Warn("load order package for notification failed", slog.Int64("order_id", order.ID), slog.String("error", err.Error()))
	}

	if !u.queue.Enqueue(model.Notification{Kind: kind, Recipient: customer.Email, Name: customer.FullName(), Order: summary}) {
		u.logger.Warn("notification not queued", slog.String("kind", string(kind)), slog.Int64("order_id", order.ID))
	}
}
