package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes fulfilment lifecycle.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusRevision   OrderStatus = "revision"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus describes money movement for an order.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusInProgress: {OrderStatusRevision, OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusRevision:   {OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted:  {OrderStatusRevision},
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusFailed:  {PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusPaid:    {PaymentStatusRefunded},
}

// RequiresPayment reports whether the status is only reachable for paid orders.
func (s OrderStatus) RequiresPayment() bool {
	switch s {
	case OrderStatusConfirmed, OrderStatusInProgress, OrderStatusRevision, OrderStatusCompleted:
		return true
	}
	return false
}

// CanTransition reports whether the status graph has an edge from -> to.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransition reports whether the payment status graph has an edge from -> to.
func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	for _, next := range paymentTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is a purchase of one service package. Amount and Currency are a
// snapshot of the package price at creation time.
type Order struct {
	ID            int64
	Number        string
	UserID        int64
	PackageID     int64
	Status        OrderStatus
	PaymentStatus PaymentStatus
	Amount        decimal.Decimal
	Currency      Currency
	Requirements  string
	RemoteOrderID string
	PaymentID     string
	DueAt         time.Time
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CanMoveTo reports whether the order may enter next without violating the
// rule that fulfilment statuses need a paid order.
func (o *Order) CanMoveTo(next OrderStatus) bool {
	if !CanTransition(o.Status, next) {
		return false
	}
	if next.RequiresPayment() && o.PaymentStatus != PaymentStatusPaid {
		return false
	}
	return true
}

// Payable reports whether a payment capture may still be applied.
func (o *Order) Payable() bool {
	return o.Status == OrderStatusPending && o.PaymentStatus.CanTransition(PaymentStatusPaid)
}

// OwnedBy reports whether the order belongs to the user.
func (o *Order) OwnedBy(userID int64) bool {
	return o.UserID == userID
}

// OrderRequest carries checkout form input.
type OrderRequest struct {
	PackageID    int64
	Currency     string
	Requirements string
	Resume       *Attachment
}

// Checkout is what a client needs to open the processor payment form.
type Checkout struct {
	OrderID       int64
	OrderNumber   string
	RemoteOrderID string
	AmountMinor   int64
	Currency      Currency
	KeyID         string
}

// PaymentCallback is the triple returned by the processor after payment.
type PaymentCallback struct {
	PaymentID     string
	RemoteOrderID string
	Signature     string
}
