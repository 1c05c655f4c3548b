package model

import "github.com/shopspring/decimal"

// NotificationKind selects an email template.
type NotificationKind string

const (
	NotificationWelcome        NotificationKind = "welcome"
	NotificationOrderConfirmed NotificationKind = "order_confirmed"
	NotificationOrderCompleted NotificationKind = "order_completed"
)

// Notification is a rendered-on-send transactional message.
type Notification struct {
	Kind      NotificationKind
	Recipient string
	Name      string
	Order     *OrderSummary
}

// OrderSummary is the order context shown in emails.
type OrderSummary struct {
	Number       string
	ServiceName  string
	PackageName  string
	Amount       decimal.Decimal
	Currency     Currency
	DeliveryDays int
}
