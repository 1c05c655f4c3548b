package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderResponse describes an order to its owner or staff.
type OrderResponse struct {
	ID            int64           `json:"id"`
	Number        string          `json:"number"`
	PackageID     int64           `json:"package_id"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Requirements  string          `json:"requirements"`
	DueAt         time.Time       `json:"due_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// FileResponse describes file metadata; content is fetched via its URL.
type FileResponse struct {
	ID           int64     `json:"id"`
	OriginalName string    `json:"original_name"`
	Category     string    `json:"category"`
	ContentType  string    `json:"content_type,omitempty"`
	Size         int64     `json:"size"`
	UploadedBy   string    `json:"uploaded_by"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// CheckoutResponse carries what the payment form needs.
type CheckoutResponse struct {
	OrderID       int64  `json:"order_id"`
	OrderNumber   string `json:"order_number"`
	RemoteOrderID string `json:"remote_order_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	KeyID         string `json:"key_id"`
}

// PaymentVerifyRequest is the callback triple posted after payment.
type PaymentVerifyRequest struct {
	PaymentID     string `json:"payment_id"`
	RemoteOrderID string `json:"remote_order_id"`
	Signature     string `json:"signature"`
}

// FileURLResponse carries a temporary download link.
type FileURLResponse struct {
	URL string `json:"url"`
}
