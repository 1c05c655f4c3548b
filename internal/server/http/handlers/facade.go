package handlers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/prowriters/internal/domain/model"
	pkgAuth "github.com/polkiloo/prowriters/internal/pkg/auth"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, in model.Registration) (string, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	ParseToken(token string) (pkgAuth.Principal, error)
	Profile(ctx context.Context, userID int64) (*model.User, error)
}

// CatalogFacade exposes the service catalog.
type CatalogFacade interface {
	Services(ctx context.Context) ([]model.Service, error)
	Service(ctx context.Context, slug string) (*model.Service, error)
	Package(ctx context.Context, id int64) (*model.ServicePackage, *model.Service, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, userID int64, req model.OrderRequest) (*model.Order, error)
	Orders(ctx context.Context, userID int64) ([]model.Order, error)
	Order(ctx context.Context, caller pkgAuth.Principal, id int64) (*model.Order, error)
	CancelOrder(ctx context.Context, caller pkgAuth.Principal, id int64) (*model.Order, error)
	RequestRevision(ctx context.Context, caller pkgAuth.Principal, id int64) (*model.Order, error)
	OrderFiles(ctx context.Context, caller pkgAuth.Principal, id int64) ([]model.OrderFile, error)
	FileURL(ctx context.Context, caller pkgAuth.Principal, orderID, fileID int64) (string, error)
}

// PaymentFacade drives checkout and payment confirmation.
type PaymentFacade interface {
	Checkout(ctx context.Context, caller pkgAuth.Principal, id int64) (*model.Checkout, error)
	ConfirmPayment(ctx context.Context, caller pkgAuth.Principal, id int64, cb model.PaymentCallback) (*model.Order, error)
	FailPayment(ctx context.Context, caller pkgAuth.Principal, id int64) (*model.Order, error)
}

// ChatFacade exposes order conversations.
type ChatFacade interface {
	ChatHistory(ctx context.Context, caller pkgAuth.Principal, orderID int64) ([]model.ChatEntry, error)
	PostMessage(ctx context.Context, caller pkgAuth.Principal, orderID int64, body string) (*model.ChatEntry, error)
	JoinChat(ctx context.Context, caller pkgAuth.Principal, orderID int64) (*model.Participant, error)
	ServeChat(w http.ResponseWriter, r *http.Request, p *model.Participant) error
}

// AdminFacade holds staff-only operations.
type AdminFacade interface {
	StartWork(ctx context.Context, id int64) (*model.Order, error)
	CompleteOrder(ctx context.Context, id int64) (*model.Order, error)
	RefundOrder(ctx context.Context, id int64) (*model.Order, error)
	AttachDelivery(ctx context.Context, id int64, att *model.Attachment) (*model.OrderFile, error)
	UpdatePackagePrices(ctx context.Context, id int64, priceINR, priceUSD decimal.Decimal) error
}

// HealthFacade reports backing service health.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// MarketplaceFacade aggregates the full set of operations used across handlers.
type MarketplaceFacade interface {
	AuthFacade
	CatalogFacade
	OrderFacade
	PaymentFacade
	ChatFacade
	AdminFacade
	HealthFacade
}
