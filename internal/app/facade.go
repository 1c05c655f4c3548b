package app

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/prowriters/internal/chat"
	"github.com/polkiloo/prowriters/internal/domain/model"
	pkgAuth "github.com/polkiloo/prowriters/internal/pkg/auth"
	"github.com/polkiloo/prowriters/internal/usecase"
)

// HealthChecker reports whether a backing service is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Marketplace aggregates the use cases exposed over HTTP.
type Marketplace struct {
	auth     *usecase.AuthUseCase
	catalog  *usecase.CatalogUseCase
	orders   *usecase.OrderUseCase
	payments *usecase.PaymentUseCase
	chat     *usecase.ChatUseCase
	relay    *chat.Relay
	health   HealthChecker
}

// NewMarketplace constructs the facade.
func NewMarketplace(auth *usecase.AuthUseCase, catalog *usecase.CatalogUseCase, orders *usecase.OrderUseCase, payments *usecase.PaymentUseCase, chatUC *usecase.ChatUseCase, relay *chat.Relay, health HealthChecker) *Marketplace {
	return &Marketplace{
		auth:     auth,
		catalog:  catalog,
		orders:   orders,
		payments: payments,
		chat:     chatUC,
		relay:    relay,
		health:   health,
	}
}

func (m *Marketplace) Register(ctx context.Context, in model.Registration) (string, error) {
	_, token, err := m.auth.Register(ctx, in)
	return token, err
}

func (m *Marketplace) Authenticate(ctx context.Context, email, password string) (string, error) {
	_, token, err := m.auth.Authenticate(ctx, email, password)
	return token, err
}

func (m *Marketplace) ParseToken(token string) (pkgAuth.Principal, error) {
	return m.auth.ParseToken(token)
}

func (m *Marketplace) Profile(ctx context.Context, userID int64) (*model.User, error) {
	return m.auth.GetByID(ctx, userID)
}

func (m *Marketplace) Services(ctx context.Context) ([]model.Service, error) {
	return m.catalog.Services(ctx)
}

func (m *Marketplace) Service(ctx context.Context, slug string) (*model.Service, error) {
	return m.catalog.Service(ctx, slug)
}

func (m *Marketplace) Package(ctx context.Context, id int64) (*model.ServicePackage, *model.Service, error) {
	return m.catalog.Package(ctx, id)
}

func (m *Marketplace) UpdatePackagePrices(ctx context.Context, id int64, priceINR, priceUSD decimal.Decimal) error {
	return m.catalog.UpdatePackagePrices(ctx, id, priceINR, priceUSD)
}

func (m *Marketplace) CreateOrder(ctx context.Context, userID int64, req model.OrderRequest) (*model.Order, error) {
	return m.orders.Create(ctx, userID, req)
}

func (m *Marketplace) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	return m.orders.List(ctx, userID)
}

func (m *Marketplace) Order(ctx context.Context, caller pkgAuth.Principal, id int64) (*model.Order, error) {
	return m.orders.Get(ctx, caller, id)
}

func (m *Marketplace) CancelOrder(ctx context.Context, caller pkgAuth.Principal, id int64) (*model.Order, error) {
	return m.orders.Cancel(ctx, caller, id)
}

func (m *Marketplace) RequestRevision(ctx context.Context, caller pkgAuth.Principal, id int64) (*model.Order, error) {
	return m.orders.RequestRevision(ctx, caller, id)
}

func (m *Marketplace) OrderFiles(ctx context.Context, caller pkgAuth.Principal, id int64) ([]model.OrderFile, error) {
	return m.orders.Files(ctx, caller, id)
}

func (m *Marketplace) FileURL(ctx context.Context, caller pkgAuth.Principal, orderID, fileID int64) (string, error) {
	return m.orders.FileURL(ctx, caller, orderID, fileID)
}

func (m *Marketplace) Checkout(ctx context.Context, caller pkgAuth.Principal, id int64) (*model.Checkout, error) {
	return m.payments.Checkout(ctx, caller, id)
}

func (m *Marketplace) ConfirmPayment(ctx context.Context, caller pkgAuth.Principal, id int64, cb model.PaymentCallback) (*model.Order, error) {
	return m.payments.Confirm(ctx, caller, id, cb)
}

func (m *Marketplace) FailPayment(ctx context.Context, caller pkgAuth.Principal, id int64) (*model.Order, error) {
	return m.payments.Fail(ctx, caller, id)
}

func (m *Marketplace) StartWork(ctx context.Context, id int64) (*model.Order, error) {
	return m.orders.StartWork(ctx, id)
}

func (m *Marketplace) CompleteOrder(ctx context.Context, id int64) (*model.Order, error) {
	return m.orders.Complete(ctx, id)
}

func (m *Marketplace) RefundOrder(ctx context.Context, id int64) (*model.Order, error) {
	return m.orders.Refund(ctx, id)
}

func (m *Marketplace) AttachDelivery(ctx context.Context, id int64, att *model.Attachment) (*model.OrderFile, error) {
	return m.orders.AttachDelivery(ctx, id, att)
}

func (m *Marketplace) ChatHistory(ctx context.Context, caller pkgAuth.Principal, orderID int64) ([]model.ChatEntry, error) {
	return m.chat.History(ctx, caller, orderID)
}

// PostMessage stores a message sent over plain HTTP and relays it to the
// live sessions of the order.
func (m *Marketplace) PostMessage(ctx context.Context, caller pkgAuth.Principal, orderID int64, body string) (*model.ChatEntry, error) {
	p, err := m.chat.Authorize(ctx, caller, orderID)
	if err != nil {
		return nil, err
	}
	msg, err := m.chat.Post(ctx, p, body)
	if err != nil {
		return nil, err
	}
	m.relay.Announce(p, msg)
	return &model.ChatEntry{ChatMessage: *msg, SenderName: p.DisplayName}, nil
}

func (m *Marketplace) JoinChat(ctx context.Context, caller pkgAuth.Principal, orderID int64) (*model.Participant, error) {
	return m.chat.Authorize(ctx, caller, orderID)
}

func (m *Marketplace) ServeChat(w http.ResponseWriter, r *http.Request, p *model.Participant) error {
	return m.relay.Serve(w, r, p)
}

func (m *Marketplace) HealthCheck(ctx context.Context) error {
	return m.health.HealthCheck(ctx)
}
