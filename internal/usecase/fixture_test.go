package usecase

import (
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/prowriters/internal/config"
	"github.com/polkiloo/prowriters/internal/domain/model"
	"github.com/polkiloo/prowriters/internal/metrics"
	pkgAuth "github.com/polkiloo/prowriters/internal/pkg/auth"
	testhelpers "github.com/polkiloo/prowriters/internal/test"
)

const gatewaySecret = "gw-secret"

var (
	customer  = pkgAuth.Principal{UserID: 1, Role: model.RoleCustomer}
	stranger  = pkgAuth.Principal{UserID: 2, Role: model.RoleCustomer}
	supporter = pkgAuth.Principal{UserID: 3, Role: model.RoleSupport}
)

type fixture struct {
	users   *testhelpers.UserRepositoryStub
	catalog *testhelpers.CatalogRepositoryStub
	orders  *testhelpers.OrderRepositoryStub
	chat    *testhelpers.ChatRepositoryStub
	files   *testhelpers.FileStoreStub
	queue   *testhelpers.QueueStub
	gateway *testhelpers.GatewayStub
	events  *testhelpers.PublisherStub
	metrics *metrics.Metrics
	cfg     *config.Config

	orderUC   *OrderUseCase
	paymentUC *PaymentUseCase
	chatUC    *ChatUseCase
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testCatalog() []model.Service {
	return []model.Service{{
		ID:       1,
		Slug:     "resume-writing",
		Name:     "Resume Writing",
		IsActive: true,
		Packages: []model.ServicePackage{
			{ID: 1, ServiceID: 1, Name: "Basic", PriceINR: decimal.NewFromInt(2999), PriceUSD: decimal.NewFromInt(39), DeliveryDays: 3, Revisions: 2, IsActive: true},
			{ID: 2, ServiceID: 1, Name: "Premium", PriceINR: decimal.NewFromInt(4999), PriceUSD: decimal.NewFromInt(69), DeliveryDays: 2, Revisions: 5, IsActive: true},
			{ID: 3, ServiceID: 1, Name: "Legacy", PriceINR: decimal.NewFromInt(999), PriceUSD: decimal.NewFromInt(15), DeliveryDays: 5, IsActive: false},
		},
	}}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		users:   testhelpers.NewUserRepositoryStub(),
		catalog: &testhelpers.CatalogRepositoryStub{Services: testCatalog()},
		orders:  testhelpers.NewOrderRepositoryStub(),
		chat:    &testhelpers.ChatRepositoryStub{Names: map[int64]string{1: "Asha Rao", 3: "Sam Support"}},
		files:   testhelpers.NewFileStoreStub(),
		queue:   &testhelpers.QueueStub{},
		gateway: testhelpers.NewGatewayStub(gatewaySecret),
		events:  &testhelpers.PublisherStub{},
		metrics: metrics.New(),
		cfg: &config.Config{
			SupportName: "Support Team",
			Gateway:     config.Gateway{KeyID: "rzp_test_key"},
		},
	}

	f.users.Add(model.User{ID: 1, Email: "asha@example.com", FirstName: "Asha", LastName: "Rao", Role: model.RoleCustomer})
	f.users.Add(model.User{ID: 2, Email: "bob@example.com", FirstName: "Bob", Role: model.RoleCustomer})
	f.users.Add(model.User{ID: 3, Email: "sam@example.com", FirstName: "Sam", Role: model.RoleSupport})

	f.orderUC = NewOrderUseCase(OrderUseCaseParams{
		Orders:  f.orders,
		Catalog: f.catalog,
		Users:   f.users,
		Files:   f.files,
		Queue:   f.queue,
		Gateway: f.gateway,
		Events:  f.events,
		Metrics: f.metrics,
		Logger:  discardLogger(),
	})
	f.paymentUC = NewPaymentUseCase(f.orders, f.gateway, f.orderUC, f.cfg, f.metrics, discardLogger())
	f.chatUC = NewChatUseCase(f.orders, f.chat, f.users, f.cfg, f.metrics, discardLogger())
	return f
}

// seedOrder stores an order for user 1 in the given state.
func (f *fixture) seedOrder(id int64, status model.OrderStatus, payment model.PaymentStatus) model.Order {
	o := model.Order{
		ID:            id,
		Number:        "PW20250101000000000" + string(rune('0'+id%10)),
		UserID:        customer.UserID,
		PackageID:     1,
		Status:        status,
		PaymentStatus: payment,
		Amount:        decimal.NewFromInt(2999),
		Currency:      model.CurrencyINR,
		Requirements:  "Senior engineer resume",
	}
	if payment == model.PaymentStatusPaid || payment == model.PaymentStatusRefunded {
		o.PaymentID = "pay_seed"
		o.RemoteOrderID = "order_seed"
	}
	f.orders.Put(o)
	return o
}
