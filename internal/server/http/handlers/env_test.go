package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/prowriters/internal/app"
	"github.com/polkiloo/prowriters/internal/chat"
	"github.com/polkiloo/prowriters/internal/config"
	"github.com/polkiloo/prowriters/internal/domain/model"
	"github.com/polkiloo/prowriters/internal/metrics"
	pkgAuth "github.com/polkiloo/prowriters/internal/pkg/auth"
	"github.com/polkiloo/prowriters/internal/server/http/middleware"
	testhelpers "github.com/polkiloo/prowriters/internal/test"
	"github.com/polkiloo/prowriters/internal/usecase"
)

const gatewaySecret = "gw-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type healthStub struct{ err error }

func (h *healthStub) HealthCheck(context.Context) error { return h.err }

// env wires real use cases over in-memory stubs behind the handlers.
type env struct {
	users   *testhelpers.UserRepositoryStub
	catalog *testhelpers.CatalogRepositoryStub
	orders  *testhelpers.OrderRepositoryStub
	chat    *testhelpers.ChatRepositoryStub
	files   *testhelpers.FileStoreStub
	queue   *testhelpers.QueueStub
	gateway *testhelpers.GatewayStub
	health  *healthStub

	market *app.Marketplace
	engine *gin.Engine
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// tokens are "<user id>:<role>" so tests can mint them by hand.
func tokenFor(p pkgAuth.Principal) string {
	return fmt.Sprintf("%d:%s", p.UserID, p.Role)
}

func parseTestToken(token string) (pkgAuth.Principal, error) {
	idPart, role, ok := strings.Cut(token, ":")
	if !ok {
		return pkgAuth.Principal{}, pkgAuth.ErrInvalidToken
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return pkgAuth.Principal{}, pkgAuth.ErrInvalidToken
	}
	return pkgAuth.Principal{UserID: id, Role: model.Role(role)}, nil
}

var (
	asha = pkgAuth.Principal{UserID: 1, Role: model.RoleCustomer}
	bob  = pkgAuth.Principal{UserID: 2, Role: model.RoleCustomer}
	sam  = pkgAuth.Principal{UserID: 3, Role: model.RoleSupport}
)

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := discardLogger()
	m := metrics.New()
	cfg := &config.Config{
		SupportName: "Support Team",
		Gateway:     config.Gateway{KeyID: "rzp_test_key"},
	}

	e := &env{
		users: testhelpers.NewUserRepositoryStub(),
		catalog: &testhelpers.CatalogRepositoryStub{Services: []model.Service{{
			ID: 1, Slug: "resume-writing", Name: "Resume Writing", Description: "Full rewrite", IsActive: true,
			Packages: []model.ServicePackage{
				{ID: 1, ServiceID: 1, Name: "Basic", PriceINR: decimal.NewFromInt(2999), PriceUSD: decimal.NewFromInt(39), DeliveryDays: 3, Revisions: 2, IsActive: true},
				{ID: 2, ServiceID: 1, Name: "Legacy", PriceINR: decimal.NewFromInt(999), PriceUSD: decimal.NewFromInt(15), DeliveryDays: 5, IsActive: false},
			},
		}}},
		orders:  testhelpers.NewOrderRepositoryStub(),
		chat:    &testhelpers.ChatRepositoryStub{Names: map[int64]string{1: "Asha Rao", 3: "Sam Support"}},
		files:   testhelpers.NewFileStoreStub(),
		queue:   &testhelpers.QueueStub{},
		gateway: testhelpers.NewGatewayStub(gatewaySecret),
		health:  &healthStub{},
	}
	e.users.Add(model.User{ID: 1, Email: "asha@example.com", PasswordHash: "hash:correct-horse", FirstName: "Asha", LastName: "Rao", Role: model.RoleCustomer})
	e.users.Add(model.User{ID: 2, Email: "bob@example.com", FirstName: "Bob", Role: model.RoleCustomer})
	e.users.Add(model.User{ID: 3, Email: "sam@example.com", FirstName: "Sam", Role: model.RoleSupport})

	strategy := testhelpers.StrategyStub{
		IssueFn: func(p pkgAuth.Principal) (string, error) { return tokenFor(p), nil },
		ParseFn: parseTestToken,
	}
	authUC := usecase.NewAuthUseCase(e.users, testhelpers.HasherStub{}, strategy, e.queue, logger)
	catalogUC := usecase.NewCatalogUseCase(e.catalog, testhelpers.NewCacheStub(), cfg, logger)
	orderUC := usecase.NewOrderUseCase(usecase.OrderUseCaseParams{
		Orders:  e.orders,
		Catalog: e.catalog,
		Users:   e.users,
		Files:   e.files,
		Queue:   e.queue,
		Gateway: e.gateway,
		Events:  &testhelpers.PublisherStub{},
		Metrics: m,
		Logger:  logger,
	})
	paymentUC := usecase.NewPaymentUseCase(e.orders, e.gateway, orderUC, cfg, m, logger)
	chatUC := usecase.NewChatUseCase(e.orders, e.chat, e.users, cfg, m, logger)
	relay := chat.NewRelay(chat.NewHub(m, logger), chatUC, cfg, logger)
	e.market = app.NewMarketplace(authUC, catalogUC, orderUC, paymentUC, chatUC, relay, e.health)

	e.engine = gin.New()
	e.engine.Use(middleware.RequestID())
	e.mount()
	return e
}

func (e *env) mount() {
	authH := NewAuthHandler(e.market)
	catalogH := NewCatalogHandler(e.market)
	orderH := NewOrderHandler(e.market)
	paymentH := NewPaymentHandler(e.market)
	chatH := NewChatHandler(e.market, discardLogger())
	adminH := NewAdminHandler(e.market)
	healthH := NewHealthHandler(e.market)

	e.engine.GET("/healthz", healthH.Health)
	e.engine.POST("/api/user/register", authH.Register)
	e.engine.POST("/api/user/login", authH.Login)
	e.engine.GET("/api/services", catalogH.List)
	e.engine.GET("/api/services/:slug", catalogH.Service)
	e.engine.GET("/api/packages/:id", catalogH.Package)

	api := e.engine.Group("/api", middleware.AuthRequired(e.market))
	api.GET("/user/profile", authH.Profile)
	api.POST("/orders", orderH.Create)
	api.GET("/orders", orderH.List)
	api.GET("/orders/:id", orderH.Get)
	api.POST("/orders/:id/cancel", orderH.Cancel)
	api.POST("/orders/:id/revision", orderH.Revision)
	api.GET("/orders/:id/files", orderH.Files)
	api.GET("/orders/:id/files/:fileID", orderH.File)
	api.POST("/orders/:id/checkout", paymentH.Checkout)
	api.POST("/orders/:id/payment/verify", paymentH.Verify)
	api.POST("/orders/:id/payment/failed", paymentH.Failed)
	api.GET("/orders/:id/messages", chatH.History)
	api.POST("/orders/:id/messages", chatH.Post)

	admin := api.Group("/admin", middleware.RequireStaff())
	admin.POST("/orders/:id/start", adminH.Start)
	admin.POST("/orders/:id/complete", adminH.Complete)
	admin.POST("/orders/:id/refund", adminH.Refund)
	admin.POST("/orders/:id/files", adminH.Deliver)
	admin.PATCH("/packages/:id/prices", adminH.UpdatePrices)
}

func (e *env) do(method, path string, caller *pkgAuth.Principal, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if caller != nil {
		req.Header.Set("Authorization", "Bearer "+tokenFor(*caller))
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *env) json(method, path string, caller *pkgAuth.Principal, body string) *httptest.ResponseRecorder {
	return e.do(method, path, caller, strings.NewReader(body), "application/json")
}

// seedOrder stores an order of asha in the given state.
func (e *env) seedOrder(id int64, status model.OrderStatus, payment model.PaymentStatus) {
	o := model.Order{
		ID:            id,
		Number:        fmt.Sprintf("PW20250101%010d", id),
		UserID:        asha.UserID,
		PackageID:     1,
		Status:        status,
		PaymentStatus: payment,
		Amount:        decimal.NewFromInt(2999),
		Currency:      model.CurrencyINR,
		Requirements:  "Senior engineer resume",
	}
	if payment == model.PaymentStatusPaid {
		o.PaymentID = "pay_seed"
		o.RemoteOrderID = "order_seed"
	}
	e.orders.Put(o)
}

type uploadPart struct {
	field, name, content string
}

func multipartBody(t *testing.T, fields map[string]string, file *uploadPart) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if file != nil {
		part, err := w.CreateFormFile(file.field, file.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(file.content)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}
