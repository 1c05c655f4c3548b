package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/prowriters/internal/config"
	"github.com/polkiloo/prowriters/internal/metrics"
	"github.com/polkiloo/prowriters/internal/server/http/handlers"
	"github.com/polkiloo/prowriters/internal/server/http/middleware"
)

// Params lists router dependencies.
type Params struct {
	fx.In

	Facade  handlers.MarketplaceFacade
	Metrics *metrics.Metrics
	Config  *config.Config
	Logger  *slog.Logger
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.CORS(p.Config.CORSOrigins))
	engine.Use(middleware.DecompressRequest())
	// websocket upgrades must not be wrapped by the gzip writer
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws/", "/metrics"})))
	engine.NoRoute(middleware.NotFound())

	authHandler := handlers.NewAuthHandler(p.Facade)
	catalogHandler := handlers.NewCatalogHandler(p.Facade)
	orderHandler := handlers.NewOrderHandler(p.Facade)
	paymentHandler := handlers.NewPaymentHandler(p.Facade)
	chatHandler := handlers.NewChatHandler(p.Facade, p.Logger)
	adminHandler := handlers.NewAdminHandler(p.Facade)
	healthHandler := handlers.NewHealthHandler(p.Facade)

	engine.GET("/healthz", healthHandler.Health)
	engine.GET("/metrics", gin.WrapH(p.Metrics.Handler()))

	api := engine.Group("/api")
	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)

	api.GET("/services", catalogHandler.List)
	api.GET("/services/:slug", catalogHandler.Service)
	api.GET("/packages/:id", catalogHandler.Package)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(p.Facade))
	authed.GET("/user/profile", authHandler.Profile)

	orders := authed.Group("/orders")
	orders.POST("", orderHandler.Create)
	orders.GET("", orderHandler.List)
	orders.GET("/:id", orderHandler.Get)
	orders.POST("/:id/cancel", orderHandler.Cancel)
	orders.POST("/:id/revision", orderHandler.Revision)
	orders.GET("/:id/files", orderHandler.Files)
	orders.GET("/:id/files/:fileID", orderHandler.File)
	orders.POST("/:id/checkout", paymentHandler.Checkout)
	orders.POST("/:id/payment/verify", paymentHandler.Verify)
	orders.POST("/:id/payment/failed", paymentHandler.Failed)
	orders.GET("/:id/messages", chatHandler.History)
	orders.POST("/:id/messages", chatHandler.Post)

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireStaff())
	admin.POST("/orders/:id/start", adminHandler.Start)
	admin.POST("/orders/:id/complete", adminHandler.Complete)
	admin.POST("/orders/:id/refund", adminHandler.Refund)
	admin.POST("/orders/:id/files", adminHandler.Deliver)
	admin.PATCH("/packages/:id/prices", adminHandler.UpdatePrices)

	ws := engine.Group("/ws")
	ws.Use(middleware.AuthRequired(p.Facade))
	ws.GET("/orders/:id/chat", chatHandler.Connect)

	return engine
}
