package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/prowriters/internal/adapter/gateway"
	"github.com/polkiloo/prowriters/internal/adapter/mailer"
	"github.com/polkiloo/prowriters/internal/app"
	"github.com/polkiloo/prowriters/internal/cache"
	"github.com/polkiloo/prowriters/internal/chat"
	"github.com/polkiloo/prowriters/internal/config"
	"github.com/polkiloo/prowriters/internal/events"
	"github.com/polkiloo/prowriters/internal/logger"
	"github.com/polkiloo/prowriters/internal/metrics"
	"github.com/polkiloo/prowriters/internal/notify"
	"github.com/polkiloo/prowriters/internal/pkg/auth"
	"github.com/polkiloo/prowriters/internal/seed"
	"github.com/polkiloo/prowriters/internal/server/http/router"
	"github.com/polkiloo/prowriters/internal/storage/blob"
	"github.com/polkiloo/prowriters/internal/storage/postgres"
	"github.com/polkiloo/prowriters/internal/usecase"
	"github.com/polkiloo/prowriters/internal/worker"
)

// Module composes the full server graph. The dispatcher is registered ahead
// of the HTTP server so it starts first and drains after the server stops.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		blob.Module,
		cache.Module,
		events.Module,
		gateway.Module,
		mailer.Module,
		notify.Module,
		metrics.Module,
		worker.Module,
		usecase.Module,
		chat.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

// Tooling composes the graph used by maintenance commands: storage, the
// account and catalog use cases, and the seeder. No HTTP server is started.
func Tooling(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		cache.Module,
		mailer.Module,
		notify.Module,
		metrics.Module,
		worker.Module,
		fx.Provide(
			usecase.NewAuthUseCase,
			usecase.NewCatalogUseCase,
		),
		seed.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
