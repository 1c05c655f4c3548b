package worker

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/prowriters/internal/config"
	"github.com/polkiloo/prowriters/internal/notify"
	"github.com/polkiloo/prowriters/internal/usecase"
)

// Module runs the notification dispatcher for the lifetime of the app.
var Module = fx.Options(
	fx.Provide(
		newDispatcher,
		func(d *Dispatcher) usecase.NotificationQueue { return d },
	),
	fx.Invoke(registerLifecycle),
)

type dispatcherParams struct {
	fx.In

	Notifier *notify.Notifier
	Config   *config.Config
	Logger   *slog.Logger
}

func newDispatcher(p dispatcherParams) *Dispatcher {
	return NewDispatcher(p.Notifier, p.Config.Notify.Workers, p.Config.Notify.QueueSize, p.Config.Notify.Timeout, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, d *Dispatcher) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			d.Start(ctx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Stop()
			return nil
		},
	})
}
