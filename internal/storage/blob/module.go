package blob

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/prowriters/internal/config"
)

// Module wires the order file store.
var Module = fx.Options(
	fx.Provide(newStore),
	fx.Invoke(registerLifecycle),
)

func newStore(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	return New(cfg.Blob, logger)
}

func registerLifecycle(lc fx.Lifecycle, store *Store) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return store.EnsureBucket(ctx)
		},
	})
}
