package gateway

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/prowriters/internal/config"
)

// Module exposes the payment gateway client to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	gw := p.Config.Gateway
	return NewHTTPClient(gw.BaseURL, gw.KeyID, gw.KeySecret, gw.Timeout, p.Logger)
}
