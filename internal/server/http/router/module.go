package router

import (
	"go.uber.org/fx"

	"github.com/polkiloo/prowriters/internal/app"
	"github.com/polkiloo/prowriters/internal/server/http/handlers"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Provide(
	Setup,
	func(m *app.Marketplace) handlers.MarketplaceFacade { return m },
)
