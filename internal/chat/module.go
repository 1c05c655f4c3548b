package chat

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/prowriters/internal/config"
	"github.com/polkiloo/prowriters/internal/usecase"
)

// Module wires the room registry and the websocket relay.
var Module = fx.Provide(
	NewHub,
	newRelay,
)

func newRelay(hub *Hub, chat *usecase.ChatUseCase, cfg *config.Config, logger *slog.Logger) *Relay {
	return NewRelay(hub, chat, cfg, logger)
}
