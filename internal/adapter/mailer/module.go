package mailer

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/prowriters/internal/config"
)

// Module provides the email renderer and sender.
var Module = fx.Provide(
	NewRenderer,
	func(cfg *config.Config, logger *slog.Logger) (Sender, error) {
		return NewSender(cfg.Mail, logger)
	},
)
