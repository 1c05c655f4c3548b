package notify

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/prowriters/internal/adapter/mailer"
	"github.com/polkiloo/prowriters/internal/domain/model"
	"github.com/polkiloo/prowriters/internal/metrics"
)

// Module provides the notifier.
var Module = fx.Provide(New)

// Renderer builds messages from notifications.
type Renderer interface {
	Render(n model.Notification) (mailer.Message, error)
}

// Notifier renders and sends transactional emails. Delivery is best effort:
// failures are logged and counted, never returned.
type Notifier struct {
	renderer Renderer
	sender   mailer.Sender
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates a notifier.
func New(renderer *mailer.Renderer, sender mailer.Sender, m *metrics.Metrics, logger *slog.Logger) *Notifier {
	return newNotifier(renderer, sender, m, logger)
}

func newNotifier(renderer Renderer, sender mailer.Sender, m *metrics.Metrics, logger *slog.Logger) *Notifier {
	return &Notifier{renderer: renderer, sender: sender, metrics: m, logger: logger}
}

// Notify delivers n and reports whether the send succeeded.
func (n *Notifier) Notify(ctx context.Context, notification model.Notification) bool {
	ok := n.deliver(ctx, notification)
	if n.metrics != nil {
		n.metrics.NotificationResult(string(notification.Kind), ok)
	}
	return ok
}

func (n *Notifier) deliver(ctx context.Context, notification model.Notification) bool {
	msg, err := n.renderer.Render(notification)
	if err != nil {
		n.logger.Error("render notification failed",
			slog.String("kind", string(notification.Kind)),
			slog.String("error", err.Error()),
		)
		return false
	}

	if err := n.sender.Send(ctx, msg); err != nil {
		n.logger.Error("send notification failed",
			slog.String("kind", string(notification.Kind)),
			slog.String("to", notification.Recipient),
			slog.String("error", err.Error()),
		)
		return false
	}

	n.logger.Info("notification sent",
		slog.String("kind", string(notification.Kind)),
		slog.String("to", notification.Recipient),
	)
	return true
}
