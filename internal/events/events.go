package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"

	"github.com/polkiloo/prowriters/internal/config"
	"github.com/polkiloo/prowriters/internal/domain/model"
)

// Type names an order lifecycle event.
type Type string

const (
	OrderCreated   Type = "order.created"
	OrderPaid      Type = "order.paid"
	OrderStarted   Type = "order.started"
	OrderRevision  Type = "order.revision"
	OrderCompleted Type = "order.completed"
	OrderCancelled Type = "order.cancelled"
	OrderRefunded  Type = "order.refunded"
)

// Event is the wire form of a lifecycle change.
type Event struct {
	Type          Type                `json:"type"`
	OrderID       int64               `json:"order_id"`
	OrderNumber   string              `json:"order_number"`
	UserID        int64               `json:"user_id"`
	Status        model.OrderStatus   `json:"status"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
	Amount        string              `json:"amount"`
	Currency      model.Currency      `json:"currency"`
	OccurredAt    time.Time           `json:"occurred_at"`
}

// FromOrder snapshots the order into an event.
func FromOrder(t Type, o *model.Order) Event {
	return Event{
		Type:          t,
		OrderID:       o.ID,
		OrderNumber:   o.Number,
		UserID:        o.UserID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Amount:        o.Amount.StringFixed(2),
		Currency:      o.Currency,
		OccurredAt:    time.Now().UTC(),
	}
}

// Publisher emits lifecycle events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Module wires the event publisher.
var Module = fx.Provide(NewPublisher)

// NewPublisher builds the configured publisher (kafka or noop).
func NewPublisher(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (Publisher, error) {
	switch cfg.Events.Driver {
	case "", "noop":
		logger.Info("event publishing disabled; using noop publisher")
		return noopPublisher{}, nil
	case "kafka":
		return newKafkaPublisher(lc, cfg.Events, logger), nil
	default:
		return nil, fmt.Errorf("unsupported events driver: %s", cfg.Events.Driver)
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
}

func newKafkaPublisher(lc fx.Lifecycle, cfg config.Events, logger *slog.Logger) *kafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 2 * time.Second,
		MaxAttempts:  3,
		ErrorLogger:  kafka.LoggerFunc(func(msg string, args ...any) { logger.Error(fmt.Sprintf(msg, args...)) }),
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("closing kafka writer")
			return writer.Close()
		},
	})

	return &kafkaPublisher{writer: writer, logger: logger}
}

// Publish writes the event keyed by order number so one order stays on one partition.
func (p *kafkaPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := kafka.Message{
		Key:     []byte(e.OrderNumber),
		Value:   payload,
		Headers: []kafka.Header{{Key: "type", Value: []byte(e.Type)}},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}
