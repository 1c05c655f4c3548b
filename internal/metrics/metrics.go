package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

const namespace = "prowriters"

// Module exposes the metrics registry to fx graph.
var Module = fx.Provide(New)

// Metrics holds the application collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	OrdersCreated     prometheus.Counter
	PaymentsConfirmed prometheus.Counter
	PaymentsRejected  prometheus.Counter
	Notifications     *prometheus.CounterVec
	ChatMessages      prometheus.Counter
	ChatSessions      prometheus.Gauge
}

// New registers the collectors together with the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders placed by customers.",
		}),
		PaymentsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_confirmed_total",
			Help:      "Payment captures applied to orders.",
		}),
		PaymentsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_rejected_total",
			Help:      "Payment callbacks that failed verification.",
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification delivery attempts by kind and result.",
		}, []string{"kind", "result"}),
		ChatMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_messages_total",
			Help:      "Chat messages persisted.",
		}),
		ChatSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chat_sessions",
			Help:      "Live chat connections.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.OrdersCreated,
		m.PaymentsConfirmed,
		m.PaymentsRejected,
		m.Notifications,
		m.ChatMessages,
		m.ChatSessions,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// NotificationResult counts one delivery attempt.
func (m *Metrics) NotificationResult(kind string, ok bool) {
	result := "sent"
	if !ok {
		result = "failed"
	}
	m.Notifications.WithLabelValues(kind, result).Inc()
}
