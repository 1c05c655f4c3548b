package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/prowriters/internal/domain/model"
)

// Notifier delivers a single notification.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) bool
}

// Dispatcher delivers notifications on a fixed pool of workers so callers
// never wait on email delivery.
type Dispatcher struct {
	notifier Notifier
	workers  int
	timeout  time.Duration
	logger   *slog.Logger

	jobs    chan model.Notification
	wg      sync.WaitGroup
	mu      sync.RWMutex
	started bool
	stopped bool
	base    context.Context
}

// NewDispatcher constructs the notification worker pool.
func NewDispatcher(notifier Notifier, workers, queueSize int, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Dispatcher{
		notifier: notifier,
		workers:  workers,
		timeout:  timeout,
		logger:   logger,
		jobs:     make(chan model.Notification, queueSize),
	}
}

// Start launches the workers. Jobs outlive cancellation of ctx; Stop ends them.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true
	d.base = context.WithoutCancel(ctx)

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

// Enqueue schedules n for delivery. It never blocks and reports false when
// the queue is full or the dispatcher is stopped.
func (d *Dispatcher) Enqueue(n model.Notification) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.logger.Warn("notification dropped: dispatcher stopped", slog.String("kind", string(n.Kind)))
		return false
	}

	select {
	case d.jobs <- n:
		return true
	default:
		d.logger.Warn("notification dropped: queue full",
			slog.String("kind", string(n.Kind)),
			slog.String("to", n.Recipient),
		)
		return false
	}
}

// Stop rejects new jobs and waits until queued ones are delivered.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for n := range d.jobs {
		d.handle(n)
	}
}

func (d *Dispatcher) handle(n model.Notification) {
	ctx := d.base
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("notification panicked", slog.String("kind", string(n.Kind)), slog.Any("panic", r))
		}
	}()

	if !d.notifier.Notify(ctx, n) {
		d.logger.Warn("notification not delivered", slog.String("kind", string(n.Kind)), slog.String("to", n.Recipient))
	}
}
