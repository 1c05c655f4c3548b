package test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/prowriters/internal/adapter/gateway"
	"github.com/polkiloo/prowriters/internal/cache"
	"github.com/polkiloo/prowriters/internal/domain/model"
	"github.com/polkiloo/prowriters/internal/events"
)

// FileStoreStub keeps uploaded objects in memory.
type FileStoreStub struct {
	Objects   map[string][]byte
	Deleted   []string
	PutErr    error
	DeleteErr error
	mu        sync.Mutex
}

// NewFileStoreStub constructs an empty store.
func NewFileStoreStub() *FileStoreStub {
	return &FileStoreStub{Objects: make(map[string][]byte)}
}

// Put reads the object into memory.
func (s *FileStoreStub) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	if s.PutErr != nil {
		return s.PutErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[name] = data
	return nil
}

// Delete removes the object.
func (s *FileStoreStub) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, name)
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.Objects, name)
	return nil
}

// URL returns a fake download link.
func (s *FileStoreStub) URL(ctx context.Context, name, downloadAs string) (string, error) {
	return fmt.Sprintf("https://files.test/%s?as=%s", name, downloadAs), nil
}

// Count returns the number of stored objects.
func (s *FileStoreStub) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Objects)
}

// GatewayStub simulates the payment processor. Signatures are produced with
// a real verifier so tests can sign callbacks.
type GatewayStub struct {
	Verifier  gateway.Verifier
	CreateErr error
	RefundErr error
	Created   []string
	Refunds   []string
	mu        sync.Mutex
}

// NewGatewayStub creates a stub using secret for signatures.
func NewGatewayStub(secret string) *GatewayStub {
	return &GatewayStub{Verifier: gateway.NewVerifier(secret)}
}

// CreateOrder returns a remote order derived from the receipt.
func (g *GatewayStub) CreateOrder(ctx context.Context, amount decimal.Decimal, currency model.Currency, receipt string) (*gateway.RemoteOrder, error) {
	if g.CreateErr != nil {
		return nil, g.CreateErr
	}
	minor, err := gateway.ToMinorUnits(amount, currency)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Created = append(g.Created, receipt)
	return &gateway.RemoteOrder{ID: "order_" + receipt, Amount: minor, Currency: currency, Receipt: receipt, Status: "created"}, nil
}

// Refund records the refund request.
func (g *GatewayStub) Refund(ctx context.Context, paymentID string, amount decimal.Decimal, currency model.Currency) (*gateway.Refund, error) {
	if g.RefundErr != nil {
		return nil, g.RefundErr
	}
	minor, err := gateway.ToMinorUnits(amount, currency)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Refunds = append(g.Refunds, paymentID)
	return &gateway.Refund{ID: "rfnd_" + paymentID, PaymentID: paymentID, Amount: minor, Status: "processed"}, nil
}

// VerifySignature checks the triple with the stub secret.
func (g *GatewayStub) VerifySignature(paymentID, remoteOrderID, signature string) bool {
	return g.Verifier.Verify(paymentID, remoteOrderID, signature)
}

// PublisherStub records published events.
type PublisherStub struct {
	Err    error
	events []events.Event
	mu     sync.Mutex
}

// Publish stores the event.
func (p *PublisherStub) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.Err
}

// Types returns published event types in order.
func (p *PublisherStub) Types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// CacheStub is a map backed cache.
type CacheStub struct {
	Data   map[string][]byte
	GetErr error
	SetErr error
	mu     sync.Mutex
}

// NewCacheStub constructs an empty cache.
func NewCacheStub() *CacheStub {
	return &CacheStub{Data: make(map[string][]byte)}
}

// Get returns the cached value or cache.ErrCacheMiss.
func (c *CacheStub) Get(ctx context.Context, key string) ([]byte, error) {
	if c.GetErr != nil {
		return nil, c.GetErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.Data[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

// Set stores the value; ttl is ignored.
func (c *CacheStub) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.SetErr != nil {
		return c.SetErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Data[key] = value
	return nil
}

// Delete removes the key.
func (c *CacheStub) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.Data, key)
	return nil
}

// QueueStub records enqueued notifications.
type QueueStub struct {
	Reject bool
	items  []model.Notification
	mu     sync.Mutex
}

// Enqueue stores n unless Reject is set.
func (q *QueueStub) Enqueue(n model.Notification) bool {
	if q.Reject {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
	return true
}

// Items returns a copy of the queued notifications.
func (q *QueueStub) Items() []model.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]model.Notification(nil), q.items...)
}

// Kinds returns the queued notification kinds in order.
func (q *QueueStub) Kinds() []model.NotificationKind {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]model.NotificationKind, 0, len(q.items))
	for _, n := range q.items {
		out = append(out, n.Kind)
	}
	return out
}

// NotifierStub records delivered notifications.
type NotifierStub struct {
	Result   bool
	NotifyFn func(context.Context, model.Notification) bool
	sent     []model.Notification
	mu       sync.Mutex
}

// Notify delegates to NotifyFn or records n and returns Result.
func (n *NotifierStub) Notify(ctx context.Context, notification model.Notification) bool {
	if n.NotifyFn != nil {
		return n.NotifyFn(ctx, notification)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return n.Result
}

// Sent returns a copy of recorded notifications.
func (n *NotifierStub) Sent() []model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.Notification(nil), n.sent...)
}

// ErrStub is a generic failure for tests.
var ErrStub = errors.New("stub failure")
