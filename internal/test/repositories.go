package test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/prowriters/internal/domain/errors"
	"github.com/polkiloo/prowriters/internal/domain/model"
	"github.com/polkiloo/prowriters/internal/domain/repository"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
	mu    sync.Mutex
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, user *model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.User)
	}
	if _, exists := s.Users[user.Email]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	stored := *user
	stored.ID = s.Next
	if stored.Role == "" {
		stored.Role = model.RoleCustomer
	}
	stored.CreatedAt = time.Now()
	s.Next++
	s.Users[stored.Email] = &stored
	s.ByID[stored.ID] = &stored
	out := stored
	return &out, nil
}

// Add stores a ready user, keeping the given ID.
func (s *UserRepositoryStub) Add(user model.User) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := user
	s.Users[stored.Email] = &stored
	s.ByID[stored.ID] = &stored
	if stored.ID >= s.Next {
		s.Next = stored.ID + 1
	}
	return &stored
}

// GetByEmail fetches user by email or returns not found.
func (s *UserRepositoryStub) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[email]; ok {
		out := *user
		return &out, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		out := *user
		return &out, nil
	}
	return nil, domainErrors.ErrNotFound
}

// SetRole changes the role of the user with email.
func (s *UserRepositoryStub) SetRole(ctx context.Context, email string, role model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	user, ok := s.Users[email]
	if !ok {
		return domainErrors.ErrNotFound
	}
	user.Role = role
	return nil
}

// CatalogRepositoryStub keeps services and packages in memory.
type CatalogRepositoryStub struct {
	Services  []model.Service
	ListCalls int
	Err       error
	mu        sync.Mutex
}

// ListServices returns active services with their active packages.
func (s *CatalogRepositoryStub) ListServices(ctx context.Context) ([]model.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListCalls++
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.Service
	for _, svc := range s.Services {
		if !svc.IsActive {
			continue
		}
		out = append(out, activeCopy(svc))
	}
	return out, nil
}

// GetServiceBySlug finds an active service.
func (s *CatalogRepositoryStub) GetServiceBySlug(ctx context.Context, slug string) (*model.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, svc := range s.Services {
		if svc.Slug == slug && svc.IsActive {
			out := activeCopy(svc)
			return &out, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// GetPackage finds a package regardless of its active flag.
func (s *CatalogRepositoryStub) GetPackage(ctx context.Context, id int64) (*model.ServicePackage, *model.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, nil, s.Err
	}
	for _, svc := range s.Services {
		for _, pkg := range svc.Packages {
			if pkg.ID == id {
				p := pkg
				owner := svc
				owner.Packages = nil
				return &p, &owner, nil
			}
		}
	}
	return nil, nil, domainErrors.ErrNotFound
}

// UpsertService inserts or replaces a service keyed by slug.
func (s *CatalogRepositoryStub) UpsertService(ctx context.Context, service *model.Service) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	for i := range s.Services {
		if s.Services[i].Slug == service.Slug {
			packages := s.Services[i].Packages
			id := s.Services[i].ID
			s.Services[i] = *service
			s.Services[i].ID = id
			s.Services[i].Packages = packages
			return id, nil
		}
	}
	stored := *service
	stored.ID = int64(len(s.Services) + 1)
	stored.Packages = nil
	s.Services = append(s.Services, stored)
	return stored.ID, nil
}

// UpsertPackage inserts or replaces a package keyed by service and name.
func (s *CatalogRepositoryStub) UpsertPackage(ctx context.Context, pkg *model.ServicePackage) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	var next int64 = 1
	for _, svc := range s.Services {
		for _, p := range svc.Packages {
			if p.ID >= next {
				next = p.ID + 1
			}
		}
	}
	for i := range s.Services {
		if s.Services[i].ID != pkg.ServiceID {
			continue
		}
		for j := range s.Services[i].Packages {
			if s.Services[i].Packages[j].Name == pkg.Name {
				id := s.Services[i].Packages[j].ID
				s.Services[i].Packages[j] = *pkg
				s.Services[i].Packages[j].ID = id
				return id, nil
			}
		}
		stored := *pkg
		stored.ID = next
		s.Services[i].Packages = append(s.Services[i].Packages, stored)
		return stored.ID, nil
	}
	return 0, domainErrors.ErrNotFound
}

// UpdatePackagePrices changes both prices of a package.
func (s *CatalogRepositoryStub) UpdatePackagePrices(ctx context.Context, id int64, priceINR, priceUSD decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i := range s.Services {
		for j := range s.Services[i].Packages {
			if s.Services[i].Packages[j].ID == id {
				s.Services[i].Packages[j].PriceINR = priceINR
				s.Services[i].Packages[j].PriceUSD = priceUSD
				return nil
			}
		}
	}
	return domainErrors.ErrNotFound
}

func activeCopy(svc model.Service) model.Service {
	out := svc
	out.Packages = nil
	for _, p := range svc.Packages {
		if p.IsActive {
			out.Packages = append(out.Packages, p)
		}
	}
	return out
}

// OrderRepositoryStub is an in-memory order store with the same conditional
// update rules as the SQL implementation.
type OrderRepositoryStub struct {
	Orders     map[int64]*model.Order
	Files      map[int64][]model.OrderFile
	Next       int64
	NextFile   int64
	Collisions int
	CreateErr  error
	Err        error
	CreateFn   func(context.Context, *model.Order, *model.OrderFile) (*model.Order, error)
	mu         sync.Mutex
}

// NewOrderRepositoryStub constructs an empty order store.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{
		Orders:   make(map[int64]*model.Order),
		Files:    make(map[int64][]model.OrderFile),
		Next:     1,
		NextFile: 1,
	}
}

// Create stores the order and optional file. Collisions forces that many
// ErrAlreadyExists results first.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order, file *model.OrderFile) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order, file)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	if s.Collisions > 0 {
		s.Collisions--
		return nil, domainErrors.ErrAlreadyExists
	}
	for _, existing := range s.Orders {
		if existing.Number == order.Number {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	stored := *order
	stored.ID = s.Next
	s.Next++
	now := time.Now()
	stored.CreatedAt, stored.UpdatedAt = now, now
	s.Orders[stored.ID] = &stored
	if file != nil {
		file.OrderID = stored.ID
		file.ID = s.NextFile
		file.UploadedAt = now
		s.NextFile++
		s.Files[stored.ID] = append(s.Files[stored.ID], *file)
	}
	out := stored
	return &out, nil
}

// Put stores a ready order, keeping the given ID.
func (s *OrderRepositoryStub) Put(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := order
	s.Orders[stored.ID] = &stored
	if stored.ID >= s.Next {
		s.Next = stored.ID + 1
	}
}

// Snapshot returns the stored order without going through the error hooks.
func (s *OrderRepositoryStub) Snapshot(id int64) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.Orders[id]
	if !ok {
		return model.Order{}, false
	}
	return *o, true
}

// Count returns the number of stored orders.
func (s *OrderRepositoryStub) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Orders)
}

// GetByID returns a copy of the order.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	o, ok := s.Orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	out := *o
	return &out, nil
}

// ListByUser returns the user's orders newest first.
func (s *OrderRepositoryStub) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.Order
	for _, o := range s.Orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// SetRemoteOrder stores the processor order id on a pending order.
func (s *OrderRepositoryStub) SetRemoteOrder(ctx context.Context, id int64, remoteOrderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	o, ok := s.Orders[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if o.Status != model.OrderStatusPending {
		return domainErrors.ErrInvalidTransition
	}
	o.RemoteOrderID = remoteOrderID
	return nil
}

// MarkPaid applies the capture when the order is still payable.
func (s *OrderRepositoryStub) MarkPaid(ctx context.Context, id int64, paymentID string) (*model.Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, false, s.Err
	}
	o, ok := s.Orders[id]
	if !ok {
		return nil, false, domainErrors.ErrNotFound
	}
	if !o.Payable() {
		out := *o
		return &out, false, nil
	}
	o.PaymentStatus = model.PaymentStatusPaid
	o.Status = model.OrderStatusConfirmed
	o.PaymentID = paymentID
	o.UpdatedAt = time.Now()
	out := *o
	return &out, true, nil
}

// MarkPaymentFailed records a failed attempt on a pending order.
func (s *OrderRepositoryStub) MarkPaymentFailed(ctx context.Context, id int64) (*model.Order, error) {
	return s.mutate(id, func(o *model.Order) bool {
		if o.Status != model.OrderStatusPending || !o.PaymentStatus.CanTransition(model.PaymentStatusFailed) {
			return false
		}
		o.PaymentStatus = model.PaymentStatusFailed
		return true
	})
}

// UpdateStatus moves the order if it is still in status from.
func (s *OrderRepositoryStub) UpdateStatus(ctx context.Context, id int64, from, to model.OrderStatus) (*model.Order, error) {
	return s.mutate(id, func(o *model.Order) bool {
		if o.Status != from {
			return false
		}
		o.Status = to
		if to == model.OrderStatusCompleted {
			now := time.Now()
			o.CompletedAt = &now
		}
		return true
	})
}

// MarkRefunded refunds a paid order that has not been completed.
func (s *OrderRepositoryStub) MarkRefunded(ctx context.Context, id int64) (*model.Order, error) {
	return s.mutate(id, func(o *model.Order) bool {
		if o.PaymentStatus != model.PaymentStatusPaid {
			return false
		}
		switch o.Status {
		case model.OrderStatusConfirmed, model.OrderStatusInProgress, model.OrderStatusRevision, model.OrderStatusCancelled:
		default:
			return false
		}
		o.PaymentStatus = model.PaymentStatusRefunded
		o.Status = model.OrderStatusCancelled
		return true
	})
}

func (s *OrderRepositoryStub) mutate(id int64, fn func(*model.Order) bool) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	o, ok := s.Orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if !fn(o) {
		return nil, domainErrors.ErrInvalidTransition
	}
	o.UpdatedAt = time.Now()
	out := *o
	return &out, nil
}

// AddFile attaches file metadata to an existing order.
func (s *OrderRepositoryStub) AddFile(ctx context.Context, file *model.OrderFile) (*model.OrderFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if _, ok := s.Orders[file.OrderID]; !ok {
		return nil, domainErrors.ErrNotFound
	}
	stored := *file
	stored.ID = s.NextFile
	stored.UploadedAt = time.Now()
	s.NextFile++
	s.Files[stored.OrderID] = append(s.Files[stored.OrderID], stored)
	return &stored, nil
}

// ListFiles returns the order files in upload order.
func (s *OrderRepositoryStub) ListFiles(ctx context.Context, orderID int64) ([]model.OrderFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]model.OrderFile(nil), s.Files[orderID]...), nil
}

// GetFile returns one file of the order.
func (s *OrderRepositoryStub) GetFile(ctx context.Context, orderID, fileID int64) (*model.OrderFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, f := range s.Files[orderID] {
		if f.ID == fileID {
			out := f
			return &out, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// ChatRepositoryStub keeps messages in memory.
type ChatRepositoryStub struct {
	Messages []model.ChatMessage
	Names    map[int64]string
	Err      error
	mu       sync.Mutex
}

// Append stores a message and assigns its identifier.
func (s *ChatRepositoryStub) Append(ctx context.Context, msg *model.ChatMessage) (*model.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	stored := *msg
	stored.ID = int64(len(s.Messages) + 1)
	stored.CreatedAt = time.Now()
	s.Messages = append(s.Messages, stored)
	return &stored, nil
}

// ListByOrder returns the order conversation oldest first.
func (s *ChatRepositoryStub) ListByOrder(ctx context.Context, orderID int64) ([]model.ChatEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.ChatEntry
	for _, m := range s.Messages {
		if m.OrderID == orderID {
			out = append(out, model.ChatEntry{ChatMessage: m, SenderName: s.Names[m.UserID]})
		}
	}
	return out, nil
}

// Count returns the number of stored messages.
func (s *ChatRepositoryStub) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Messages)
}

var (
	_ repository.UserRepository    = (*UserRepositoryStub)(nil)
	_ repository.CatalogRepository = (*CatalogRepositoryStub)(nil)
	_ repository.OrderRepository   = (*OrderRepositoryStub)(nil)
	_ repository.ChatRepository    = (*ChatRepositoryStub)(nil)
)
