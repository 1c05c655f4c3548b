package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/polkiloo/prowriters/internal/config"
	domainErrors "github.com/polkiloo/prowriters/internal/domain/errors"
	"github.com/polkiloo/prowriters/internal/domain/model"
	"github.com/polkiloo/prowriters/internal/domain/repository"
	"github.com/polkiloo/prowriters/internal/metrics"
	pkgAuth "github.com/polkiloo/prowriters/internal/pkg/auth"
)

const maxChatMessageLen = 2000

// ChatUseCase guards and persists order conversations.
type ChatUseCase struct {
	orders       repository.OrderRepository
	chat         repository.ChatRepository
	users        repository.UserRepository
	supportName  string
	storeTimeout time.Duration
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// NewChatUseCase constructs ChatUseCase.
func NewChatUseCase(orders repository.OrderRepository, chat repository.ChatRepository, users repository.UserRepository, cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) *ChatUseCase {
	return &ChatUseCase{
		orders:       orders,
		chat:         chat,
		users:        users,
		supportName:  cfg.SupportName,
		storeTimeout: cfg.StoreTimeout,
		metrics:      m,
		logger:       logger,
	}
}

// Authorize resolves the caller into a chat participant of the order. Only
// the order owner and staff qualify; everyone else gets ErrNotFound.
func (u *ChatUseCase) Authorize(ctx context.Context, caller pkgAuth.Principal, orderID int64) (*model.Participant, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	owner := order.OwnedBy(caller.UserID)
	if !owner && !caller.IsStaff() {
		return nil, domainErrors.ErrNotFound
	}

	p := &model.Participant{UserID: caller.UserID, OrderID: order.ID}
	if !owner {
		p.IsSupport = true
		p.DisplayName = u.supportName
		return p, nil
	}

	usr, err := u.users.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	p.DisplayName = usr.FullName()
	return p, nil
}

// History returns the conversation of the order oldest first.
func (u *ChatUseCase) History(ctx context.Context, caller pkgAuth.Principal, orderID int64) ([]model.ChatEntry, error) {
	if _, err := u.Authorize(ctx, caller, orderID); err != nil {
		return nil, err
	}
	entries, err := u.chat.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].IsSupport {
			entries[i].SenderName = u.supportName
		}
	}
	return entries, nil
}

// Post persists one message from an authorized participant.
func (u *ChatUseCase) Post(ctx context.Context, p *model.Participant, body string) (*model.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domainErrors.Validation("message is empty")
	}
	if utf8.RuneCountInString(body) > maxChatMessageLen {
		return nil, domainErrors.Validation("message exceeds %d characters", maxChatMessageLen)
	}

	if u.storeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.storeTimeout)
		defer cancel()
	}

	msg, err := u.chat.Append(ctx, &model.ChatMessage{
		OrderID:   p.OrderID,
		UserID:    p.UserID,
		Body:      body,
		IsSupport: p.IsSupport,
	})
	if err != nil {
		u.logger.Error("persist chat message failed", slog.Int64("order_id", p.OrderID), slog.String("error", err.Error()))
		return nil, err
	}
	u.metrics.ChatMessages.Inc()
	return msg, nil
}
