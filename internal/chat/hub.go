package chat

import (
	"log/slog"
	"sync"

	"github.com/polkiloo/prowriters/internal/domain/model"
	"github.com/polkiloo/prowriters/internal/metrics"
)

const sessionBuffer = 32

// Session is one live connection to an order room.
type Session struct {
	participant model.Participant
	send        chan []byte

	mu     sync.Mutex
	closed bool
}

// NewSession creates a session for an authorized participant.
func NewSession(p model.Participant) *Session {
	return &Session{participant: p, send: make(chan []byte, sessionBuffer)}
}

// Participant returns who is on the other end of the session.
func (s *Session) Participant() model.Participant {
	return s.participant
}

// Frames yields outbound frames until the session is closed.
func (s *Session) Frames() <-chan []byte {
	return s.send
}

// deliver queues frame without blocking. It reports false when the buffer is
// full or the session is gone.
func (s *Session) deliver(frame []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.send <- frame:
		return true
	default:
		return false
	}
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.send)
	}
}

// Hub tracks live sessions per order. One mutex serializes joins, leaves and
// broadcast iteration, so a session is never removed in the middle of a
// broadcast.
type Hub struct {
	mu      sync.Mutex
	rooms   map[int64]map[*Session]struct{}
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewHub constructs an empty registry.
func NewHub(m *metrics.Metrics, logger *slog.Logger) *Hub {
	return &Hub{
		rooms:   make(map[int64]map[*Session]struct{}),
		metrics: m,
		logger:  logger,
	}
}

// Join registers s in the room of its order.
func (h *Hub) Join(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[s.participant.OrderID]
	if !ok {
		room = make(map[*Session]struct{})
		h.rooms[s.participant.OrderID] = room
	}
	if _, ok := room[s]; ok {
		return
	}
	room[s] = struct{}{}
	h.metrics.ChatSessions.Inc()
	h.logger.Debug("chat session joined",
		slog.Int64("order_id", s.participant.OrderID),
		slog.Int64("user_id", s.participant.UserID),
		slog.Bool("support", s.participant.IsSupport),
	)
}

// Leave removes s from its room and closes it. Calling Leave twice is safe.
func (h *Hub) Leave(s *Session) {
	h.mu.Lock()
	h.remove(s)
	h.mu.Unlock()
	s.close()
}

// Broadcast queues frame for every session in the room except the given one
// and returns how many sessions accepted it. Sessions that cannot keep up are
// evicted.
func (h *Hub) Broadcast(orderID int64, except *Session, frame []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for s := range h.rooms[orderID] {
		if s == except {
			continue
		}
		if s.deliver(frame) {
			delivered++
			continue
		}
		h.logger.Warn("chat session evicted: send buffer full",
			slog.Int64("order_id", orderID),
			slog.Int64("user_id", s.participant.UserID),
		)
		h.remove(s)
		s.close()
	}
	return delivered
}

// RoomSize returns the number of live sessions for the order.
func (h *Hub) RoomSize(orderID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[orderID])
}

// remove expects h.mu to be held.
func (h *Hub) remove(s *Session) {
	room, ok := h.rooms[s.participant.OrderID]
	if !ok {
		return
	}
	if _, ok := room[s]; !ok {
		return
	}
	delete(room, s)
	if len(room) == 0 {
		delete(h.rooms, s.participant.OrderID)
	}
	h.metrics.ChatSessions.Dec()
}
