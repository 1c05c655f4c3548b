package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/polkiloo/prowriters/internal/config"
	domainErrors "github.com/polkiloo/prowriters/internal/domain/errors"
	"github.com/polkiloo/prowriters/internal/domain/model"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
	maxFrameSize = 16 << 10
)

// MessageStore persists chat messages.
type MessageStore interface {
	Post(ctx context.Context, p *model.Participant, body string) (*model.ChatMessage, error)
}

// Relay bridges websocket connections and order rooms.
type Relay struct {
	hub      *Hub
	store    MessageStore
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewRelay constructs a relay. Cross-origin upgrades are limited to the
// configured CORS origins when any are set.
func NewRelay(hub *Hub, store MessageStore, cfg *config.Config, logger *slog.Logger) *Relay {
	return &Relay{
		hub:   hub,
		store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.CORSOrigins),
		},
		logger: logger,
	}
}

// Hub returns the room registry used by the relay.
func (r *Relay) Hub() *Hub {
	return r.hub
}

// Serve upgrades the request and relays frames for p until the connection
// closes. The caller must have authorized p for the order.
func (r *Relay) Serve(w http.ResponseWriter, req *http.Request, p *model.Participant) error {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return err
	}

	session := NewSession(*p)
	r.hub.Join(session)
	defer r.hub.Leave(session)

	go r.writePump(conn, session)
	r.readPump(req.Context(), conn, session)
	return nil
}

// Announce delivers a message posted outside a websocket connection to every
// session in the order room.
func (r *Relay) Announce(p *model.Participant, msg *model.ChatMessage) int {
	return r.hub.Broadcast(msg.OrderID, nil, MessageFrame(p, msg))
}

func (r *Relay) readPump(ctx context.Context, conn *websocket.Conn, s *Session) {
	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	p := s.Participant()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				r.logger.Warn("chat connection closed", slog.Int64("order_id", p.OrderID), slog.String("error", err.Error()))
			}
			return
		}

		var in inbound
		if err := json.Unmarshal(data, &in); err != nil {
			s.deliver(errorFrameFor("malformed frame"))
			continue
		}

		switch in.Type {
		case FrameMessage:
			r.relayMessage(ctx, s, in.Text)
		case FrameTyping:
			r.hub.Broadcast(p.OrderID, s, typingFrameFor(p, in.IsTyping))
		default:
			s.deliver(errorFrameFor("unknown frame type"))
		}
	}
}

// relayMessage persists first; a message that could not be stored is never
// shown to other participants.
func (r *Relay) relayMessage(ctx context.Context, s *Session, text string) {
	p := s.Participant()
	msg, err := r.store.Post(ctx, &p, text)
	if err != nil {
		if errors.Is(err, domainErrors.ErrValidation) {
			s.deliver(errorFrameFor(err.Error()))
			return
		}
		s.deliver(errorFrameFor("message could not be saved"))
		return
	}
	r.hub.Broadcast(p.OrderID, s, MessageFrame(&p, msg))
}

func (r *Relay) writePump(conn *websocket.Conn, s *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.Frames():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func originChecker(origins []string) func(*http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	return func(req *http.Request) bool {
		origin := req.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if len(allowed) == 0 {
			u, err := url.Parse(origin)
			return err == nil && strings.EqualFold(u.Host, req.Host)
		}
		_, ok := allowed[strings.TrimRight(origin, "/")]
		return ok
	}
}
