package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/talgya/hexturn/internal/engine"
)

const (
	sessionBuffer = 16
	writeWait     = 10 * time.Second
	pingPeriod    = 30 * time.Second
)

// streamMessage is one frame on the snapshot stream. The first frame of a
// session is a full "snapshot"; later frames are "notification".
type streamMessage struct {
	Type         string               `json:"type"`
	Snapshot     *engine.Snapshot     `json:"snapshot,omitempty"`
	Notification *engine.Notification `json:"notification,omitempty"`
}

type session struct {
	id   uuid.UUID
	send chan []byte
}

// Hub fans simulation notifications out to websocket sessions. Sessions
// that cannot keep up are disconnected.
type Hub struct {
	sim      *engine.Simulation
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

// NewHub creates a hub for sim.
func NewHub(sim *engine.Simulation) *Hub {
	return &Hub{
		sim: sim,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sessions: make(map[uuid.UUID]*session),
	}
}

// Run forwards notifications until ctx is done or the simulation's
// notification channel is closed.
func (h *Hub) Run(ctx context.Context) {
	ch := h.sim.Notifications()
	for {
		select {
		case n, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(streamMessage{Type: "notification", Notification: &n})
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// SessionCount returns the number of connected sessions.
func (h *Hub) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func (h *Hub) broadcast(msg streamMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("encoding stream message", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.sessions {
		select {
		case s.send <- data:
		default:
			slog.Warn("stream session too slow, disconnecting", "session", id)
			close(s.send)
			delete(h.sessions, id)
		}
	}
	slog.Debug("notification broadcast",
		"kind", msg.Notification.Kind,
		"size", humanize.Bytes(uint64(len(data))),
		"sessions", len(h.sessions),
	)
}

func (h *Hub) subscribe() *session {
	s := &session{id: uuid.New(), send: make(chan []byte, sessionBuffer)}
	h.mu.Lock()
	h.sessions[s.id] = s
	h.mu.Unlock()
	return s
}

func (h *Hub) unsubscribe(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s.id]; ok {
		close(s.send)
		delete(h.sessions, s.id)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.sessions {
		close(s.send)
		delete(h.sessions, id)
	}
}

// ServeHTTP upgrades the request and streams the current snapshot followed
// by every notification.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	s := h.subscribe()
	slog.Info("stream client connected", "session", s.id, "remote", r.RemoteAddr)

	initial, err := json.Marshal(streamMessage{Type: "snapshot", Snapshot: h.sim.Snapshot()})
	if err == nil {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		err = conn.WriteMessage(websocket.TextMessage, initial)
	}
	if err != nil {
		h.unsubscribe(s)
		conn.Close()
		return
	}

	go h.readLoop(conn, s)
	h.writeLoop(conn, s)
}

// readLoop discards client frames and unsubscribes when the peer goes away.
func (h *Hub) readLoop(conn *websocket.Conn, s *session) {
	defer h.unsubscribe(s)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(conn *websocket.Conn, s *session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
		slog.Info("stream client disconnected", "session", s.id)
	}()

	for {
		select {
		case data, ok := <-s.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.unsubscribe(s)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.unsubscribe(s)
				return
			}
		}
	}
}
