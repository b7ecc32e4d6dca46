package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"economy_server/internal/dispatch"
	"economy_server/internal/domain"
	"economy_server/internal/logger"
	"economy_server/internal/service"
)

// Lifecycle is told when a player's first connection opens and their last
// one closes.
type Lifecycle interface {
	Start(p domain.Player) service.SessionStart
	End(p domain.Player)
}

// Runner executes fn on the authoritative loop and waits for it.
type Runner interface {
	Do(ctx context.Context, fn func() error) error
}

var (
	_ service.Presence = (*Hub)(nil)
	_ service.Notifier = (*Hub)(nil)
)

// Hub tracks live connections per player. It is the presence source and the
// push channel for the economy services.
type Hub struct {
	mu       sync.RWMutex
	clients  map[domain.PlayerID]map[*Client]struct{}
	sessions Lifecycle
	runner   Runner
}

func NewHub(sessions Lifecycle) *Hub {
	return &Hub{
		clients:  make(map[domain.PlayerID]map[*Client]struct{}),
		sessions: sessions,
	}
}

// SetLifecycle binds the session hooks after construction, since the
// services that implement them need the hub as their notifier.
func (h *Hub) SetLifecycle(l Lifecycle) {
	h.mu.Lock()
	h.sessions = l
	h.mu.Unlock()
}

// SetRunner makes session start and end run through r instead of on the
// connection goroutine.
func (h *Hub) SetRunner(r Runner) {
	h.mu.Lock()
	h.runner = r
	h.mu.Unlock()
}

// run executes fn through the runner. Once the loop has stopped nothing else
// writes, so fn runs directly.
func (h *Hub) run(fn func()) {
	h.mu.RLock()
	r := h.runner
	h.mu.RUnlock()
	if r == nil {
		fn()
		return
	}
	err := r.Do(context.Background(), func() error { fn(); return nil })
	if errors.Is(err, dispatch.ErrStopped) {
		fn()
	} else if err != nil {
		logger.Warn("ws session command failed", "error", err)
	}
}

// Register adds c and starts the session if it is the player's first
// connection. The session summary is returned for the ready message.
func (h *Hub) Register(c *Client) *service.SessionStart {
	h.mu.Lock()
	set := h.clients[c.Player.ID]
	first := len(set) == 0
	if set == nil {
		set = make(map[*Client]struct{})
		h.clients[c.Player.ID] = set
	}
	set[c] = struct{}{}
	sessions := h.sessions
	h.mu.Unlock()

	logger.Debug("ws client registered", "player_id", c.Player.ID, "first", first)
	if !first || sessions == nil {
		return nil
	}
	var start service.SessionStart
	h.run(func() { start = sessions.Start(c.Player) })
	return &start
}

// Unregister removes c and ends the session if it was the last connection.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.Player.ID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := set[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(set, c)
	last := len(set) == 0
	if last {
		delete(h.clients, c.Player.ID)
	}
	sessions := h.sessions
	h.mu.Unlock()

	c.close()
	logger.Debug("ws client unregistered", "player_id", c.Player.ID, "last", last)
	if last && sessions != nil {
		h.run(func() { sessions.End(c.Player) })
	}
}

func (h *Hub) IsOnline(id domain.PlayerID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[id]) > 0
}

// Connections counts the player's open connections.
func (h *Hub) Connections(id domain.PlayerID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[id])
}

// Online counts connected players.
func (h *Hub) Online() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Notify queues ev on every connection of the player. Slow connections drop
// the event instead of blocking the caller.
func (h *Hub) Notify(id domain.PlayerID, ev domain.Event) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[id]))
	for c := range h.clients[id] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	msg, err := json.Marshal(ev)
	if err != nil {
		logger.Error("ws marshal event", "type", ev.Type, "error", err)
		return
	}
	for _, c := range targets {
		if !c.enqueue(msg) {
			logger.Warn("ws send buffer full, dropping event", "player_id", id, "type", ev.Type)
		}
	}
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	var all []*Client
	for _, set := range h.clients {
		for c := range set {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range all {
		_ = c.Conn.Close()
	}
}
