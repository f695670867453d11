package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/medportal-notify/internal/domain"
)

// ErrNotConnected is returned by Push when the user has no live channel.
var ErrNotConnected = errors.New("user not connected")

// Event is one frame on a live channel.
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data,omitempty"`
}

// Conn is an attached live channel.
type Conn interface {
	ID() string
	Send(ev Event) error
	Close() error
}

// Hub owns attached connections and routes pushes through the Registry.
type Hub struct {
	registry *Registry

	mu    sync.RWMutex
	conns map[string]Conn
}

func NewHub(registry *Registry) *Hub {
	return &Hub{registry: registry, conns: make(map[string]Conn)}
}

// Registry exposes the hub's user→channel mapping for read-only callers.
func (h *Hub) Registry() *Registry { return h.registry }

// Attach starts tracking c. It is not addressable by user until Register.
func (h *Hub) Attach(c Conn) {
	h.mu.Lock()
	h.conns[c.ID()] = c
	h.mu.Unlock()
}

// Detach forgets the connection and drops its user mapping, if any.
func (h *Hub) Detach(channelID string) {
	h.mu.Lock()
	delete(h.conns, channelID)
	h.mu.Unlock()
	if userID, ok := h.registry.Unregister(channelID); ok {
		slog.Info("channel unregistered", "user_id", userID, "channel_id", channelID)
	}
}

// Register subscribes an attached channel to userID's topic.
func (h *Hub) Register(userID, channelID string) error {
	if userID == "" {
		return fmt.Errorf("empty user id: %w", domain.ErrBadRequest)
	}
	h.mu.RLock()
	_, attached := h.conns[channelID]
	h.mu.RUnlock()
	if !attached {
		return fmt.Errorf("channel %s not attached: %w", channelID, domain.ErrNotFound)
	}
	if stale := h.registry.Register(userID, channelID); stale != "" {
		slog.Info("channel replaced", "user_id", userID, "stale_channel_id", stale, "channel_id", channelID)
	}
	slog.Info("channel registered", "user_id", userID, "channel_id", channelID)
	return nil
}

// Push sends an event to the live channel of userID only.
func (h *Hub) Push(_ context.Context, userID, event string, payload interface{}) error {
	channelID, ok := h.registry.Resolve(userID)
	if !ok {
		return ErrNotConnected
	}
	h.mu.RLock()
	c, ok := h.conns[channelID]
	h.mu.RUnlock()
	if !ok {
		return ErrNotConnected
	}
	if err := c.Send(Event{Name: event, Data: payload}); err != nil {
		return fmt.Errorf("push to %s: %w", userID, err)
	}
	return nil
}

// PushAll sends an event to every attached channel, registered or not.
// Individual failures are logged; the returned error reports how many failed.
func (h *Hub) PushAll(_ context.Context, event string, payload interface{}) error {
	h.mu.RLock()
	targets := make([]Conn, 0, len(h.conns))
	for _, c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	failed := 0
	for _, c := range targets {
		if err := c.Send(Event{Name: event, Data: payload}); err != nil {
			slog.Warn("broadcast push failed", "channel_id", c.ID(), "err", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d channels: %w", failed, len(targets), domain.ErrDelivery)
	}
	return nil
}

// Close closes every attached connection.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[string]Conn)
	h.mu.Unlock()
	for id, c := range conns {
		_ = c.Close()
		h.registry.Unregister(id)
	}
}
