package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nerrad567/homecontrol-core/internal/infrastructure/logging"
)

// Hub tracks connected WebSocket clients and the channels each one listens
// on. Subscribers are indexed by channel, so a broadcast only visits the
// clients that asked for it.
type Hub struct {
	logger *logging.Logger

	mu       sync.RWMutex
	clients  map[*WSClient]struct{}
	channels map[string]map[*WSClient]struct{}
}

// NewHub creates an empty hub.
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		logger:   logger,
		clients:  make(map[*WSClient]struct{}),
		channels: make(map[string]map[*WSClient]struct{}),
	}
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Register adds a client with no subscriptions.
func (h *Hub) Register(c *WSClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", n)
}

// Unregister drops a client and its subscriptions. The send channel is
// closed only by the call that actually removed the client, so concurrent
// Unregister and closeAll never double-close it.
func (h *Hub) Unregister(c *WSClient) {
	h.mu.Lock()
	_, present := h.clients[c]
	if present {
		h.detachLocked(c)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if present {
		close(c.send)
	}
	h.logger.Debug("websocket client disconnected", "clients", n)
}

// detachLocked removes c from every index. h.mu must be held for writing.
func (h *Hub) detachLocked(c *WSClient) {
	delete(h.clients, c)
	for ch, subs := range h.channels {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.channels, ch)
		}
	}
}

// subscribe adds c to each channel. Unknown clients are ignored.
func (h *Hub) subscribe(c *WSClient, channels []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	for _, ch := range channels {
		subs := h.channels[ch]
		if subs == nil {
			subs = make(map[*WSClient]struct{})
			h.channels[ch] = subs
		}
		subs[c] = struct{}{}
	}
}

// unsubscribe removes c from each channel.
func (h *Hub) unsubscribe(c *WSClient, channels []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range channels {
		subs := h.channels[ch]
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.channels, ch)
		}
	}
}

// Subscribed reports whether c listens on channel.
func (h *Hub) Subscribed(c *WSClient, channel string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.channels[channel][c]
	return ok
}

// Broadcast sends an event to every subscriber of channel. Slow clients
// whose buffers are full miss the event.
func (h *Hub) Broadcast(channel string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      WSTypeEvent,
		EventType: channel,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		h.logger.Error("failed to marshal broadcast message", "channel", channel, "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*WSClient, 0, len(h.channels[channel]))
	for c := range h.channels[channel] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.trySend(data)
	}
	if len(targets) > 0 {
		h.logger.Debug("broadcast sent", "channel", channel, "recipients", len(targets))
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// closeAll disconnects every client so their write loops exit.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		h.detachLocked(c)
		close(c.send)
		if c.conn != nil {
			c.conn.Close()
		}
	}
}
