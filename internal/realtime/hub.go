package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub is the registry of connected viewers. One Hub is built at startup and
// shared by the websocket handler and every service that commits calendar
// mutations.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *zap.Logger
}

func NewHub(logger ...*zap.Logger) *Hub {
	l := zap.L().Named("realtime.hub")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("realtime.hub")
	}
	return &Hub{clients: make(map[*Client]struct{}), logger: l}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug("viewer connected",
		zap.String("user_id", c.principal.UserID.String()),
		zap.Int("connections", total),
	)
}

// Unregister removes the client and stops its write loop. Safe to call more
// than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	total := len(h.clients)
	h.mu.Unlock()

	c.stop()
	if ok {
		h.logger.Debug("viewer disconnected",
			zap.String("user_id", c.principal.UserID.String()),
			zap.Int("connections", total),
		)
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg for every viewer of the company, or for every viewer
// when companyID is uuid.Nil. Viewers whose queue is full are dropped. It
// returns the number of viewers the message was queued for.
func (h *Hub) Broadcast(companyID uuid.UUID, msg Message) int {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encode broadcast failed", zap.Error(err))
		return 0
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		if companyID == uuid.Nil || c.principal.CompanyID == companyID {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if c.enqueue(data) {
			delivered++
			continue
		}
		h.logger.Warn("dropping slow viewer", zap.String("user_id", c.principal.UserID.String()))
		h.Unregister(c)
	}
	return delivered
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.stop()
	}
}
