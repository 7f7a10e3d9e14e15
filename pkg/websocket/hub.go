package websocket

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Hub tracks every open client for connection accounting and shutdown.
type Hub struct {
	Clients map[string]*Client
	mu      sync.Mutex
	total   atomic.Int64
	log     zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		Clients: make(map[string]*Client),
		log:     log.With().Str("component", "hub").Logger(),
	}
}

func (h *Hub) AddClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.Clients[c.ID] = c
	h.total.Add(1)
	h.log.Debug().Str("client", c.ID).Int("connected", len(h.Clients)).Msg("client connected")
}

func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.Clients, c.ID)
	h.log.Debug().Str("client", c.ID).Int("connected", len(h.Clients)).Msg("client disconnected")
}

// Count is the number of open connections.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Clients)
}

// Total is the number of connections accepted since start.
func (h *Hub) Total() int64 {
	return h.total.Load()
}

// Broadcast marshals v once and queues it on every client. It returns the
// number of clients that accepted the message.
func (h *Hub) Broadcast(v any) int {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to marshal broadcast")
		return 0
	}

	h.mu.Lock()
	clients := make([]*Client, 0, len(h.Clients))
	for _, c := range h.Clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	sent := 0
	for _, c := range clients {
		if c.SendRaw(data) {
			sent++
		}
	}
	return sent
}

// CloseAll asks every client to flush and close.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.Clients))
	for _, c := range h.Clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
	h.log.Info().Int("clients", len(clients)).Msg("closed all connections")
}
