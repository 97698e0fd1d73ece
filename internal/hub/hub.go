package hub

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rajeshautomates-creator/cricket-hub-live/internal/client"
	"github.com/rajeshautomates-creator/cricket-hub-live/internal/log"
	"github.com/rajeshautomates-creator/cricket-hub-live/pkg/models"
)

// Hub maintains the set of active viewer connections and fans score
// snapshots out to them. A single loop consumes the broadcast channel,
// so every client observes one match's updates in publish order.
type Hub struct {
	// Registered clients
	clients   map[*client.Client]bool
	clientsMu sync.RWMutex

	// Inbound score snapshots from the stream consumer
	broadcast chan *models.MatchScore

	// Register requests from clients
	register chan *client.Client

	// Unregister requests from clients
	unregister chan *client.Client

	// Metrics
	totalConnections int64
	totalMessages    int64
	metricsMu        sync.Mutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client.Client]bool),
		broadcast:  make(chan *models.MatchScore, 1000),
		register:   make(chan *client.Client),
		unregister: make(chan *client.Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) {
	log.Info("hub started")

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case score := <-h.broadcast:
			h.broadcastScore(score)
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(c *client.Client) {
	h.register <- c
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *client.Client) {
	h.unregister <- c
}

// Broadcast queues a score snapshot for fan-out. Non-blocking: when the
// buffer is full the snapshot is dropped (at-most-once best effort; a
// viewer catches up on the next successful update).
func (h *Hub) Broadcast(score *models.MatchScore) {
	select {
	case h.broadcast <- score:
	default:
		log.Warn("broadcast buffer full, dropping snapshot",
			zap.String("match_id", score.MatchID))
	}
}

func (h *Hub) registerClient(c *client.Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.clients[c] = true
	h.incrementTotalConnections()

	log.Info("client connected",
		zap.String("client_id", c.ID),
		zap.Int("total", len(h.clients)))
}

func (h *Hub) unregisterClient(c *client.Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
		log.Info("client disconnected",
			zap.String("client_id", c.ID),
			zap.Int("total", len(h.clients)))
	}
}

// broadcastScore delivers a snapshot to every client subscribed to its
// match. Topic isolation: clients watching other matches see nothing.
func (h *Hub) broadcastScore(score *models.MatchScore) {
	h.clientsMu.RLock()
	clients := make([]*client.Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	message := models.ServerMessage{
		Type:      models.MessageTypeScoreUpdate,
		Topic:     models.ScoreTopic(score.MatchID),
		Payload:   score,
		Timestamp: time.Now(),
	}

	sent := 0
	dropped := 0

	for _, c := range clients {
		if !c.WatchesMatch(score.MatchID) {
			continue
		}

		// Try to send (non-blocking)
		if c.TrySend(message) {
			sent++
		} else {
			dropped++
			// Client buffer full - they're too slow, disconnect them
			log.Warn("client buffer full, disconnecting",
				zap.String("client_id", c.ID))
			go h.Unregister(c)
		}
	}

	if sent > 0 {
		h.incrementTotalMessages()
	}

	if dropped > 0 {
		log.Warn("dropped snapshots for slow clients", zap.Int("dropped", dropped))
	}
}

// GetMetrics returns hub metrics
func (h *Hub) GetMetrics() map[string]interface{} {
	h.clientsMu.RLock()
	activeClients := len(h.clients)
	h.clientsMu.RUnlock()

	h.metricsMu.Lock()
	totalConnections := h.totalConnections
	totalMessages := h.totalMessages
	h.metricsMu.Unlock()

	return map[string]interface{}{
		"active_clients":     activeClients,
		"total_connections":  totalConnections,
		"total_messages":     totalMessages,
		"broadcast_capacity": cap(h.broadcast),
		"broadcast_usage":    len(h.broadcast),
	}
}

// GetClientCount returns the number of active clients
func (h *Hub) GetClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	log.Info("shutting down hub", zap.Int("active_clients", len(h.clients)))

	for c := range h.clients {
		close(c.Send)
		delete(h.clients, c)
	}
}

func (h *Hub) incrementTotalConnections() {
	h.metricsMu.Lock()
	defer h.metricsMu.Unlock()
	h.totalConnections++
}

func (h *Hub) incrementTotalMessages() {
	h.metricsMu.Lock()
	defer h.metricsMu.Unlock()
	h.totalMessages++
}
