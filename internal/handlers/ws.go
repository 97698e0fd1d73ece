package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rajeshautomates-creator/cricket-hub-live/internal/client"
	"github.com/rajeshautomates-creator/cricket-hub-live/internal/log"
	"github.com/rajeshautomates-creator/cricket-hub-live/pkg/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Restrict in production
		return true
	},
}

// HandleWebSocket upgrades HTTP connections to WebSocket. A ?match_id=
// query parameter pre-subscribes the viewer to that match and delivers
// one fresh snapshot on connect; reconnecting viewers receive only
// future updates beyond that.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade error", zap.Error(err))
		return
	}

	clientID := uuid.New().String()
	c := client.NewClient(clientID, conn, h.hub)

	if matchID := r.URL.Query().Get("match_id"); matchID != "" {
		c.SetFilter(models.SubscriptionFilter{Matches: []string{matchID}})

		if score, _, err := h.scores.LoadOrCreate(r.Context(), matchID); err == nil {
			c.TrySend(models.ServerMessage{
				Type:      models.MessageTypeScoreUpdate,
				Topic:     models.ScoreTopic(matchID),
				Payload:   score,
				Timestamp: time.Now(),
			})
		}
	}

	h.hub.Register(c)

	// Pumps run on the handler context, not the request context, so the
	// connection outlives the upgrade request.
	go c.WritePump(h.ctx)
	go c.ReadPump(h.ctx)

	log.Info("websocket connection established", zap.String("client_id", clientID))
}
