package models

import (
	"fmt"
	"time"
)

// Message types for WebSocket communication
const (
	MessageTypeScoreUpdate = "score_update"
	MessageTypeSubscribe   = "subscribe"
	MessageTypeUnsubscribe = "unsubscribe"
	MessageTypeHeartbeat   = "heartbeat"
	MessageTypeError       = "error"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      string      `json:"type"`
	Topic     string      `json:"topic,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ScoreTopic is the per-match topic name carried on score updates.
func ScoreTopic(matchID string) string {
	return fmt.Sprintf("match:%s:score", matchID)
}

// SubscriptionFilter represents a viewer's match subscriptions.
// An empty filter receives updates for every match.
type SubscriptionFilter struct {
	Matches []string `json:"matches,omitempty"`
}

// ErrorMessage represents an error message sent to a client
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
