package client_test

import (
	"testing"

	"github.com/rajeshautomates-creator/cricket-hub-live/internal/client"
	"github.com/rajeshautomates-creator/cricket-hub-live/pkg/models"
)

// mockHub implements the Hub interface for testing
type mockHub struct {
	unregistered []*client.Client
}

func (m *mockHub) Unregister(c *client.Client) {
	m.unregistered = append(m.unregistered, c)
}

func TestClient_WatchesMatch(t *testing.T) {
	tests := []struct {
		name     string
		matches  []string
		matchID  string
		expected bool
	}{
		{
			name:     "empty filter matches everything",
			matches:  nil,
			matchID:  "m1",
			expected: true,
		},
		{
			name:     "subscribed match matches",
			matches:  []string{"m1", "m2"},
			matchID:  "m1",
			expected: true,
		},
		{
			name:     "unsubscribed match does not match",
			matches:  []string{"m2"},
			matchID:  "m1",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := client.NewClient("test", nil, &mockHub{})
			c.SetFilter(models.SubscriptionFilter{Matches: tt.matches})

			if got := c.WatchesMatch(tt.matchID); got != tt.expected {
				t.Errorf("WatchesMatch(%s) = %v, want %v", tt.matchID, got, tt.expected)
			}
		})
	}
}

func TestClient_TrySendBufferFull(t *testing.T) {
	c := client.NewClient("test", nil, &mockHub{})

	msg := models.ServerMessage{Type: models.MessageTypeScoreUpdate}
	sent := 0
	for i := 0; i < 10000; i++ {
		if !c.TrySend(msg) {
			break
		}
		sent++
	}

	if sent == 0 {
		t.Fatal("no messages accepted")
	}
	if sent >= 10000 {
		t.Fatal("buffer never filled")
	}
	if c.TrySend(msg) {
		t.Error("TrySend succeeded on a full buffer")
	}
}

func TestClient_FilterRoundTrip(t *testing.T) {
	c := client.NewClient("test", nil, &mockHub{})

	filter := models.SubscriptionFilter{Matches: []string{"m1"}}
	c.SetFilter(filter)

	got := c.GetFilter()
	if len(got.Matches) != 1 || got.Matches[0] != "m1" {
		t.Errorf("filter = %+v, want %+v", got, filter)
	}
}
