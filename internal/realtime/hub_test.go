package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHub_BroadcastReachesClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, "admin")
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast("booking.status_changed", map[string]string{"to": "confirmed"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "booking.status_changed", msg.Type)
	assert.Equal(t, "confirmed", msg.Data["to"])
}

func TestHub_BroadcastWithoutClientsDoesNotBlock(t *testing.T) {
	hub := NewHub(zap.NewNop())
	// Run is not started, so the queue fills and further messages are dropped.
	for i := 0; i < broadcastBuffer+10; i++ {
		hub.Broadcast("noop", nil)
	}
	assert.Equal(t, 0, hub.ClientCount())
}
