package ws_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/stockroom/pkg/ws"
)

func newHubServer(t *testing.T) (*ws.Hub, string) {
	t.Helper()

	hub := ws.NewHub("test")
	go hub.Run()
	t.Cleanup(hub.Stop)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws.Upgrade(w, r, hub)
	}))
	t.Cleanup(srv.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *ws.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d clients, got %d", want, hub.ClientCount())
}

func TestBroadcastFanOut(t *testing.T) {
	hub, url := newHubServer(t)

	a := dial(t, url)
	b := dial(t, url)
	waitForClients(t, hub, 2)

	hub.Publish([]byte(`{"action":"added"}`))

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.JSONEq(t, `{"action":"added"}`, string(msg))
	}
}

func TestPublishJSON(t *testing.T) {
	hub, url := newHubServer(t)

	conn := dial(t, url)
	waitForClients(t, hub, 1)

	require.NoError(t, hub.PublishJSON(map[string]any{"message": "hello"}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, "hello", got.Message)
}

func TestPublishJSONUnmarshalable(t *testing.T) {
	hub, _ := newHubServer(t)
	assert.Error(t, hub.PublishJSON(make(chan int)))
}

func TestClientDisconnect(t *testing.T) {
	hub, url := newHubServer(t)

	conn := dial(t, url)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestDisconnectedClientMissesMessages(t *testing.T) {
	hub, url := newHubServer(t)

	gone := dial(t, url)
	stays := dial(t, url)
	waitForClients(t, hub, 2)

	gone.Close()
	waitForClients(t, hub, 1)

	hub.Publish([]byte(`{"n":1}`))

	stays.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := stays.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(msg))
}

func TestStopDisconnectsClients(t *testing.T) {
	hub := ws.NewHub("stop-test")
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws.Upgrade(w, r, hub)
	}))
	defer srv.Close()

	conn := dial(t, "ws"+strings.TrimPrefix(srv.URL, "http"))
	waitForClients(t, hub, 1)

	hub.Stop()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "server should close the connection on Stop")
	assert.Equal(t, 0, hub.ClientCount())
}
