package syncclient_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/stockroom/pkg/syncclient"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func wsURLOf(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestSubscriberReceivesMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`{"n":1}`)) //nolint:errcheck
		conn.WriteMessage(websocket.TextMessage, []byte(`{"n":2}`)) //nolint:errcheck
		// Hold the connection open until the subscriber closes it so the
		// test never observes a redial.
		conn.ReadMessage() //nolint:errcheck
	}))
	defer srv.Close()

	var mu sync.Mutex
	var got []string
	sub := syncclient.NewSubscriber(syncclient.SubscriberOptions{
		URL: wsURLOf(srv),
		OnMessage: func(data []byte) {
			mu.Lock()
			got = append(got, string(data))
			mu.Unlock()
		},
	})
	sub.Start()
	defer sub.Close()

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, "expected two messages")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{`{"n":1}`, `{"n":2}`}, got, "receipt order preserved")
}

func TestSubscriberReconnects(t *testing.T) {
	var dials atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := dials.Add(1)
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		if n == 1 {
			// Drop the first connection immediately to force a reconnect.
			conn.Close()
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`after-reconnect`)) //nolint:errcheck
		conn.ReadMessage()                                                  //nolint:errcheck
	}))
	defer srv.Close()

	var mu sync.Mutex
	var got []string
	var states []syncclient.State
	sub := syncclient.NewSubscriber(syncclient.SubscriberOptions{
		URL:            wsURLOf(srv),
		InitialBackoff: 10 * time.Millisecond,
		OnMessage: func(data []byte) {
			mu.Lock()
			got = append(got, string(data))
			mu.Unlock()
		},
		OnState: func(s syncclient.State) {
			mu.Lock()
			states = append(states, s)
			mu.Unlock()
		},
	})
	sub.Start()
	defer sub.Close()

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, "expected the post-reconnect message")

	assert.GreaterOrEqual(t, dials.Load(), int64(2), "handler registered once survives the reconnect")

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, states, syncclient.Reconnecting)
	assert.Equal(t, []string{"after-reconnect"}, got)
}

func TestSubscriberBacksOffWhileServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no", http.StatusServiceUnavailable)
	}))
	srv.Close() // down from the start

	sub := syncclient.NewSubscriber(syncclient.SubscriberOptions{
		URL:            wsURLOf(srv),
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     50 * time.Millisecond,
	})
	sub.Start()

	waitFor(t, func() bool {
		s := sub.State()
		return s == syncclient.Connecting || s == syncclient.Reconnecting
	}, "subscriber should keep trying")

	done := make(chan struct{})
	go func() {
		sub.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return promptly")
	}
	require.Equal(t, syncclient.Closed, sub.State())
}
