// Package ws implements the server side of the broadcast channel: one Hub
// per topic, fanning every published message out to all currently connected
// clients over gorilla/websocket.
//
//	var InventoryHub = ws.NewHub("inventory")
//	go InventoryHub.Run()
//
//	// from a route:
//	router.Get("/ws/inventory", "ws.inventory", func(w http.ResponseWriter, r *http.Request) {
//	    ws.Upgrade(w, r, InventoryHub)
//	})
//
//	// from anywhere after a committed mutation:
//	InventoryHub.PublishJSON(ev)
//
// Delivery is best-effort and at-most-once: a client that is disconnected
// (or too slow to drain its send buffer) misses the message. Nothing is
// persisted or replayed; reconnecting clients reconcile via a full load.
package ws

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shashiranjanraj/stockroom/pkg/logger"
	"github.com/shashiranjanraj/stockroom/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024 // subscribers only pong; inbound frames stay tiny
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins by default — restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SetCheckOrigin replaces the default (allow-all) origin checker.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}

// ─── Client ───────────────────────────────────────────────────────────────────

// Client is a single connected subscriber.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// readPump discards inbound frames (subscribers do not send application
// data) while keeping the pong deadline fresh and detecting disconnects.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws: unexpected close", "hub", c.hub.name, "error", err)
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ─── Hub ──────────────────────────────────────────────────────────────────────

// Hub owns the connection set for one topic and fans published messages out
// to every member. All state is confined to the Run goroutine.
type Hub struct {
	name       string
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	count      chan chan int
	done       chan struct{}
}

// NewHub creates a Hub for the named topic. Call hub.Run() in a goroutine
// at startup.
func NewHub(name string) *Hub {
	return &Hub{
		name:       name,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
		done:       make(chan struct{}),
	}
}

// Name returns the topic name this hub serves.
func (h *Hub) Name() string { return h.name }

// Run starts the hub event loop. Must be run in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			metrics.WSClients.WithLabelValues(h.name).Set(float64(len(h.clients)))
			logger.Info("ws: client connected", "hub", h.name, "total", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.WSClients.WithLabelValues(h.name).Set(float64(len(h.clients)))
				logger.Info("ws: client disconnected", "hub", h.name, "total", len(h.clients))
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Slow consumer: drop the connection rather than the
					// whole fan-out.
					close(client.send)
					delete(h.clients, client)
				}
			}
			metrics.WSMessages.WithLabelValues(h.name).Inc()

		case reply := <-h.count:
			reply <- len(h.clients)

		case <-h.done:
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			metrics.WSClients.WithLabelValues(h.name).Set(0)
			return
		}
	}
}

// Stop shuts the hub down and disconnects every client.
func (h *Hub) Stop() { close(h.done) }

// Publish queues raw bytes for delivery to all connected clients.
func (h *Hub) Publish(msg []byte) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// PublishJSON marshals v and publishes it.
func (h *Hub) PublishJSON(v any) error {
	msg, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("ws: marshal for hub %s: %w", h.name, err)
	}
	h.Publish(msg)
	return nil
}

// ClientCount reports how many clients are currently connected.
func (h *Hub) ClientCount() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// ─── Upgrade ─────────────────────────────────────────────────────────────────

// Upgrade upgrades an HTTP connection to a websocket and registers the
// resulting client with the given hub.
func Upgrade(w http.ResponseWriter, r *http.Request, hub *Hub) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("ws: upgrade failed", "hub", hub.name, "error", err)
		return
	}
	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256)}
	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}
	go client.writePump()
	go client.readPump()
}
