package syncclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// Option customizes a Client.
type Option func(*Client)

// WithNotificationHandler registers a callback for deduplicated
// notification text.
func WithNotificationHandler(fn func(msg string)) Option {
	return func(c *Client) { c.onNotification = fn }
}

// WithStateHandler registers a callback for change-feed connection state
// transitions.
func WithStateHandler(fn func(s State)) Option {
	return func(c *Client) { c.onState = fn }
}

// WithDedupWindow overrides the notification dedup window.
func WithDedupWindow(window time.Duration) Option {
	return func(c *Client) { c.dedup = NewDeduper(window) }
}

// WithHTTPClient overrides the HTTP client used for full loads.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.loader.HTTPClient = hc }
}

// Client mirrors the catalog: a full load at Start, incremental patches
// from /ws/inventory, advisory text from /ws/notifications, and a fresh
// full load after every reconnect to repair whatever was missed offline.
type Client struct {
	baseURL string
	loader  *Loader
	col     *Collection
	dedup   *Deduper

	changes *Subscriber
	notes   *Subscriber

	onNotification func(string)
	onState        func(State)

	connects atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		col:     NewCollection(),
		dedup:   NewDeduper(defaultDedupWindow),
	}
	c.loader = &Loader{BaseURL: c.baseURL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start performs the authoritative initial load, then begins following both
// topics. It only fails when the initial load fails; websocket connectivity
// is self-healing from that point on.
func (c *Client) Start(ctx context.Context) error {
	products, err := c.loader.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("syncclient: initial load: %w", err)
	}
	c.col.Replace(products)

	c.ctx, c.cancel = context.WithCancel(ctx)

	c.changes = NewSubscriber(SubscriberOptions{
		URL:       wsURL(c.baseURL, "/ws/inventory"),
		OnMessage: c.applyChange,
		OnState:   c.stateChanged,
	})
	c.notes = NewSubscriber(SubscriberOptions{
		URL:       wsURL(c.baseURL, "/ws/notifications"),
		OnMessage: c.notify,
	})

	c.changes.Start()
	c.notes.Start()
	return nil
}

// Close tears down both subscriptions.
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
	if c.changes != nil {
		c.changes.Close()
	}
	if c.notes != nil {
		c.notes.Close()
	}
}

// Products returns the current local view in insertion order.
func (c *Client) Products() []Product {
	return c.col.Items()
}

// Get returns one product from the local view.
func (c *Client) Get(id uint) (Product, bool) {
	return c.col.Get(id)
}

// State returns the change-feed connection state.
func (c *Client) State() State {
	if c.changes == nil {
		return Disconnected
	}
	return c.changes.State()
}

func (c *Client) applyChange(data []byte) {
	var e ChangeEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return
	}
	c.col.Apply(e)
}

func (c *Client) notify(data []byte) {
	var n struct {
		Message string `json:"message"`
		Action  string `json:"action"`
		ID      uint   `json:"id"`
	}
	if err := json.Unmarshal(data, &n); err != nil || n.Message == "" {
		return
	}
	if !c.dedup.Accept(NotificationKey(n.Action, n.ID, n.Message)) {
		return
	}
	if c.onNotification != nil {
		c.onNotification(n.Message)
	}
}

func (c *Client) stateChanged(s State) {
	if s == Connected {
		// Every reconnect repairs missed events with a full load. The
		// first connect skips it; Start already loaded.
		if c.connects.Add(1) > 1 {
			go c.reload()
		}
	}
	if c.onState != nil {
		c.onState(s)
	}
}

func (c *Client) reload() {
	ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
	defer cancel()

	products, err := c.loader.ListAll(ctx)
	if err != nil {
		return
	}
	c.col.Replace(products)
}

func wsURL(base, path string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://") + path
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://") + path
	default:
		return base + path
	}
}
