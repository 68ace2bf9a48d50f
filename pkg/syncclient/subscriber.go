package syncclient

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// State is the connection lifecycle of a Subscriber.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
	Reconnecting
	Closed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 30 * time.Second
)

// SubscriberOptions configures a Subscriber. URL is required; everything
// else has sensible defaults.
type SubscriberOptions struct {
	// URL is the ws:// or wss:// endpoint of one topic.
	URL string

	// OnMessage receives every text message, in receipt order, on the
	// subscriber's goroutine. Registered once, it survives reconnects.
	OnMessage func(data []byte)

	// OnState, when set, is called on every state transition.
	OnState func(s State)

	// InitialBackoff is the first reconnect delay; it doubles on each
	// failed attempt up to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Dialer defaults to websocket.DefaultDialer.
	Dialer *websocket.Dialer
}

// Subscriber owns one websocket connection to a single topic and keeps it
// alive: on any read or dial failure it backs off exponentially and
// redials until Close is called.
type Subscriber struct {
	opts SubscriberOptions

	mu    sync.Mutex
	state State
	conn  *websocket.Conn

	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func NewSubscriber(opts SubscriberOptions) *Subscriber {
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = defaultInitialBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = defaultMaxBackoff
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	return &Subscriber{
		opts:  opts,
		state: Disconnected,
		done:  make(chan struct{}),
	}
}

// State returns the current connection state.
func (s *Subscriber) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start launches the connect/read/reconnect loop on its own goroutine.
func (s *Subscriber) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run()
	}()
}

// Close tears the subscriber down permanently and waits for its goroutine.
func (s *Subscriber) Close() {
	s.once.Do(func() {
		close(s.done)
		s.mu.Lock()
		if s.conn != nil {
			s.conn.Close() //nolint:errcheck
		}
		s.mu.Unlock()
	})
	s.wg.Wait()
}

func (s *Subscriber) run() {
	backoff := s.opts.InitialBackoff
	attempt := 0

	for {
		select {
		case <-s.done:
			s.setState(Closed)
			return
		default:
		}

		if attempt == 0 {
			s.setState(Connecting)
		} else {
			s.setState(Reconnecting)
		}
		attempt++

		conn, resp, err := s.opts.Dialer.Dial(s.opts.URL, nil)
		if resp != nil && resp.Body != nil {
			resp.Body.Close() //nolint:errcheck
		}
		if err != nil {
			if !s.sleep(backoff) {
				s.setState(Closed)
				return
			}
			backoff = nextBackoff(backoff, s.opts.MaxBackoff)
			continue
		}

		select {
		case <-s.done:
			conn.Close() //nolint:errcheck
			s.setState(Closed)
			return
		default:
		}

		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()
		s.setState(Connected)
		backoff = s.opts.InitialBackoff

		s.readLoop(conn)

		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
		conn.Close() //nolint:errcheck

		select {
		case <-s.done:
			s.setState(Closed)
			return
		default:
			s.setState(Disconnected)
		}
	}
}

// readLoop delivers messages until the connection fails. Ping frames from
// the server are answered by gorilla's default ping handler.
func (s *Subscriber) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if s.opts.OnMessage != nil {
			s.opts.OnMessage(data)
		}
	}
}

// sleep waits d or until Close. Reports false when closing.
func (s *Subscriber) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-s.done:
		return false
	case <-t.C:
		return true
	}
}

func (s *Subscriber) setState(next State) {
	s.mu.Lock()
	if s.state == next {
		s.mu.Unlock()
		return
	}
	s.state = next
	s.mu.Unlock()

	if s.opts.OnState != nil {
		s.opts.OnState(next)
	}
}

func nextBackoff(cur, max time.Duration) time.Duration {
	cur *= 2
	if cur > max {
		return max
	}
	return cur
}
