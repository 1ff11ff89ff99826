// Package realtime implements the auto-reconnecting WebSocket client the
// console uses to observe the Relay bot. A session spans many underlying
// connection handles: on every unplanned close the client retries at a
// fixed interval until the reconnect budget runs out, then parks in the
// Failed state until the consumer intervenes.
//
// Nothing in the public contract returns an error for transport failure.
// All failure is observed through State, IsConnected, and the connect and
// disconnect callbacks.
package realtime

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// DefaultReconnectInterval is the fixed delay between attempts.
	DefaultReconnectInterval = 3 * time.Second
	// DefaultMaxReconnectAttempts is the reconnect budget.
	DefaultMaxReconnectAttempts = 5
	// DefaultHeartbeatInterval is the keep-alive cadence while open.
	DefaultHeartbeatInterval = 30 * time.Second

	writeTimeout = 10 * time.Second
)

// DialFunc opens one WebSocket connection. Tests substitute their own.
type DialFunc func(url string, header http.Header) (*websocket.Conn, error)

func defaultDial(url string, header http.Header) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	return conn, err
}

// Config describes one session. It is read once at New and never
// mutated afterwards.
type Config struct {
	// URL is the ws:// or wss:// endpoint. Required.
	URL string
	// Header is sent with the connection request (e.g. Authorization).
	Header http.Header
	// ReconnectInterval is the fixed delay between reconnect attempts.
	ReconnectInterval time.Duration
	// MaxReconnectAttempts bounds automatic reconnection. Zero keeps the
	// default; a negative value disables automatic reconnection.
	MaxReconnectAttempts int
	// HeartbeatInterval is the keep-alive cadence while open.
	HeartbeatInterval time.Duration
	// Debug enables logging of dropped frames and ignored operations.
	Debug bool
	// Dial overrides the connection factory.
	Dial DialFunc
}

// liveConn is one exclusively-owned connection handle. Every attempt
// gets a fresh one; handles are never reused across reconnects. The
// context scopes the heartbeat to this handle.
type liveConn struct {
	ws     *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
	wmu    sync.Mutex
}

func (l *liveConn) writeFrame(v any) error {
	l.wmu.Lock()
	defer l.wmu.Unlock()
	l.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return l.ws.WriteJSON(v)
}

func (l *liveConn) close() {
	l.cancel()
	l.ws.Close()
}

// event is a tagged variant delivered to the consumer notify loop, so
// that connect, disconnect, and message callbacks run serially and in
// arrival order.
type event interface{ isEvent() }

type connectedEvent struct{}
type disconnectedEvent struct{ err error }
type messageEvent struct {
	msg Message
	fn  func(Message)
}

func (connectedEvent) isEvent()    {}
func (disconnectedEvent) isEvent() {}
func (messageEvent) isEvent()      {}

// Client manages one realtime session. All methods are safe for
// concurrent use and none of them blocks on the network.
type Client struct {
	cfg  Config
	dial DialFunc
	disp dispatcher

	mu      sync.Mutex
	state   ConnState
	conn    *liveConn
	epoch   uint64 // bumped on activate and shutdown; stale work checks it
	stopped bool   // set by Shutdown; suppresses automatic reconnection
	policy  reconnectPolicy
	retry   *time.Timer

	cbMu         sync.Mutex
	onConnect    func()
	onDisconnect func()

	events chan event
}

// New creates an idle session for the given configuration. The session
// does not touch the network until Activate.
func New(cfg Config) *Client {
	if cfg.ReconnectInterval <= 0 {
		cfg.ReconnectInterval = DefaultReconnectInterval
	}
	budget := cfg.MaxReconnectAttempts
	switch {
	case budget == 0:
		budget = DefaultMaxReconnectAttempts
	case budget < 0:
		budget = 0
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	c := &Client{
		cfg:    cfg,
		dial:   cfg.Dial,
		disp:   dispatcher{debug: cfg.Debug},
		state:  StateIdle,
		policy: reconnectPolicy{interval: cfg.ReconnectInterval, budget: budget},
		events: make(chan event, 64),
	}
	if c.dial == nil {
		c.dial = defaultDial
	}
	go c.notifyLoop()
	return c
}

// OnConnect registers the connect notification, replacing any prior one.
func (c *Client) OnConnect(fn func()) {
	c.cbMu.Lock()
	c.onConnect = fn
	c.cbMu.Unlock()
}

// OnDisconnect registers the disconnect notification, replacing any
// prior one.
func (c *Client) OnDisconnect(fn func()) {
	c.cbMu.Lock()
	c.onDisconnect = fn
	c.cbMu.Unlock()
}

// OnMessage registers the consumer message callback, replacing any
// prior one.
func (c *Client) OnMessage(fn func(Message)) {
	c.disp.setHandler(fn)
}

// State returns the current session state.
func (c *Client) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected reports whether the session is open.
func (c *Client) IsConnected() bool {
	return c.State() == StateOpen
}

// LastMessage returns the most recent successfully parsed message.
func (c *Client) LastMessage() (Message, bool) {
	return c.disp.lastMessage()
}

// Attempts returns the reconnect attempts consumed since the last
// verified open, and the total budget.
func (c *Client) Attempts() (used, budget int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.policy.attempts, c.policy.budget
}

// Activate opens the session. It is idempotent: while a connection
// attempt is in flight or a connection is open it does nothing.
func (c *Client) Activate() {
	c.mu.Lock()
	if st := c.state; st == StateConnecting || st == StateOpen {
		c.mu.Unlock()
		c.debugf("activate ignored: session is %s", st)
		return
	}
	gen := c.beginAttemptLocked()
	c.mu.Unlock()
	go c.connect(gen)
}

// ForceReconnect abandons any pending retry and attempts a connection
// immediately, regardless of the attempt budget. It is the only way out
// of the Failed state and also reopens a session after Shutdown.
func (c *Client) ForceReconnect() {
	c.Activate()
}

// Send writes one frame if the session is open; otherwise it is a
// no-op. Write failures are not surfaced here: the read side observes
// the close and drives the state machine.
func (c *Client) Send(msg Message) {
	c.mu.Lock()
	l := c.conn
	open := c.state == StateOpen
	c.mu.Unlock()
	if !open || l == nil {
		c.debugf("send dropped: session not open")
		return
	}
	if err := l.writeFrame(msg); err != nil {
		c.debugf("send failed: %v", err)
	}
}

// Shutdown cancels any pending reconnect, closes the live handle, and
// marks the session terminally stopped: no automatic reconnection will
// follow. A later Activate or ForceReconnect reopens the session.
func (c *Client) Shutdown() {
	c.mu.Lock()
	if c.stopped && c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.epoch++
	c.cancelRetryLocked()
	wasOpen := c.state == StateOpen
	if c.conn != nil {
		c.conn.close()
		c.conn = nil
	}
	c.state = StateClosed
	c.mu.Unlock()
	if wasOpen {
		c.events <- disconnectedEvent{}
	}
}

// beginAttemptLocked transitions to Connecting and returns the
// generation token the resulting dial must present. Caller holds c.mu.
func (c *Client) beginAttemptLocked() uint64 {
	c.stopped = false
	c.cancelRetryLocked()
	c.state = StateConnecting
	c.epoch++
	return c.epoch
}

// connect performs one dial attempt. Exactly one attempt is in flight at
// a time: Activate refuses to start another while Connecting, and a
// stale result (superseded by Shutdown or a newer attempt) is discarded.
func (c *Client) connect(gen uint64) {
	ws, err := c.dial(c.cfg.URL, c.cfg.Header)
	c.mu.Lock()
	if c.epoch != gen || c.state != StateConnecting {
		c.mu.Unlock()
		if ws != nil {
			ws.Close()
		}
		return
	}
	if err != nil {
		c.mu.Unlock()
		c.debugf("dial %s: %v", c.cfg.URL, err)
		c.connectionLost(gen, err)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	l := &liveConn{ws: ws, ctx: ctx, cancel: cancel}
	c.conn = l
	c.state = StateOpen
	c.policy.reset()
	c.mu.Unlock()

	c.events <- connectedEvent{}
	l.writeFrame(Ping)
	go runHeartbeat(ctx, l, c.cfg.HeartbeatInterval)
	go c.readLoop(gen, l)
}

// readLoop drains one connection until it closes, then reports the loss.
func (c *Client) readLoop(gen uint64, l *liveConn) {
	for {
		_, data, err := l.ws.ReadMessage()
		if err != nil {
			c.connectionLost(gen, err)
			return
		}
		c.mu.Lock()
		stale := c.conn != l
		c.mu.Unlock()
		if stale {
			return
		}
		if msg, fn, ok := c.disp.dispatch(data); ok {
			c.events <- messageEvent{msg: msg, fn: fn}
		}
	}
}

// connectionLost handles an unplanned close of the attempt identified by
// gen: stop the heartbeat with the handle, transition to Closed, notify
// the consumer, and let the reconnect policy decide what happens next.
func (c *Client) connectionLost(gen uint64, err error) {
	c.mu.Lock()
	if c.epoch != gen {
		// Superseded by Shutdown or a newer attempt.
		c.mu.Unlock()
		return
	}
	if c.conn != nil {
		c.conn.close()
		c.conn = nil
	}
	c.state = StateClosed
	if !c.stopped {
		if delay, ok := c.policy.next(); ok {
			c.debugf("connection lost (%v), retrying in %v (attempt %d/%d)",
				err, delay, c.policy.attempts, c.policy.budget)
			c.scheduleRetryLocked(delay)
		} else {
			c.debugf("connection lost (%v), reconnect budget exhausted", err)
			c.state = StateFailed
		}
	}
	c.mu.Unlock()
	c.events <- disconnectedEvent{err: err}
}

// scheduleRetryLocked arms the pending reconnect timer. The timer is
// cancelled by Shutdown and superseded by any explicit Activate; a fire
// that lost either race finds the epoch changed and does nothing.
func (c *Client) scheduleRetryLocked(delay time.Duration) {
	epoch := c.epoch
	c.retry = time.AfterFunc(delay, func() {
		c.mu.Lock()
		if c.epoch != epoch || c.stopped || c.state != StateClosed {
			c.mu.Unlock()
			return
		}
		c.retry = nil
		gen := c.beginAttemptLocked()
		c.mu.Unlock()
		go c.connect(gen)
	})
}

func (c *Client) cancelRetryLocked() {
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
}

// notifyLoop delivers consumer events one at a time, in arrival order.
// Callbacks therefore never run concurrently with each other.
func (c *Client) notifyLoop() {
	for ev := range c.events {
		switch ev := ev.(type) {
		case connectedEvent:
			c.cbMu.Lock()
			fn := c.onConnect
			c.cbMu.Unlock()
			if fn != nil {
				fn()
			}
		case disconnectedEvent:
			c.cbMu.Lock()
			fn := c.onDisconnect
			c.cbMu.Unlock()
			if fn != nil {
				fn()
			}
		case messageEvent:
			if ev.fn != nil {
				ev.fn(ev.msg)
			}
		}
	}
}

func (c *Client) debugf(format string, args ...any) {
	if c.cfg.Debug {
		log.Printf("realtime: "+format, args...)
	}
}
