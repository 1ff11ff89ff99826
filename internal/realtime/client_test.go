package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// wsServer is a controllable peer. While rejecting, connection attempts
// fail at the handshake (the client never sees a verified open); when
// accepting, each upgraded connection is handed to the current script.
type wsServer struct {
	srv *httptest.Server

	mu     sync.Mutex
	reject bool
	script func(*websocket.Conn)
}

func newWSServer(t *testing.T, script func(*websocket.Conn)) *wsServer {
	t.Helper()
	s := &wsServer{script: script}
	up := websocket.Upgrader{}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		reject, fn := s.reject, s.script
		s.mu.Unlock()
		if reject {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		fn(conn)
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *wsServer) setReject(v bool) {
	s.mu.Lock()
	s.reject = v
	s.mu.Unlock()
}

func (s *wsServer) url() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

// holdOpen keeps the connection alive, draining inbound frames, until
// the peer goes away.
func holdOpen(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// countingDial wraps the default dialer and records every attempt.
func countingDial(n *atomic.Int32) DialFunc {
	return func(url string, header http.Header) (*websocket.Conn, error) {
		n.Add(1)
		return defaultDial(url, header)
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

// End to end: with a budget of 2 and an unreachable server, the client
// makes exactly the initial attempt plus two spaced reconnect attempts,
// then parks in Failed with no further automatic activity.
func TestReconnectBudgetExhaustion(t *testing.T) {
	srv := newWSServer(t, holdOpen)
	srv.setReject(true)

	var dials atomic.Int32
	var stampMu sync.Mutex
	var stamps []time.Time
	c := New(Config{
		URL:                  srv.url(),
		ReconnectInterval:    100 * time.Millisecond,
		MaxReconnectAttempts: 2,
		Dial: func(url string, header http.Header) (*websocket.Conn, error) {
			dials.Add(1)
			stampMu.Lock()
			stamps = append(stamps, time.Now())
			stampMu.Unlock()
			return defaultDial(url, header)
		},
	})
	c.Activate()

	waitFor(t, 3*time.Second, func() bool { return c.State() == StateFailed },
		"client never reached Failed")

	if got := dials.Load(); got != 3 {
		t.Errorf("dial attempts = %d, want 3 (initial + 2 reconnects)", got)
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true in Failed state")
	}

	// Reconnect attempts are spaced by at least the fixed interval.
	stampMu.Lock()
	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-1]); gap < 90*time.Millisecond {
			t.Errorf("attempt %d fired %v after attempt %d, want >= 100ms", i+1, gap, i)
		}
	}
	stampMu.Unlock()

	// Failed is terminal for automatic action.
	time.Sleep(300 * time.Millisecond)
	if got := dials.Load(); got != 3 {
		t.Errorf("dial attempts after Failed = %d, want 3", got)
	}
}

// A successful open resets the attempt counter: a second independent
// failure sequence gets the full original budget again.
func TestSuccessfulOpenResetsBudget(t *testing.T) {
	conns := make(chan *websocket.Conn, 4)
	srv := newWSServer(t, func(conn *websocket.Conn) {
		conns <- conn
		holdOpen(conn)
	})
	srv.setReject(true)

	var dials atomic.Int32
	c := New(Config{
		URL:                  srv.url(),
		ReconnectInterval:    200 * time.Millisecond,
		MaxReconnectAttempts: 1,
		Dial:                 countingDial(&dials),
	})
	c.Activate()

	// The initial attempt is refused. Let the single budgeted retry
	// through; the open must reset the counter.
	waitFor(t, 2*time.Second, func() bool { return dials.Load() == 1 },
		"initial attempt never happened")
	srv.setReject(false)
	waitFor(t, 2*time.Second, c.IsConnected, "client never reconnected")

	// Drop the healthy connection with the server refusing again.
	// Without the reset the budget would already be spent and the client
	// would fail with no further dial; with it, one more retry happens.
	srv.setReject(true)
	(<-conns).Close()
	waitFor(t, 2*time.Second, func() bool { return c.State() == StateFailed },
		"client never exhausted its second budget")

	if got := dials.Load(); got != 3 {
		t.Errorf("dial attempts = %d, want 3 (initial, reset retry, post-reset retry)", got)
	}
}

func TestActivateIdempotentWhileOpen(t *testing.T) {
	srv := newWSServer(t, holdOpen)

	var dials atomic.Int32
	c := New(Config{URL: srv.url(), Dial: countingDial(&dials)})
	defer c.Shutdown()
	c.Activate()
	waitFor(t, 2*time.Second, c.IsConnected, "client never connected")

	c.Activate()
	c.Activate()
	time.Sleep(50 * time.Millisecond)
	if got := dials.Load(); got != 1 {
		t.Errorf("dial attempts = %d, want 1 (Activate is a no-op while open)", got)
	}
}

func TestShutdownCancelsPendingReconnect(t *testing.T) {
	srv := newWSServer(t, holdOpen)
	srv.setReject(true)

	var dials atomic.Int32
	disconnected := make(chan struct{}, 8)
	c := New(Config{
		URL:                  srv.url(),
		ReconnectInterval:    150 * time.Millisecond,
		MaxReconnectAttempts: 5,
		Dial:                 countingDial(&dials),
	})
	c.OnDisconnect(func() { disconnected <- struct{}{} })
	c.Activate()

	// First refused attempt has been observed and a retry is pending.
	select {
	case <-disconnected:
	case <-time.After(2 * time.Second):
		t.Fatal("never saw the first disconnect")
	}
	c.Shutdown()

	time.Sleep(400 * time.Millisecond)
	if got := dials.Load(); got != 1 {
		t.Errorf("dial attempts = %d, want 1 (shutdown must cancel the pending retry)", got)
	}
	if got := c.State(); got != StateClosed {
		t.Errorf("State() = %s, want closed", got)
	}
}

func TestShutdownWhileOpenNotifiesOnce(t *testing.T) {
	srv := newWSServer(t, holdOpen)

	var disconnects atomic.Int32
	c := New(Config{URL: srv.url()})
	c.OnDisconnect(func() { disconnects.Add(1) })
	c.Activate()
	waitFor(t, 2*time.Second, c.IsConnected, "client never connected")

	c.Shutdown()
	c.Shutdown() // idempotent

	waitFor(t, time.Second, func() bool { return disconnects.Load() == 1 },
		"disconnect notification never delivered")
	time.Sleep(50 * time.Millisecond)
	if got := disconnects.Load(); got != 1 {
		t.Errorf("disconnect notifications = %d, want 1", got)
	}
	if got := c.State(); got != StateClosed {
		t.Errorf("State() = %s, want closed", got)
	}
}

func TestForceReconnectLeavesFailed(t *testing.T) {
	srv := newWSServer(t, holdOpen)
	srv.setReject(true)

	c := New(Config{
		URL:                  srv.url(),
		MaxReconnectAttempts: -1, // no automatic retries
	})
	c.Activate()
	waitFor(t, 2*time.Second, func() bool { return c.State() == StateFailed },
		"client never failed")

	srv.setReject(false)
	c.ForceReconnect()
	waitFor(t, 2*time.Second, c.IsConnected, "ForceReconnect did not reopen the session")
	c.Shutdown()
}

// A malformed frame is silently discarded: no callback fires for it and
// the last-message slot keeps its previous value.
func TestMalformedFrameIgnored(t *testing.T) {
	sent := make(chan struct{})
	srv := newWSServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"status","event":"ready"}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`not-json`))
		close(sent)
		holdOpen(conn)
	})

	msgs := make(chan Message, 8)
	c := New(Config{URL: srv.url(), Debug: true})
	defer c.Shutdown()
	c.OnMessage(func(m Message) { msgs <- m })
	c.Activate()

	select {
	case m := <-msgs:
		if m.Type != "status" {
			t.Errorf("message type = %q, want status", m.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("valid frame never dispatched")
	}

	<-sent
	time.Sleep(100 * time.Millisecond)
	select {
	case m := <-msgs:
		t.Errorf("malformed frame dispatched as %+v", m)
	default:
	}
	last, ok := c.LastMessage()
	if !ok || last.Type != "status" {
		t.Errorf("LastMessage() = %+v, %v; want the status frame", last, ok)
	}
}

func TestSendIsNoopUnlessOpen(t *testing.T) {
	var dials atomic.Int32
	c := New(Config{URL: "ws://127.0.0.1:1/ws", Dial: countingDial(&dials)})

	// Never activated: must not dial, must not panic.
	c.Send(Message{Type: "broadcast"})
	if got := dials.Load(); got != 0 {
		t.Errorf("Send dialed %d times, want 0", got)
	}

	c.Shutdown()
	c.Send(Message{Type: "broadcast"})
}

// While open the client sends the initial liveness frame immediately and
// then heartbeats at the configured cadence, each exactly {"type":"ping"}.
func TestHeartbeatFramesWhileOpen(t *testing.T) {
	frames := make(chan string, 16)
	srv := newWSServer(t, func(conn *websocket.Conn) {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			frames <- string(data)
		}
	})

	c := New(Config{URL: srv.url(), HeartbeatInterval: 40 * time.Millisecond})
	defer c.Shutdown()
	c.Activate()

	for i := 0; i < 3; i++ {
		select {
		case f := <-frames:
			if f != `{"type":"ping"}` {
				t.Errorf("frame %d = %s, want {\"type\":\"ping\"}", i, f)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("only received %d keep-alive frames", i)
		}
	}
}

func TestCallbackRegistrationReplaces(t *testing.T) {
	srv := newWSServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"notification"}`))
		holdOpen(conn)
	})

	first := make(chan Message, 1)
	second := make(chan Message, 1)
	c := New(Config{URL: srv.url()})
	defer c.Shutdown()
	c.OnMessage(func(m Message) { first <- m })
	c.OnMessage(func(m Message) { second <- m })
	c.Activate()

	select {
	case <-second:
	case <-time.After(2 * time.Second):
		t.Fatal("replacement handler never invoked")
	}
	select {
	case <-first:
		t.Error("replaced handler still received a message")
	default:
	}
}
