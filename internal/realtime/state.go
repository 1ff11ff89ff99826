package realtime

// ConnState is the lifecycle state of a realtime session. Exactly one
// state is current at any time; all transitions happen inside the client.
type ConnState int

const (
	// StateIdle means the session has never been activated.
	StateIdle ConnState = iota
	// StateConnecting means a connection attempt is in flight.
	StateConnecting
	// StateOpen means the connection is established and frames flow.
	StateOpen
	// StateClosed means the connection dropped or was shut down. An
	// error-triggered Closed is eligible for automatic retry; a Closed
	// reached through Shutdown is not.
	StateClosed
	// StateFailed means the reconnect budget is exhausted. Only
	// ForceReconnect or Activate leaves this state.
	StateFailed
)

// String returns the string representation of a ConnState.
func (s ConnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
