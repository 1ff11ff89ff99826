package realtime

import (
	"context"
	"time"
)

// frameWriter is the write surface the heartbeat needs. Satisfied by
// liveConn; tests substitute a recorder.
type frameWriter interface {
	writeFrame(v any) error
}

// runHeartbeat emits a keep-alive frame at every interval until ctx is
// cancelled or a write fails. The context belongs to a single connection
// instance, so cancelling the connection structurally stops its
// heartbeat; a tick racing the cancellation still cannot touch a later
// connection because the writer is fixed at start.
func runHeartbeat(ctx context.Context, w frameWriter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.writeFrame(Ping); err != nil {
				return
			}
		}
	}
}
