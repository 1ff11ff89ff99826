package realtime

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type recordingWriter struct {
	writes atomic.Int32
	fail   atomic.Bool
}

func (w *recordingWriter) writeFrame(v any) error {
	w.writes.Add(1)
	if w.fail.Load() {
		return errors.New("connection gone")
	}
	return nil
}

// A cancelled connection context must stop the heartbeat for good: no
// frame may be written after the cancellation even once the interval
// elapses again.
func TestHeartbeatStopsOnCancel(t *testing.T) {
	w := &recordingWriter{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runHeartbeat(ctx, w, 20*time.Millisecond)
		close(done)
	}()

	waitFor(t, time.Second, func() bool { return w.writes.Load() >= 2 },
		"heartbeat never ticked")

	cancel()
	<-done
	n := w.writes.Load()
	time.Sleep(120 * time.Millisecond)
	if got := w.writes.Load(); got != n {
		t.Errorf("writes after cancel = %d, want %d (heartbeat must not outlive its connection)", got, n)
	}
}

func TestHeartbeatStopsOnWriteError(t *testing.T) {
	w := &recordingWriter{}
	w.fail.Store(true)
	done := make(chan struct{})
	go func() {
		runHeartbeat(context.Background(), w, 10*time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("heartbeat kept running after a write error")
	}
	if got := w.writes.Load(); got != 1 {
		t.Errorf("writes = %d, want 1", got)
	}
}
