package devbot

import (
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/relaybot/console/internal/bot"
)

// Version reported by /api/status.
const Version = "dev"

// statusReporter samples this process's resource usage so the console's
// status widget has something real to show.
type statusReporter struct {
	started time.Time
	proc    *process.Process
}

func newStatusReporter() *statusReporter {
	r := &statusReporter{started: time.Now()}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		r.proc = p
	}
	return r
}

func (r *statusReporter) status(activeChats int) bot.Status {
	st := bot.Status{
		Version:       Version,
		UptimeSeconds: int64(time.Since(r.started).Seconds()),
		ActiveChats:   activeChats,
	}
	if r.proc == nil {
		return st
	}
	if mem, err := r.proc.MemoryInfo(); err == nil {
		st.MemoryMB = float64(mem.RSS) / (1024 * 1024)
	}
	if cpu, err := r.proc.CPUPercent(); err == nil {
		st.CPUPercent = cpu
	}
	return st
}
