package realtime

import "time"

// reconnectPolicy decides whether another connection attempt is
// warranted after an unplanned close. The delay is a fixed interval, not
// exponential backoff; the attempt counter resets only on a verified
// successful open.
type reconnectPolicy struct {
	interval time.Duration
	budget   int
	attempts int
}

// next reports whether another attempt is allowed and, if so, the delay
// before it. Each allowed attempt consumes budget.
func (p *reconnectPolicy) next() (time.Duration, bool) {
	if p.attempts >= p.budget {
		return 0, false
	}
	p.attempts++
	return p.interval, true
}

// reset clears the attempt counter. Called only after a successful open.
func (p *reconnectPolicy) reset() {
	p.attempts = 0
}
