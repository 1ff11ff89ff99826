package realtime

import (
	"testing"
	"time"
)

func TestPolicyConsumesFixedBudget(t *testing.T) {
	p := reconnectPolicy{interval: 100 * time.Millisecond, budget: 3}

	for i := 1; i <= 3; i++ {
		delay, ok := p.next()
		if !ok {
			t.Fatalf("attempt %d: next() = false, want true", i)
		}
		if delay != 100*time.Millisecond {
			t.Errorf("attempt %d: delay = %v, want fixed 100ms", i, delay)
		}
	}

	if _, ok := p.next(); ok {
		t.Error("next() after budget exhaustion = true, want false")
	}
	if _, ok := p.next(); ok {
		t.Error("exhaustion should be stable across calls")
	}
}

func TestPolicyResetRestoresFullBudget(t *testing.T) {
	p := reconnectPolicy{interval: time.Second, budget: 2}

	p.next()
	p.next()
	if _, ok := p.next(); ok {
		t.Fatal("budget should be exhausted")
	}

	p.reset()

	for i := 1; i <= 2; i++ {
		if _, ok := p.next(); !ok {
			t.Fatalf("attempt %d after reset: next() = false, want full budget", i)
		}
	}
	if _, ok := p.next(); ok {
		t.Error("reset should restore exactly the original budget")
	}
}

func TestPolicyZeroBudgetNeverRetries(t *testing.T) {
	p := reconnectPolicy{interval: time.Second, budget: 0}
	if _, ok := p.next(); ok {
		t.Error("zero budget: next() = true, want false")
	}
}
