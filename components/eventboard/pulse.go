package eventboard

import (
	"sync"
	"time"
)

// DefaultPulseDuration is how long an activated card keeps its highlight.
const DefaultPulseDuration = 500 * time.Millisecond

// pulseTracker keeps the transient count highlight per card. Deadlines and
// expiry timers both come from the tracker's clock.
type pulseTracker struct {
	clock     Clock
	mu        sync.Mutex
	deadlines map[string]time.Time
	timers    map[string]Timer
}

func newPulseTracker(clock Clock) *pulseTracker {
	return &pulseTracker{
		clock:     clock,
		deadlines: map[string]time.Time{},
		timers:    map[string]Timer{},
	}
}

// activate starts or restarts the pulse for name. onExpire runs once the
// pulse clears, unless a newer activation replaced it.
func (p *pulseTracker) activate(name string, d time.Duration, onExpire func()) {
	deadline := p.clock.Now().Add(d)
	p.mu.Lock()
	if t, ok := p.timers[name]; ok {
		t.Stop()
	}
	p.deadlines[name] = deadline
	p.mu.Unlock()

	timer := p.clock.AfterFunc(d, func() {
		if p.clear(name, deadline) && onExpire != nil {
			onExpire()
		}
	})
	p.mu.Lock()
	if current, ok := p.deadlines[name]; ok && current.Equal(deadline) {
		p.timers[name] = timer
	}
	p.mu.Unlock()
}

func (p *pulseTracker) clear(name string, deadline time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	current, ok := p.deadlines[name]
	if !ok || !current.Equal(deadline) {
		return false
	}
	delete(p.deadlines, name)
	delete(p.timers, name)
	return true
}

// active returns the cards still pulsing.
func (p *pulseTracker) active() map[string]bool {
	now := p.clock.Now()
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.deadlines) == 0 {
		return nil
	}
	out := make(map[string]bool, len(p.deadlines))
	for name, deadline := range p.deadlines {
		if now.Before(deadline) {
			out[name] = true
		}
	}
	return out
}

func (p *pulseTracker) stopAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for name, t := range p.timers {
		t.Stop()
		delete(p.timers, name)
	}
	p.deadlines = map[string]time.Time{}
}
