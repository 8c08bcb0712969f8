package eventboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualClockFiresDueTimersInOrder(t *testing.T) {
	clock := NewManualClock(testStart)
	var fired []string
	clock.AfterFunc(2*time.Second, func() { fired = append(fired, "late") })
	clock.AfterFunc(time.Second, func() { fired = append(fired, "early") })
	stopped := clock.AfterFunc(time.Second, func() { fired = append(fired, "stopped") })
	assert.True(t, stopped.Stop())
	assert.False(t, stopped.Stop())

	clock.Advance(999 * time.Millisecond)
	assert.Empty(t, fired)
	assert.Equal(t, 2, clock.Pending())

	clock.Set(testStart.Add(3 * time.Second))
	assert.Equal(t, []string{"early", "late"}, fired)
	assert.Equal(t, 0, clock.Pending())
}

func TestManualClockImmediateTimer(t *testing.T) {
	clock := NewManualClock(testStart)
	ran := false
	clock.AfterFunc(0, func() { ran = true })
	assert.True(t, ran)
}

func TestSystemClockAfterFunc(t *testing.T) {
	done := make(chan struct{})
	SystemClock().AfterFunc(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("timer did not fire")
	}
}
