package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock(t *testing.T) {
	before := time.Now()
	now := RealClock{}.Now()
	assert.False(t, now.Before(before))
}

func TestFixedClock(t *testing.T) {
	stamp := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	var c Clock = FixedClock(stamp)

	assert.Equal(t, stamp, c.Now())
	assert.Equal(t, c.Now(), c.Now())
}

func TestClockFunc(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	var c Clock = ClockFunc(func() time.Time {
		calls++
		return start.Add(time.Duration(calls) * time.Minute)
	})

	assert.Equal(t, start.Add(time.Minute), c.Now())
	assert.Equal(t, start.Add(2*time.Minute), c.Now())
}
