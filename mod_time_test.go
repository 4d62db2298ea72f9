package sparks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameStats_FlushesOncePerInterval(t *testing.T) {
	start := time.Unix(100, 0)
	s := &FrameStats{Interval: time.Second, since: start}

	s.Record(10 * time.Millisecond)
	s.Record(30 * time.Millisecond)
	_, ok := s.Flush(start.Add(500 * time.Millisecond))
	assert.False(t, ok)

	s.Record(20 * time.Millisecond)
	sum, ok := s.Flush(start.Add(time.Second))
	assert.True(t, ok)
	assert.Equal(t, FrameSummary{Frames: 3, Avg: 20 * time.Millisecond, Max: 30 * time.Millisecond}, sum)

	_, ok = s.Flush(start.Add(3 * time.Second))
	assert.False(t, ok, "nothing recorded since the last report")
	assert.Equal(t, time.Second, s.Interval)
}

func TestTimeSystem_AdvancesClock(t *testing.T) {
	clock := &Time{Time: time.Now().Add(-time.Millisecond)}
	timeSystem(clock)
	timeSystem(clock)

	assert.Equal(t, uint64(2), clock.Frame)
	assert.GreaterOrEqual(t, clock.Dt, time.Duration(0))
}
