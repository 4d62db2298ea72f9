package sparks

import (
	"time"
)

// Time is the frame clock. Dt is the wall time since the previous frame.
type Time struct {
	Time  time.Time
	Dt    time.Duration
	Frame uint64
}

// FrameStats aggregates frame times between two reports.
type FrameStats struct {
	Interval time.Duration

	frames int
	total  time.Duration
	worst  time.Duration
	since  time.Time
}

// FrameSummary is one report of FrameStats.
type FrameSummary struct {
	Frames int
	Avg    time.Duration
	Max    time.Duration
}

func (s *FrameStats) Record(dt time.Duration) {
	s.frames++
	s.total += dt
	s.worst = max(s.worst, dt)
}

// Flush returns the summary of the frames recorded since the last flush once
// Interval has passed, and starts a new window.
func (s *FrameStats) Flush(now time.Time) (FrameSummary, bool) {
	if s.since.IsZero() {
		s.since = now
	}
	if s.frames == 0 || now.Sub(s.since) < s.Interval {
		return FrameSummary{}, false
	}
	sum := FrameSummary{
		Frames: s.frames,
		Avg:    s.total / time.Duration(s.frames),
		Max:    s.worst,
	}
	*s = FrameStats{Interval: s.Interval, since: now}
	return sum, true
}

type TimeModule struct {
	StatsInterval time.Duration
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	now := time.Now()
	cmd.AddResources(
		&Time{Time: now},
		&FrameStats{Interval: mod.StatsInterval, since: now},
	)
	app.UseSystem(
		System(timeSystem).
			InStage(Prelude).
			RunAlways(),
	)
}

func timeSystem(timeResource *Time) {
	now := time.Now()

	timeResource.Dt = now.Sub(timeResource.Time)
	timeResource.Time = now
	timeResource.Frame++
}
