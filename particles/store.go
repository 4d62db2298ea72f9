package particles

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

const noHint = -1

// Store is the fixed-capacity particle pool together with its ring allocator.
//
// Slots are handed out in ring order and always overwrite the oldest slot; the
// pool is never "full". The first-live hint only bounds where the update scan
// starts and may point at a slot that already died.
type Store struct {
	particles []Particle
	cursor    int
	live      int
	hint      int

	// slots overwritten with a pre-dead particle while their projection was still visible
	pendingClear []int
}

// StepStats describes the work done by one tick.
type StepStats struct {
	Visited   int // slots touched by the scan, dead ones included
	Processed int // slots that were alive when the tick began
	Died      int
}

func NewStore(capacity int) (*Store, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d", ErrInvariant, capacity)
	}
	return &Store{
		particles: make([]Particle, capacity),
		hint:      noHint,
	}, nil
}

func (s *Store) Capacity() int { return len(s.particles) }

// LiveCount returns the exact number of slots with Life > 0.
func (s *Store) LiveCount() int { return s.live }

// Cursor returns the slot the next Allocate will write.
func (s *Store) Cursor() int { return s.cursor }

// FirstLiveHint returns the current scan start hint, if any.
func (s *Store) FirstLiveHint() (int, bool) {
	if s.hint == noHint {
		return 0, false
	}
	return s.hint, true
}

// At returns a copy of slot i.
func (s *Store) At(i int) Particle { return s.particles[i] }

// Allocate writes p into the slot at the cursor and advances the cursor.
// It never fails. A particle with Life == 0 is accepted and stays dead.
func (s *Store) Allocate(p Particle) int {
	slot := s.cursor
	old := &s.particles[slot]

	if old.Alive() {
		s.live--
		if !p.Alive() {
			s.pendingClear = append(s.pendingClear, slot)
		}
	}
	*old = p
	if p.Alive() {
		s.live++
		if s.hint == noHint {
			s.hint = slot
		}
	}

	s.cursor++
	if s.cursor == len(s.particles) {
		s.cursor = 0
	}
	return slot
}

// Reset kills every particle and rewinds the allocator.
func (s *Store) Reset() {
	clear(s.particles)
	s.cursor = 0
	s.live = 0
	s.hint = noHint
	s.pendingClear = s.pendingClear[:0]
}

// needsStep reports whether a tick has any work, including pending projection clears.
func (s *Store) needsStep() bool {
	return s.live > 0 || len(s.pendingClear) > 0
}

// advance runs one tick of the bounded circular scan and writes the projection
// of every touched slot into view.
//
// The scan starts at the hint, runs to the end of the pool, then wraps to the
// hint. It stops as soon as it has processed as many live slots as existed at
// tick entry, so a contiguous live arc costs O(live), not O(capacity).
func (s *Store) advance(gravity mgl32.Vec3, sizeDecay float32, view []Instance) StepStats {
	for _, slot := range s.pendingClear {
		if !s.particles[slot].Alive() {
			view[slot].Size = 0
		}
	}
	s.pendingClear = s.pendingClear[:0]

	var st StepStats
	target := s.live
	if target == 0 {
		return st
	}

	start := 0
	if s.hint != noHint {
		start = s.hint
	}
	s.hint = noHint

	for i := start; i < len(s.particles); i++ {
		if s.tick(i, gravity, sizeDecay, view, &st) == target {
			return st
		}
	}
	for i := 0; i < start; i++ {
		if s.tick(i, gravity, sizeDecay, view, &st) == target {
			return st
		}
	}
	return st
}

// tick advances slot i by one step and returns the processed count so far.
func (s *Store) tick(i int, gravity mgl32.Vec3, sizeDecay float32, view []Instance, st *StepStats) int {
	st.Visited++
	p := &s.particles[i]
	if p.Life == 0 {
		return st.Processed
	}

	p.Life--
	st.Processed++
	if p.Life == 0 {
		view[i].Size = 0
		s.live--
		st.Died++
		return st.Processed
	}

	if p.Size > 0 {
		p.Size -= sizeDecay
		if p.Size < 0 {
			p.Size = 0
		}
	}
	p.Velocity = p.Velocity.Add(gravity)
	p.Center = p.Center.Add(p.Velocity)
	view[i] = p.Project()

	if s.hint == noHint {
		s.hint = i
	}
	return st.Processed
}
