package particles

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// UpdateEngine advances particle state one tick at a time and makes the result
// visible to the renderer. Implementations differ in where the physics runs.
type UpdateEngine interface {
	Capacity() int
	LiveCount() int
	Allocate(p Particle) int
	Step() error
}

// Renderer draws the whole pool with a single instanced call.
type Renderer interface {
	Render() error
}

// Physics holds the per-tick integration constants.
type Physics struct {
	Gravity   mgl32.Vec3 // added to velocity every tick
	SizeDecay float32    // subtracted from size every tick, floored at 0
}

func (ph Physics) Validate() error {
	if ph.SizeDecay < 0 {
		return fmt.Errorf("%w: negative size decay %v", ErrInvariant, ph.SizeDecay)
	}
	return nil
}

// CPUEngine runs the simulation on a host-side Store and copies the projection
// of every touched slot into a device-visible InstanceBuffer.
type CPUEngine struct {
	store   *Store
	buf     InstanceBuffer
	physics Physics
	last    StepStats
}

var _ UpdateEngine = (*CPUEngine)(nil)

// NewCPUEngine builds an engine over buf, which must hold exactly one Instance per slot.
func NewCPUEngine(capacity int, buf InstanceBuffer, physics Physics) (*CPUEngine, error) {
	store, err := NewStore(capacity)
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, fmt.Errorf("%w: nil instance buffer", ErrInvariant)
	}
	if buf.Len() != capacity {
		return nil, fmt.Errorf("%w: instance buffer holds %d records, capacity is %d", ErrInvariant, buf.Len(), capacity)
	}
	if err := physics.Validate(); err != nil {
		return nil, err
	}
	return &CPUEngine{store: store, buf: buf, physics: physics}, nil
}

func (e *CPUEngine) Capacity() int  { return e.store.Capacity() }
func (e *CPUEngine) LiveCount() int { return e.store.LiveCount() }

func (e *CPUEngine) Allocate(p Particle) int { return e.store.Allocate(p) }

// Store exposes the simulation state for inspection.
func (e *CPUEngine) Store() *Store { return e.store }

// LastStep returns the counters of the most recent Step.
func (e *CPUEngine) LastStep() StepStats { return e.last }

// Step advances every live particle by one tick. With nothing alive it returns
// without touching the buffer.
func (e *CPUEngine) Step() error {
	e.last = StepStats{}
	if !e.store.needsStep() {
		return nil
	}
	return WithMapped(e.buf, func(view []Instance) {
		e.last = e.store.advance(e.physics.Gravity, e.physics.SizeDecay, view)
	})
}
