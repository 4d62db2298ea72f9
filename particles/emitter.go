package particles

import (
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// EmitterConfig controls what each spawned particle looks like.
type EmitterConfig struct {
	PerFrame    int // particles spawned per Emit call
	Life        uint32
	Size        float32
	Color       mgl32.Vec3
	VelocityMin mgl32.Vec3
	VelocityMax mgl32.Vec3
}

// Allocator is the part of an engine an emitter needs.
type Allocator interface {
	Allocate(p Particle) int
}

// Emitter spawns particles at a movable origin with a velocity drawn
// uniformly from [VelocityMin, VelocityMax) per axis.
type Emitter struct {
	Origin mgl32.Vec3

	cfg EmitterConfig
	rng *rand.Rand
}

func NewEmitter(cfg EmitterConfig, seed uint64) *Emitter {
	return &Emitter{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
	}
}

// Config returns a pointer to the emitter's config for live tuning.
func (e *Emitter) Config() *EmitterConfig { return &e.cfg }

// Move shifts the origin by d.
func (e *Emitter) Move(d mgl32.Vec3) { e.Origin = e.Origin.Add(d) }

// Spawn builds one particle at the current origin.
func (e *Emitter) Spawn() Particle {
	var vel mgl32.Vec3
	for i := range vel {
		vel[i] = e.between(e.cfg.VelocityMin[i], e.cfg.VelocityMax[i])
	}
	return Particle{
		Center:   e.Origin,
		Velocity: vel,
		Color:    e.cfg.Color,
		Size:     e.cfg.Size,
		Life:     e.cfg.Life,
	}
}

// Emit allocates PerFrame particles into a and returns how many were spawned.
func (e *Emitter) Emit(a Allocator) int {
	for range e.cfg.PerFrame {
		a.Allocate(e.Spawn())
	}
	return max(e.cfg.PerFrame, 0)
}

func (e *Emitter) between(lo, hi float32) float32 {
	if lo == hi {
		return lo
	}
	return lo + e.rng.Float32()*(hi-lo)
}
