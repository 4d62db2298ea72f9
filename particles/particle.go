package particles

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Particle is the simulation record held in one pool slot.
type Particle struct {
	Center   mgl32.Vec3
	Velocity mgl32.Vec3
	Color    mgl32.Vec3
	Size     float32
	Life     uint32 // remaining ticks, 0 = free slot
}

// Alive reports whether the slot still takes part in simulation.
func (p Particle) Alive() bool { return p.Life > 0 }

// Instance matches the per-instance layout read by the particle vertex shaders
// struct Instance { center: vec3<f32>, size: f32, color: vec3<f32>, pad: f32 }
// Velocity and life never leave the host.
type Instance struct {
	Center [3]float32
	Size   float32
	Color  [3]float32
	pad    float32
}

// Project returns the render-visible part of p. Dead particles project with zero size.
func (p *Particle) Project() Instance {
	inst := Instance{
		Center: [3]float32{p.Center.X(), p.Center.Y(), p.Center.Z()},
		Size:   p.Size,
		Color:  [3]float32{p.Color.X(), p.Color.Y(), p.Color.Z()},
	}
	if p.Life == 0 {
		inst.Size = 0
	}
	return inst
}

// DeviceParticle is the full record used by the compute variant, where the
// device owns the simulation state.
// struct Particle { center: vec4<f32>, color: vec4<f32>, velocity: vec4<f32>, size: f32, life: u32, pad: vec2<f32> }
type DeviceParticle struct {
	Center   [4]float32
	Color    [4]float32
	Velocity [4]float32
	Size     float32
	Life     uint32
	pad      [2]float32
}

// Device converts p into the compute-variant record. The kernels skip dead
// records, so a dead particle is uploaded with zero size.
func (p *Particle) Device() DeviceParticle {
	rec := DeviceParticle{
		Center:   [4]float32{p.Center.X(), p.Center.Y(), p.Center.Z(), 1},
		Color:    [4]float32{p.Color.X(), p.Color.Y(), p.Color.Z(), 1},
		Velocity: [4]float32{p.Velocity.X(), p.Velocity.Y(), p.Velocity.Z(), 0},
		Size:     p.Size,
		Life:     p.Life,
	}
	if p.Life == 0 {
		rec.Size = 0
	}
	return rec
}

// StepUniforms is the per-dispatch parameter block of the compute kernels.
// struct Params { gravity: vec4<f32>, size_decay: f32, count: u32, pad: vec2<u32> }
type StepUniforms struct {
	Gravity   [4]float32
	SizeDecay float32
	Count     uint32
	pad       [2]uint32
}

// NewStepUniforms packs the simulation constants for a pool of count slots.
func NewStepUniforms(gravity mgl32.Vec3, sizeDecay float32, count int) StepUniforms {
	return StepUniforms{
		Gravity:   [4]float32{gravity.X(), gravity.Y(), gravity.Z(), 0},
		SizeDecay: sizeDecay,
		Count:     uint32(count),
	}
}
