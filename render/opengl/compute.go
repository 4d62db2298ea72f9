package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/gekko3d/sparks/particles"
	"github.com/gekko3d/sparks/render"
	"github.com/gekko3d/sparks/render/shaders"
)

var deviceParticleSize = int(unsafe.Sizeof(particles.DeviceParticle{}))

// ComputeEngine keeps the particle records in a shader storage buffer and
// advances them with a compute shader. The renderer draws the same buffer,
// so it must be built with RendererOptions.Barrier set.
type ComputeEngine struct {
	ledger  *particles.Ledger
	program uint32
	ssbo    uint32
}

var _ particles.UpdateEngine = (*ComputeEngine)(nil)

func NewComputeEngine(capacity int, physics particles.Physics) (*ComputeEngine, error) {
	ledger, err := particles.NewLedger(capacity)
	if err != nil {
		return nil, err
	}
	if err := physics.Validate(); err != nil {
		return nil, err
	}

	program, err := linkProgram(map[uint32]string{
		gl.COMPUTE_SHADER: shaders.ParticlesStepComp,
	})
	if err != nil {
		return nil, err
	}
	e := &ComputeEngine{ledger: ledger, program: program}

	gl.GenBuffers(1, &e.ssbo)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, e.ssbo)
	zeroBuffer(gl.SHADER_STORAGE_BUFFER, capacity*deviceParticleSize, gl.DYNAMIC_COPY)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)

	g := physics.Gravity
	gl.UseProgram(program)
	gl.Uniform3f(uniformLocation(program, "uGravity"), g.X(), g.Y(), g.Z())
	gl.Uniform1f(uniformLocation(program, "uSizeDecay"), physics.SizeDecay)
	gl.Uniform1ui(uniformLocation(program, "uCount"), uint32(capacity))
	gl.UseProgram(0)

	if err := checkError("create compute engine"); err != nil {
		e.Release()
		return nil, fmt.Errorf("%w: %w", particles.ErrConstruction, err)
	}
	return e, nil
}

func (e *ComputeEngine) Capacity() int  { return e.ledger.Capacity() }
func (e *ComputeEngine) LiveCount() int { return e.ledger.LiveCount() }

// SSBO returns the buffer name the renderer draws with render.DeviceLayout.
func (e *ComputeEngine) SSBO() uint32 { return e.ssbo }

// Allocate uploads p into the next ring slot.
func (e *ComputeEngine) Allocate(p particles.Particle) int {
	slot := e.ledger.Allocate(p.Life)
	rec := p.Device()
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, e.ssbo)
	gl.BufferSubData(gl.SHADER_STORAGE_BUFFER, slot*deviceParticleSize, deviceParticleSize, unsafe.Pointer(&rec))
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)
	return slot
}

// Step dispatches the kernel over the whole pool. Nothing is dispatched while
// the pool is empty.
func (e *ComputeEngine) Step() error {
	if e.ledger.LiveCount() == 0 {
		return nil
	}
	e.ledger.Step()

	gl.UseProgram(e.program)
	gl.MemoryBarrier(gl.BUFFER_UPDATE_BARRIER_BIT)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 0, e.ssbo)
	gl.DispatchCompute(render.Workgroups(e.ledger.Capacity()), 1, 1)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 0, 0)
	gl.UseProgram(0)
	return checkError("dispatch particle step")
}

func (e *ComputeEngine) Release() {
	if e.ssbo != 0 {
		gl.DeleteBuffers(1, &e.ssbo)
		e.ssbo = 0
	}
	if e.program != 0 {
		gl.DeleteProgram(e.program)
		e.program = 0
	}
}
