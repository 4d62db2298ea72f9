package webgpu

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/sparks/particles"
	"github.com/gekko3d/sparks/render"
	"github.com/gekko3d/sparks/render/shaders"
)

var deviceParticleSize = uint64(unsafe.Sizeof(particles.DeviceParticle{}))

// ComputeEngine keeps the particle records on the device and advances them
// with a compute kernel. The renderer draws the same buffer in place.
//
// The host never reads the buffer back; a Ledger mirrors the allocation
// cursor and death schedule so LiveCount stays exact.
type ComputeEngine struct {
	dev     *Device
	ledger  *particles.Ledger
	physics particles.Physics

	particles *wgpu.Buffer
	params    *wgpu.Buffer
	pipeline  *wgpu.ComputePipeline
	bindGroup *wgpu.BindGroup

	err error // first upload failure, reported by the next Step
}

var _ particles.UpdateEngine = (*ComputeEngine)(nil)

func NewComputeEngine(d *Device, capacity int, physics particles.Physics) (*ComputeEngine, error) {
	ledger, err := particles.NewLedger(capacity)
	if err != nil {
		return nil, err
	}
	if err := physics.Validate(); err != nil {
		return nil, err
	}

	e := &ComputeEngine{dev: d, ledger: ledger, physics: physics}
	if err := e.setup(capacity); err != nil {
		e.Release()
		return nil, err
	}
	return e, nil
}

func (e *ComputeEngine) setup(capacity int) error {
	var err error
	e.particles, err = e.dev.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Device Particles",
		Size:  uint64(capacity) * deviceParticleSize,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: create particle storage: %w", particles.ErrConstruction, err)
	}

	uniforms := particles.NewStepUniforms(e.physics.Gravity, e.physics.SizeDecay, capacity)
	e.params, err = e.dev.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Step Params",
		Contents: wgpu.ToBytes([]particles.StepUniforms{uniforms}),
		Usage:    wgpu.BufferUsageUniform,
	})
	if err != nil {
		return fmt.Errorf("%w: create step params: %w", particles.ErrConstruction, err)
	}

	shader, err := e.dev.createShader("Particle Step", shaders.ParticlesStepWGSL)
	if err != nil {
		return err
	}
	defer shader.Release()

	e.pipeline, err = e.dev.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: "Particle Step Pipeline",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     shader,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return fmt.Errorf("%w: create step pipeline: %w", particles.ErrConstruction, err)
	}

	layout := e.pipeline.GetBindGroupLayout(0)
	defer layout.Release()
	e.bindGroup, err = e.dev.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Particle Step Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: e.particles, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: e.params, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: create step bind group: %w", particles.ErrConstruction, err)
	}
	return nil
}

func (e *ComputeEngine) Capacity() int  { return e.ledger.Capacity() }
func (e *ComputeEngine) LiveCount() int { return e.ledger.LiveCount() }

// Buffer is the record buffer the renderer draws with render.DeviceLayout.
func (e *ComputeEngine) Buffer() *wgpu.Buffer { return e.particles }

// Allocate uploads p into the next ring slot.
func (e *ComputeEngine) Allocate(p particles.Particle) int {
	slot := e.ledger.Allocate(p.Life)
	rec := []particles.DeviceParticle{p.Device()}
	if err := e.dev.Queue.WriteBuffer(e.particles, uint64(slot)*deviceParticleSize, wgpu.ToBytes(rec)); err != nil && e.err == nil {
		e.err = fmt.Errorf("upload particle %d: %w", slot, err)
	}
	return slot
}

// Step submits one dispatch over the whole pool. Queue order puts it after
// this frame's uploads and before the next render submission. Nothing is
// submitted while the pool is empty.
func (e *ComputeEngine) Step() error {
	if err := e.err; err != nil {
		e.err = nil
		return err
	}
	if e.ledger.LiveCount() == 0 {
		return nil
	}
	e.ledger.Step()

	encoder, err := e.dev.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(e.pipeline)
	pass.SetBindGroup(0, e.bindGroup, nil)
	pass.DispatchWorkgroups(render.Workgroups(e.ledger.Capacity()), 1, 1)
	err = pass.End()
	pass.Release()
	if err != nil {
		return fmt.Errorf("end compute pass: %w", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish command encoder: %w", err)
	}
	defer cmd.Release()
	e.dev.Queue.Submit(cmd)
	return nil
}

func (e *ComputeEngine) Release() {
	if e.bindGroup != nil {
		e.bindGroup.Release()
		e.bindGroup = nil
	}
	if e.pipeline != nil {
		e.pipeline.Release()
		e.pipeline = nil
	}
	if e.params != nil {
		e.params.Release()
		e.params = nil
	}
	if e.particles != nil {
		e.particles.Release()
		e.particles = nil
	}
}
