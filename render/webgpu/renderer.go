package webgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/sparks/particles"
	"github.com/gekko3d/sparks/render"
	"github.com/gekko3d/sparks/render/shaders"
)

// RendererOptions configures the instanced particle pass.
type RendererOptions struct {
	Mesh      particles.Mesh
	Instances *wgpu.Buffer // one record per slot, laid out as Layout
	Layout    render.InstanceLayout
	Capacity  int
	Clear     render.Color
	HUD       *HUD // optional overlay drawn after the particles
}

// Renderer draws every slot of the pool with one instanced draw call and
// presents the result.
type Renderer struct {
	dev *Device

	pipeline  *wgpu.RenderPipeline
	camera    *wgpu.Buffer
	bindGroup *wgpu.BindGroup
	mesh      *wgpu.Buffer
	instances *wgpu.Buffer

	meshVertices uint32
	capacity     uint32
	clear        wgpu.Color
	hud          *HUD

	frame *wgpu.Texture // acquired by Render, released by Present
}

var _ particles.Renderer = (*Renderer)(nil)

func NewRenderer(d *Device, opts RendererOptions) (*Renderer, error) {
	if err := opts.Mesh.Validate(); err != nil {
		return nil, err
	}
	if opts.Capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d", particles.ErrInvariant, opts.Capacity)
	}
	if opts.Instances == nil {
		return nil, fmt.Errorf("%w: nil instance buffer", particles.ErrInvariant)
	}
	if want := uint64(opts.Capacity * opts.Layout.Stride); opts.Instances.GetSize() < want {
		return nil, fmt.Errorf("%w: instance buffer holds %d bytes, need %d", particles.ErrInvariant, opts.Instances.GetSize(), want)
	}

	r := &Renderer{
		dev:          d,
		instances:    opts.Instances,
		meshVertices: uint32(len(opts.Mesh.Vertices)),
		capacity:     uint32(opts.Capacity),
		clear:        wgpu.Color{R: opts.Clear.R, G: opts.Clear.G, B: opts.Clear.B, A: opts.Clear.A},
		hud:          opts.HUD,
	}

	var err error
	r.mesh, err = d.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Particle Mesh",
		Contents: wgpu.ToBytes(opts.Mesh.Floats()),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create mesh buffer: %w", particles.ErrConstruction, err)
	}

	r.camera, err = d.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Camera",
		Size:  64,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		r.Release()
		return nil, fmt.Errorf("%w: create camera buffer: %w", particles.ErrConstruction, err)
	}
	if err := r.writeCamera(); err != nil {
		r.Release()
		return nil, fmt.Errorf("%w: %w", particles.ErrConstruction, err)
	}

	if err := r.createPipeline(opts.Layout); err != nil {
		r.Release()
		return nil, err
	}

	layout := r.pipeline.GetBindGroupLayout(0)
	defer layout.Release()
	r.bindGroup, err = d.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Camera Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: r.camera, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		r.Release()
		return nil, fmt.Errorf("%w: create camera bind group: %w", particles.ErrConstruction, err)
	}
	return r, nil
}

func (r *Renderer) createPipeline(layout render.InstanceLayout) error {
	shader, err := r.dev.createShader("Particles", shaders.ParticlesWGSL)
	if err != nil {
		return err
	}
	defer shader.Release()

	r.pipeline, err = r.dev.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Particle Pipeline",
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: 3 * 4,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
					},
				},
				{
					ArrayStride: uint64(layout.Stride),
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: uint64(layout.CenterOffset), ShaderLocation: 1},
						{Format: wgpu.VertexFormatFloat32, Offset: uint64(layout.SizeOffset), ShaderLocation: 2},
						{Format: wgpu.VertexFormatFloat32x3, Offset: uint64(layout.ColorOffset), ShaderLocation: 3},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    r.dev.Config.Format,
				Blend:     &alphaBlend,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCW,
			CullMode:  wgpu.CullModeBack,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLessEqual,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: create particle pipeline: %w", particles.ErrConstruction, err)
	}
	return nil
}

var alphaBlend = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
}

func (r *Renderer) writeCamera() error {
	vp := render.ViewProjection(r.dev.Size())
	if err := r.dev.Queue.WriteBuffer(r.camera, 0, wgpu.ToBytes(vp[:])); err != nil {
		return fmt.Errorf("write camera: %w", err)
	}
	return nil
}

// Resize follows a framebuffer size change.
func (r *Renderer) Resize(width, height int) error {
	w, h := r.dev.Size()
	if err := r.dev.Resize(width, height); err != nil {
		return err
	}
	if nw, nh := r.dev.Size(); nw == w && nh == h {
		return nil
	}
	return r.writeCamera()
}

// Render records and submits the particle pass, plus the overlay when one is
// attached. The frame is shown by the following Present.
func (r *Renderer) Render() error {
	r.releaseFrame()

	tex, err := r.dev.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquire surface texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("create surface view: %w", err)
	}
	defer view.Release()

	if r.hud != nil {
		if err := r.hud.prepare(r.dev); err != nil {
			tex.Release()
			return err
		}
	}

	encoder, err := r.dev.Device.CreateCommandEncoder(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: r.clear,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.dev.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1,
		},
	})
	pass.SetPipeline(r.pipeline)
	pass.SetBindGroup(0, r.bindGroup, nil)
	pass.SetVertexBuffer(0, r.mesh, 0, wgpu.WholeSize)
	pass.SetVertexBuffer(1, r.instances, 0, wgpu.WholeSize)
	pass.Draw(r.meshVertices, r.capacity, 0, 0)
	if r.hud != nil {
		r.hud.draw(pass)
	}
	err = pass.End()
	pass.Release()
	if err != nil {
		tex.Release()
		return fmt.Errorf("end render pass: %w", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("finish command encoder: %w", err)
	}
	defer cmd.Release()
	r.dev.Queue.Submit(cmd)

	r.frame = tex
	return nil
}

// Present shows the frame submitted by the last Render.
func (r *Renderer) Present() {
	if r.frame == nil {
		return
	}
	r.dev.surface.Present()
	r.releaseFrame()
}

func (r *Renderer) releaseFrame() {
	if r.frame != nil {
		r.frame.Release()
		r.frame = nil
	}
}

func (r *Renderer) Release() {
	r.releaseFrame()
	if r.bindGroup != nil {
		r.bindGroup.Release()
		r.bindGroup = nil
	}
	if r.pipeline != nil {
		r.pipeline.Release()
		r.pipeline = nil
	}
	if r.camera != nil {
		r.camera.Release()
		r.camera = nil
	}
	if r.mesh != nil {
		r.mesh.Release()
		r.mesh = nil
	}
}
