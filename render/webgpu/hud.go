package webgpu

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/sparks/particles"
	"github.com/gekko3d/sparks/render/hud"
	"github.com/gekko3d/sparks/render/shaders"
)

// HUD draws an Overlay on top of the particle pass.
type HUD struct {
	atlas   *hud.Atlas
	overlay *hud.Overlay

	texture   *wgpu.Texture
	view      *wgpu.TextureView
	sampler   *wgpu.Sampler
	pipeline  *wgpu.RenderPipeline
	bindGroup *wgpu.BindGroup
	vertices  *wgpu.Buffer

	count   uint32
	version uint64
	width   int
	height  int
}

func NewHUD(d *Device, atlas *hud.Atlas, overlay *hud.Overlay) (*HUD, error) {
	h := &HUD{atlas: atlas, overlay: overlay, version: ^uint64(0)}
	if err := h.setup(d); err != nil {
		h.Release()
		return nil, err
	}
	return h, nil
}

func (h *HUD) setup(d *Device) error {
	w, ht := h.atlas.Image.Bounds().Dx(), h.atlas.Image.Bounds().Dy()
	extent := wgpu.Extent3D{Width: uint32(w), Height: uint32(ht), DepthOrArrayLayers: 1}

	var err error
	h.texture, err = d.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "HUD Atlas",
		Size:          extent,
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("%w: create atlas texture: %w", particles.ErrConstruction, err)
	}
	err = d.Queue.WriteTexture(h.texture.AsImageCopy(), h.atlas.Image.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(w),
		RowsPerImage: uint32(ht),
	}, &extent)
	if err != nil {
		return fmt.Errorf("%w: upload atlas: %w", particles.ErrConstruction, err)
	}
	h.view, err = h.texture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("%w: create atlas view: %w", particles.ErrConstruction, err)
	}

	h.sampler, err = d.Device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("%w: create atlas sampler: %w", particles.ErrConstruction, err)
	}

	shader, err := d.createShader("HUD", shaders.HudWGSL)
	if err != nil {
		return err
	}
	defer shader.Release()

	h.pipeline, err = d.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "HUD Pipeline",
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(hud.Vertex{})),
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    d.Config.Format,
				Blend:     &alphaBlend,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: false,
			DepthCompare:      wgpu.CompareFunctionAlways,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: create HUD pipeline: %w", particles.ErrConstruction, err)
	}

	layout := h.pipeline.GetBindGroupLayout(0)
	defer layout.Release()
	h.bindGroup, err = d.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "HUD Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: h.view},
			{Binding: 1, Sampler: h.sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: create HUD bind group: %w", particles.ErrConstruction, err)
	}
	return nil
}

// prepare rebuilds the vertex buffer when the overlay or the surface size changed.
func (h *HUD) prepare(d *Device) error {
	w, ht := d.Size()
	if h.overlay.Version() == h.version && w == h.width && ht == h.height {
		return nil
	}
	h.version, h.width, h.height = h.overlay.Version(), w, ht

	vertices := h.atlas.BuildVertices(h.overlay.Items(), w, ht)
	h.count = uint32(len(vertices))
	if len(vertices) == 0 {
		return nil
	}

	data := wgpu.ToBytes(vertices)
	if h.vertices == nil || h.vertices.GetSize() < uint64(len(data)) {
		if h.vertices != nil {
			h.vertices.Release()
		}
		var err error
		h.vertices, err = d.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "HUD Vertices",
			Size:  uint64(len(data)) * 2,
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			h.count = 0
			return fmt.Errorf("create HUD vertex buffer: %w", err)
		}
	}
	if err := d.Queue.WriteBuffer(h.vertices, 0, data); err != nil {
		h.count = 0
		return fmt.Errorf("write HUD vertices: %w", err)
	}
	return nil
}

func (h *HUD) draw(pass *wgpu.RenderPassEncoder) {
	if h.count == 0 {
		return
	}
	pass.SetPipeline(h.pipeline)
	pass.SetBindGroup(0, h.bindGroup, nil)
	pass.SetVertexBuffer(0, h.vertices, 0, wgpu.WholeSize)
	pass.Draw(h.count, 1, 0, 0)
}

func (h *HUD) Release() {
	if h.vertices != nil {
		h.vertices.Release()
		h.vertices = nil
	}
	if h.bindGroup != nil {
		h.bindGroup.Release()
		h.bindGroup = nil
	}
	if h.pipeline != nil {
		h.pipeline.Release()
		h.pipeline = nil
	}
	if h.sampler != nil {
		h.sampler.Release()
		h.sampler = nil
	}
	if h.view != nil {
		h.view.Release()
		h.view = nil
	}
	if h.texture != nil {
		h.texture.Release()
		h.texture = nil
	}
}
