package sparks

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gekko3d/sparks/particles"
	"github.com/gekko3d/sparks/render"
	"github.com/gekko3d/sparks/render/hud"
	"github.com/gekko3d/sparks/render/webgpu"
)

// hudFontSize is the overlay glyph size in pixels.
const hudFontSize = 18

// WebGPUModule draws the pool through wgpu on the shared window's surface.
type WebGPUModule struct {
	Config Config
}

type webgpuBackend struct {
	dev      *webgpu.Device
	engine   particles.UpdateEngine
	renderer *webgpu.Renderer
	release  []func()
}

func (b *webgpuBackend) Engine() particles.UpdateEngine { return b.engine }
func (b *webgpuBackend) Render() error                  { return b.renderer.Render() }
func (b *webgpuBackend) Present()                       { b.renderer.Present() }

func (b *webgpuBackend) Resize(width, height int) error {
	return b.renderer.Resize(width, height)
}

func (b *webgpuBackend) Release() {
	for i := len(b.release) - 1; i >= 0; i-- {
		b.release[i]()
	}
	b.release = nil
	if b.dev != nil {
		b.dev.Release()
		b.dev = nil
	}
}

func (m WebGPUModule) Install(app *App, cmd *Commands) {
	ws := resource[WindowState](app)
	if ws == nil || ws.Native() == nil {
		app.fail(fmt.Errorf("%w: webgpu renderer needs a window", particles.ErrConstruction))
		return
	}
	mesh, err := particleMesh(app)
	if err != nil {
		app.fail(err)
		return
	}

	b, err := newWebGPUBackend(ws.Native(), m.Config, mesh, resource[hud.Overlay](app))
	if err != nil {
		app.fail(err)
		return
	}
	installBackend(app, RendererWebGPU, m.Config.Variant, b)
}

func newWebGPUBackend(win *glfw.Window, cfg Config, mesh particles.Mesh, overlay *hud.Overlay) (*webgpuBackend, error) {
	dev, err := webgpu.NewDevice(win)
	if err != nil {
		return nil, err
	}
	b := &webgpuBackend{dev: dev}

	var (
		instances *wgpu.Buffer
		layout    render.InstanceLayout
	)
	switch cfg.Variant {
	case VariantCompute:
		eng, err := webgpu.NewComputeEngine(dev, cfg.Capacity, cfg.Physics())
		if err != nil {
			b.Release()
			return nil, err
		}
		b.release = append(b.release, eng.Release)
		b.engine, instances, layout = eng, eng.Buffer(), render.DeviceLayout
	default:
		buf, err := webgpu.NewInstanceBuffer(dev, cfg.Capacity)
		if err != nil {
			b.Release()
			return nil, err
		}
		b.release = append(b.release, buf.Release)
		eng, err := particles.NewCPUEngine(cfg.Capacity, buf, cfg.Physics())
		if err != nil {
			b.Release()
			return nil, err
		}
		b.engine, instances, layout = eng, buf.Buffer(), render.ProjectedLayout
	}

	var overlayHUD *webgpu.HUD
	if cfg.HUD && overlay != nil {
		atlas, err := hud.NewAtlas(hudFontSize)
		if err != nil {
			b.Release()
			return nil, fmt.Errorf("%w: %w", particles.ErrConstruction, err)
		}
		if overlayHUD, err = webgpu.NewHUD(dev, atlas, overlay); err != nil {
			b.Release()
			return nil, err
		}
		b.release = append(b.release, overlayHUD.Release)
	}

	b.renderer, err = webgpu.NewRenderer(dev, webgpu.RendererOptions{
		Mesh:      mesh,
		Instances: instances,
		Layout:    layout,
		Capacity:  cfg.Capacity,
		Clear:     cfg.Clear,
		HUD:       overlayHUD,
	})
	if err != nil {
		b.Release()
		return nil, err
	}
	b.release = append(b.release, b.renderer.Release)
	return b, nil
}
