// Package webgpu draws the particle pool through wgpu, and can run the
// particle step as a compute kernel on the same device.
package webgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gekko3d/sparks/particles"
)

const depthFormat = wgpu.TextureFormatDepth24Plus

// Device owns the surface, the logical device and the depth target.
type Device struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue
	Config *wgpu.SurfaceConfiguration

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter

	depth     *wgpu.Texture
	depthView *wgpu.TextureView
}

// NewDevice wraps win into a surface and configures it for vsync presentation
// at the framebuffer size.
func NewDevice(win *glfw.Window) (*Device, error) {
	d := &Device{instance: wgpu.CreateInstance(nil)}
	d.surface = d.instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(win))

	adapter, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: d.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("%w: request adapter: %w", particles.ErrConstruction, err)
	}
	d.adapter = adapter

	d.Device, err = adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "Particle Device"})
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("%w: request device: %w", particles.ErrConstruction, err)
	}
	d.Queue = d.Device.GetQueue()

	width, height := win.GetFramebufferSize()
	caps := d.surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		d.Release()
		return nil, fmt.Errorf("%w: surface reports no formats", particles.ErrConstruction)
	}
	d.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(max(width, 1)),
		Height:      uint32(max(height, 1)),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	d.surface.Configure(adapter, d.Device, d.Config)

	if err := d.createDepth(); err != nil {
		d.Release()
		return nil, err
	}
	return d, nil
}

// Size returns the configured surface size in pixels.
func (d *Device) Size() (int, int) {
	return int(d.Config.Width), int(d.Config.Height)
}

// Resize reconfigures the surface and depth target. Zero sizes, as reported
// for a minimized window, are ignored.
func (d *Device) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if uint32(width) == d.Config.Width && uint32(height) == d.Config.Height {
		return nil
	}
	d.Config.Width = uint32(width)
	d.Config.Height = uint32(height)
	d.surface.Configure(d.adapter, d.Device, d.Config)
	return d.createDepth()
}

func (d *Device) createDepth() error {
	d.releaseDepth()

	tex, err := d.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth",
		Size:          wgpu.Extent3D{Width: d.Config.Width, Height: d.Config.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        depthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("%w: create depth texture: %w", particles.ErrConstruction, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("%w: create depth view: %w", particles.ErrConstruction, err)
	}
	d.depth, d.depthView = tex, view
	return nil
}

func (d *Device) releaseDepth() {
	if d.depthView != nil {
		d.depthView.Release()
		d.depthView = nil
	}
	if d.depth != nil {
		d.depth.Release()
		d.depth = nil
	}
}

func (d *Device) createShader(label, code string) (*wgpu.ShaderModule, error) {
	mod, err := d.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: code},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create shader %q: %w", particles.ErrConstruction, label, err)
	}
	return mod, nil
}

func (d *Device) Release() {
	d.releaseDepth()
	if d.Device != nil {
		d.Device.Release()
		d.Device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.surface != nil {
		d.surface.Release()
		d.surface = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}
