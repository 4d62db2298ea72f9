package sparks

import (
	"github.com/gekko3d/sparks/particles"
)

// RendererName identifies a concrete renderer module.
// Keep names aligned with ensureSingleRenderer tags.
type RendererName string

const (
	RendererWebGPU RendererName = "webgpu"
	RendererOpenGL RendererName = "opengl"
)

// Backend is one constructed renderer plus the update engine feeding it.
type Backend interface {
	Engine() particles.UpdateEngine
	Render() error
	// Present shows the frame submitted by the last Render.
	Present()
	Resize(width, height int) error
	Release()
}

// Graphics is the resource the frame systems draw through.
type Graphics struct {
	Name    RendererName
	Variant Variant
	Backend Backend
}

// UseRenderer installs exactly one renderer module, enforcing exclusivity via
// ensureSingleRenderer.
// Usage:
//
//	app.UseRenderer(RendererWebGPU, WebGPUModule{Config: cfg})
func (app *App) UseRenderer(name RendererName, mod Module) *App {
	if app.err != nil {
		return app
	}
	if err := ensureSingleRenderer(app, string(name)); err != nil {
		app.fail(err)
		return app
	}
	app.Logger().Infof("Renderer selected: %s", name)
	app.UseModules(mod)
	return app
}

// rendererModule returns the module that builds cfg.Renderer.
func rendererModule(cfg Config) Module {
	if cfg.Renderer == RendererOpenGL {
		return OpenGLModule{Config: cfg}
	}
	return WebGPUModule{Config: cfg}
}

// installBackend publishes b as the Graphics resource and releases it when the
// app quits, before the window goes away.
func installBackend(app *App, name RendererName, variant Variant, b Backend) {
	app.addResources(&Graphics{Name: name, Variant: variant, Backend: b})
	app.UseSystem(
		System(graphicsReleaseSystem).
			InStage(PostRender).
			InState(OnExit(StateQuit)),
	)
	eng := b.Engine()
	app.Logger().Infof("Backend %s/%s ready, capacity %d", name, variant, eng.Capacity())
}

func graphicsReleaseSystem(gfx *Graphics) {
	gfx.Backend.Release()
}
