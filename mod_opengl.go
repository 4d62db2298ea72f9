package sparks

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gekko3d/sparks/particles"
	"github.com/gekko3d/sparks/render"
	"github.com/gekko3d/sparks/render/opengl"
)

// OpenGLModule draws the pool with a GL 4.3 core context owned by the shared
// window. The window must be created with WindowAPIOpenGL.
type OpenGLModule struct {
	Config Config
}

type openglBackend struct {
	engine   particles.UpdateEngine
	renderer *opengl.Renderer
	release  []func()
}

func (b *openglBackend) Engine() particles.UpdateEngine { return b.engine }
func (b *openglBackend) Render() error                  { return b.renderer.Render() }
func (b *openglBackend) Present()                       { b.renderer.Present() }

func (b *openglBackend) Resize(width, height int) error {
	b.renderer.Resize(width, height)
	return nil
}

func (b *openglBackend) Release() {
	for i := len(b.release) - 1; i >= 0; i-- {
		b.release[i]()
	}
	b.release = nil
}

func (m OpenGLModule) Install(app *App, cmd *Commands) {
	ws := resource[WindowState](app)
	if ws == nil || ws.Native() == nil || ws.API != WindowAPIOpenGL {
		app.fail(fmt.Errorf("%w: opengl renderer needs a window with a GL context", particles.ErrConstruction))
		return
	}
	mesh, err := particleMesh(app)
	if err != nil {
		app.fail(err)
		return
	}

	if err := opengl.Init(); err != nil {
		app.fail(err)
		return
	}
	app.Logger().Infof("OpenGL %s", opengl.Version())

	b, err := newOpenGLBackend(ws.Native(), ws.WindowWidth, ws.WindowHeight, m.Config, mesh)
	if err != nil {
		app.fail(err)
		return
	}
	installBackend(app, RendererOpenGL, m.Config.Variant, b)
}

func newOpenGLBackend(win *glfw.Window, width, height int, cfg Config, mesh particles.Mesh) (*openglBackend, error) {
	b := &openglBackend{}
	opts := opengl.RendererOptions{
		Mesh:     mesh,
		Capacity: cfg.Capacity,
		Clear:    cfg.Clear,
		Width:    width,
		Height:   height,
	}

	switch cfg.Variant {
	case VariantCompute:
		eng, err := opengl.NewComputeEngine(cfg.Capacity, cfg.Physics())
		if err != nil {
			return nil, err
		}
		b.release = append(b.release, eng.Release)
		b.engine = eng
		opts.Instances, opts.Layout, opts.Barrier = eng.SSBO(), render.DeviceLayout, true
	default:
		buf, err := opengl.NewInstanceBuffer(cfg.Capacity)
		if err != nil {
			return nil, err
		}
		b.release = append(b.release, buf.Release)
		eng, err := particles.NewCPUEngine(cfg.Capacity, buf, cfg.Physics())
		if err != nil {
			b.Release()
			return nil, err
		}
		b.engine = eng
		opts.Instances, opts.Layout = buf.VBO(), render.ProjectedLayout
	}

	r, err := opengl.NewRenderer(win, opts)
	if err != nil {
		b.Release()
		return nil, err
	}
	b.renderer = r
	b.release = append(b.release, r.Release)
	return b, nil
}
