package sparks

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gekko3d/sparks/particles"
)

// WindowAPI selects the client API the window is created for.
type WindowAPI int

const (
	// WindowAPINone creates a window without a GL context, for WebGPU surfaces.
	WindowAPINone WindowAPI = iota
	// WindowAPIOpenGL creates a 4.3 core context and makes it current.
	WindowAPIOpenGL
)

// platformWindow is the part of *glfw.Window the app drives each frame.
type platformWindow interface {
	GetKey(key glfw.Key) glfw.Action
	ShouldClose() bool
	GetFramebufferSize() (width, height int)
	Destroy()
}

// WindowState is the shared window resource. Backends reach the native
// window through Native.
type WindowState struct {
	window     platformWindow
	windowGlfw *glfw.Window
	pollEvents func()
	terminate  func()

	WindowWidth  int
	WindowHeight int
	windowTitle  string
	API          WindowAPI
}

// Native returns the GLFW window, or nil for a window not backed by GLFW.
func (s *WindowState) Native() *glfw.Window { return s.windowGlfw }

func (s *WindowState) Title() string { return s.windowTitle }

func (s *WindowState) destroy() {
	if s.window != nil {
		s.window.Destroy()
		s.window = nil
	}
	if s.terminate != nil {
		s.terminate()
		s.terminate = nil
	}
}

func createWindowState(width, height int, title string, api WindowAPI) (*WindowState, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("%w: init glfw: %w", particles.ErrConstruction, err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	switch api {
	case WindowAPIOpenGL:
		glfw.WindowHint(glfw.ContextVersionMajor, 4)
		glfw.WindowHint(glfw.ContextVersionMinor, 3)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	default:
		glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	}

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("%w: create window: %w", particles.ErrConstruction, err)
	}
	if api == WindowAPIOpenGL {
		win.MakeContextCurrent()
		glfw.SwapInterval(1)
	}

	fbWidth, fbHeight := win.GetFramebufferSize()
	return &WindowState{
		window:       win,
		windowGlfw:   win,
		pollEvents:   glfw.PollEvents,
		terminate:    glfw.Terminate,
		WindowWidth:  fbWidth,
		WindowHeight: fbHeight,
		windowTitle:  title,
		API:          api,
	}, nil
}

// WindowModule ensures a single shared window (WindowState) exists.
// Install is idempotent: if a WindowState resource already exists, it is reused.
type WindowModule struct {
	Width  int
	Height int
	Title  string
	API    WindowAPI
}

func (m WindowModule) Install(app *App, cmd *Commands) {
	if hasResource[WindowState](app) {
		return
	}

	width, height, title := m.Width, m.Height, m.Title
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "Sparks"
	}

	ws, err := createWindowState(width, height, title, m.API)
	if err != nil {
		app.fail(err)
		return
	}
	app.addResources(ws)
	app.Logger().Infof("Created window %dx%d '%s' (framebuffer %dx%d)", width, height, title, ws.WindowWidth, ws.WindowHeight)

	app.UseSystem(
		System(windowTeardownSystem).
			InStage(Finale).
			InState(OnExit(StateQuit)),
	)
}

func windowTeardownSystem(ws *WindowState) {
	ws.destroy()
}
