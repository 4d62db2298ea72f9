package sparks

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	KeyA int = iota
	KeyD
	KeyS
	KeyW
	KeySpace
	KeyEscape
	KeyRight
	KeyLeft
	KeyDown
	KeyUp
	keyCount
)

type InputModule struct{}

type Input struct {
	Pressed      [keyCount]bool
	JustPressed  [keyCount]bool
	JustReleased [keyCount]bool

	// CloseRequested is set once the window asks to close.
	CloseRequested bool

	WindowWidth, WindowHeight int
	// Resized reports a framebuffer size change during the last poll.
	Resized bool
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
	app.UseSystem(
		System(inputSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
}

// setKey records the state of key for this frame.
func (input *Input) setKey(key int, down bool) {
	input.JustPressed[key] = down && !input.Pressed[key]
	input.JustReleased[key] = !down && input.Pressed[key]
	input.Pressed[key] = down
}

// setSize records the framebuffer size. The first call only initializes it.
func (input *Input) setSize(width, height int) {
	known := input.WindowWidth != 0 || input.WindowHeight != 0
	input.Resized = known && (width != input.WindowWidth || height != input.WindowHeight)
	input.WindowWidth, input.WindowHeight = width, height
}

func inputSystem(s *WindowState, input *Input) {
	if s.window == nil {
		return
	}
	if s.pollEvents != nil {
		s.pollEvents()
	}

	for key, glfwKey := range keyToGlfw {
		input.setKey(key, s.window.GetKey(glfwKey) == glfw.Press)
	}

	input.setSize(s.window.GetFramebufferSize())
	s.WindowWidth, s.WindowHeight = input.WindowWidth, input.WindowHeight

	if s.window.ShouldClose() {
		input.CloseRequested = true
	}
}

var keyToGlfw = map[int]glfw.Key{
	KeyA:      glfw.KeyA,
	KeyD:      glfw.KeyD,
	KeyS:      glfw.KeyS,
	KeyW:      glfw.KeyW,
	KeySpace:  glfw.KeySpace,
	KeyEscape: glfw.KeyEscape,
	KeyRight:  glfw.KeyRight,
	KeyLeft:   glfw.KeyLeft,
	KeyDown:   glfw.KeyDown,
	KeyUp:     glfw.KeyUp,
}
