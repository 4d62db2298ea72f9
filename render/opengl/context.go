// Package opengl draws the particle pool through an OpenGL 4.3 core context
// and can run the particle step as a GLSL compute shader.
//
// Every function here must run on the thread that owns the current context.
package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/gekko3d/sparks/particles"
)

// Init loads the GL entry points for the current context and sets the fixed
// pipeline state: depth test, alpha blending, back faces culled with clockwise
// front faces.
func Init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("%w: gl init: %w", particles.ErrConstruction, err)
	}
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CW)
	return checkError("init state")
}

// Version returns the GL_VERSION string of the current context.
func Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

// glOffset converts a byte offset to unsafe.Pointer for VBO offset params.
func glOffset(n int) unsafe.Pointer { return unsafe.Pointer(uintptr(n)) }

func checkError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%s: gl error 0x%x", op, code)
	}
	return nil
}

// zeroBuffer allocates size bytes of zeroed storage for the buffer bound to target.
func zeroBuffer(target uint32, size int, usage uint32) {
	zero := make([]byte, size)
	gl.BufferData(target, size, gl.Ptr(zero), usage)
}
