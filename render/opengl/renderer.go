package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/gekko3d/sparks/particles"
	"github.com/gekko3d/sparks/render"
	"github.com/gekko3d/sparks/render/shaders"
)

// Swapper presents the back buffer; *glfw.Window satisfies it.
type Swapper interface {
	SwapBuffers()
}

// RendererOptions configures the instanced particle draw.
type RendererOptions struct {
	Mesh      particles.Mesh
	Instances uint32 // buffer name holding Capacity records laid out as Layout
	Layout    render.InstanceLayout
	Capacity  int
	Clear     render.Color
	Width     int
	Height    int

	// Barrier is issued before drawing when the instance buffer is written by
	// a compute shader.
	Barrier bool
}

type Renderer struct {
	program  uint32
	vao      uint32
	meshVBO  uint32
	viewProj int32

	meshVertices int32
	capacity     int32
	clear        render.Color
	barrier      bool
	swap         Swapper
}

var _ particles.Renderer = (*Renderer)(nil)

func NewRenderer(swap Swapper, opts RendererOptions) (*Renderer, error) {
	if err := opts.Mesh.Validate(); err != nil {
		return nil, err
	}
	if opts.Capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d", particles.ErrInvariant, opts.Capacity)
	}

	program, err := linkProgram(map[uint32]string{
		gl.VERTEX_SHADER:   shaders.ParticlesVert,
		gl.FRAGMENT_SHADER: shaders.ParticlesFrag,
	})
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		program:      program,
		viewProj:     uniformLocation(program, "uViewProj"),
		meshVertices: int32(len(opts.Mesh.Vertices)),
		capacity:     int32(opts.Capacity),
		clear:        opts.Clear,
		barrier:      opts.Barrier,
		swap:         swap,
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	mesh := opts.Mesh.Floats()
	gl.GenBuffers(1, &r.meshVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.meshVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh)*4, gl.Ptr(mesh), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, glOffset(0))
	gl.VertexAttribDivisor(0, 0)

	stride := int32(opts.Layout.Stride)
	gl.BindBuffer(gl.ARRAY_BUFFER, opts.Instances)
	// aCenter
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, glOffset(opts.Layout.CenterOffset))
	gl.VertexAttribDivisor(1, 1)
	// aSize
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 1, gl.FLOAT, false, stride, glOffset(opts.Layout.SizeOffset))
	gl.VertexAttribDivisor(2, 1)
	// aColor
	gl.EnableVertexAttribArray(3)
	gl.VertexAttribPointer(3, 3, gl.FLOAT, false, stride, glOffset(opts.Layout.ColorOffset))
	gl.VertexAttribDivisor(3, 1)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.Resize(opts.Width, opts.Height)
	if err := checkError("create renderer"); err != nil {
		r.Release()
		return nil, fmt.Errorf("%w: %w", particles.ErrConstruction, err)
	}
	return r, nil
}

// Resize updates the viewport and projection for a new framebuffer size.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	gl.Viewport(0, 0, int32(width), int32(height))
	vp := render.ViewProjection(width, height)
	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.viewProj, 1, false, &vp[0])
	gl.UseProgram(0)
}

// Render clears the framebuffer and draws every slot in one instanced call.
func (r *Renderer) Render() error {
	gl.ClearColor(float32(r.clear.R), float32(r.clear.G), float32(r.clear.B), float32(r.clear.A))
	gl.ClearDepth(1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if r.barrier {
		gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT | gl.VERTEX_ATTRIB_ARRAY_BARRIER_BIT)
	}

	gl.UseProgram(r.program)
	gl.BindVertexArray(r.vao)
	gl.DrawArraysInstanced(gl.TRIANGLES, 0, r.meshVertices, r.capacity)
	gl.BindVertexArray(0)
	gl.UseProgram(0)
	return checkError("draw particles")
}

// Present swaps the back buffer in.
func (r *Renderer) Present() {
	if r.swap != nil {
		r.swap.SwapBuffers()
	}
}

func (r *Renderer) Release() {
	if r.meshVBO != 0 {
		gl.DeleteBuffers(1, &r.meshVBO)
		r.meshVBO = 0
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		r.vao = 0
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
}
