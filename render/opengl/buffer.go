package opengl

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/gekko3d/sparks/particles"
)

var instanceSize = int(unsafe.Sizeof(particles.Instance{}))

// InstanceBuffer is a GL array buffer of Instance records whose write scope
// is a glMapBufferRange / glUnmapBuffer pair. Slots the caller does not touch
// keep their previous contents.
type InstanceBuffer struct {
	vbo    uint32
	n      int
	mapped bool
}

var _ particles.InstanceBuffer = (*InstanceBuffer)(nil)

func NewInstanceBuffer(capacity int) (*InstanceBuffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d", particles.ErrInvariant, capacity)
	}
	b := &InstanceBuffer{n: capacity}
	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	zeroBuffer(gl.ARRAY_BUFFER, capacity*instanceSize, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	if err := checkError("create instance buffer"); err != nil {
		return nil, fmt.Errorf("%w: %w", particles.ErrConstruction, err)
	}
	return b, nil
}

func (b *InstanceBuffer) Len() int { return b.n }

// VBO returns the buffer name the renderer binds.
func (b *InstanceBuffer) VBO() uint32 { return b.vbo }

func (b *InstanceBuffer) Map() ([]particles.Instance, error) {
	if b.mapped {
		return nil, particles.ErrBufferMapped
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	ptr := gl.MapBufferRange(gl.ARRAY_BUFFER, 0, b.n*instanceSize, gl.MAP_WRITE_BIT)
	if ptr == nil {
		return nil, checkErrorOr("map instance buffer")
	}
	b.mapped = true
	return unsafe.Slice((*particles.Instance)(ptr), b.n), nil
}

func (b *InstanceBuffer) Unmap() error {
	if !b.mapped {
		return particles.ErrBufferNotMapped
	}
	b.mapped = false
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	ok := gl.UnmapBuffer(gl.ARRAY_BUFFER)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	if !ok {
		return errors.New("unmap instance buffer: contents lost")
	}
	return nil
}

func (b *InstanceBuffer) Release() {
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
		b.vbo = 0
	}
}

// checkErrorOr reports the pending GL error for op, or a generic failure when none is set.
func checkErrorOr(op string) error {
	if err := checkError(op); err != nil {
		return err
	}
	return errors.New(op + ": failed")
}
