package webgpu

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/sparks/particles"
)

// InstanceBuffer stages Instance records in host memory and uploads the whole
// view to a vertex buffer when the write scope ends. Queue writes land before
// any later submission, so the next draw sees the frame's state.
type InstanceBuffer struct {
	*particles.HostBuffer

	gpu   *wgpu.Buffer
	queue *wgpu.Queue
}

var _ particles.InstanceBuffer = (*InstanceBuffer)(nil)

func NewInstanceBuffer(d *Device, capacity int) (*InstanceBuffer, error) {
	size := uint64(capacity) * uint64(unsafe.Sizeof(particles.Instance{}))
	gpu, err := d.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Particle Instances",
		Size:  size,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance buffer: %w", particles.ErrConstruction, err)
	}

	b := &InstanceBuffer{
		HostBuffer: particles.NewHostBuffer(capacity),
		gpu:        gpu,
		queue:      d.Queue,
	}
	b.OnUnmap = b.upload
	return b, nil
}

func (b *InstanceBuffer) upload(data []particles.Instance) error {
	return b.queue.WriteBuffer(b.gpu, 0, wgpu.ToBytes(data))
}

// Buffer returns the device buffer the renderer binds.
func (b *InstanceBuffer) Buffer() *wgpu.Buffer { return b.gpu }

func (b *InstanceBuffer) Release() {
	if b.gpu != nil {
		b.gpu.Release()
		b.gpu = nil
	}
}
