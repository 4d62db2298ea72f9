// Package render holds what the GPU backends share: instance attribute
// layouts, the camera projection and compute dispatch sizing.
package render

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/sparks/particles"
)

// WorkgroupSize is the local size of the particle step kernels.
const WorkgroupSize = 256

// InstanceLayout describes where the per-instance attributes sit in one record
// of the buffer the renderer draws from.
type InstanceLayout struct {
	Stride       int
	CenterOffset int
	SizeOffset   int
	ColorOffset  int
}

var (
	// ProjectedLayout is the CPU variant's Instance record.
	ProjectedLayout = InstanceLayout{
		Stride:       int(unsafe.Sizeof(particles.Instance{})),
		CenterOffset: int(unsafe.Offsetof(particles.Instance{}.Center)),
		SizeOffset:   int(unsafe.Offsetof(particles.Instance{}.Size)),
		ColorOffset:  int(unsafe.Offsetof(particles.Instance{}.Color)),
	}

	// DeviceLayout is the compute variant's DeviceParticle record, drawn in place.
	DeviceLayout = InstanceLayout{
		Stride:       int(unsafe.Sizeof(particles.DeviceParticle{})),
		CenterOffset: int(unsafe.Offsetof(particles.DeviceParticle{}.Center)),
		SizeOffset:   int(unsafe.Offsetof(particles.DeviceParticle{}.Size)),
		ColorOffset:  int(unsafe.Offsetof(particles.DeviceParticle{}.Color)),
	}
)

// ViewProjection maps world space onto the framebuffer. The x axis spans
// [-1, 1]; the y axis is scaled by the aspect ratio so quads stay square.
func ViewProjection(width, height int) mgl32.Mat4 {
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	return mgl32.Ortho(-1, 1, -1/aspect, 1/aspect, -1, 1)
}

// Workgroups returns the dispatch size that covers capacity slots.
func Workgroups(capacity int) uint32 {
	return uint32(capacity/WorkgroupSize + 1)
}

// Color is an RGBA clear color.
type Color struct {
	R, G, B, A float64
}
