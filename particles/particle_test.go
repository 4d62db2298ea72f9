package particles

import (
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestRecordLayouts(t *testing.T) {
	assert.Equal(t, uintptr(32), unsafe.Sizeof(Instance{}))
	assert.Equal(t, uintptr(16), unsafe.Offsetof(Instance{}.Color))
	assert.Equal(t, uintptr(64), unsafe.Sizeof(DeviceParticle{}))
	assert.Equal(t, uintptr(48), unsafe.Offsetof(DeviceParticle{}.Size))
	assert.Equal(t, uintptr(32), unsafe.Sizeof(StepUniforms{}))
}

func TestProject_DeadParticleHasZeroSize(t *testing.T) {
	p := Particle{Center: mgl32.Vec3{1, 2, 3}, Color: mgl32.Vec3{0, 1, 0}, Size: 0.5, Life: 1}
	inst := p.Project()
	assert.Equal(t, [3]float32{1, 2, 3}, inst.Center)
	assert.Equal(t, [3]float32{0, 1, 0}, inst.Color)
	assert.Equal(t, float32(0.5), inst.Size)

	p.Life = 0
	assert.Zero(t, p.Project().Size)
}

func TestDevice_PadsToVec4(t *testing.T) {
	p := Particle{
		Center:   mgl32.Vec3{1, 2, 3},
		Velocity: mgl32.Vec3{4, 5, 6},
		Color:    mgl32.Vec3{0.1, 0.2, 0.3},
		Size:     0.25,
		Life:     7,
	}
	d := p.Device()
	assert.Equal(t, [4]float32{1, 2, 3, 1}, d.Center)
	assert.Equal(t, [4]float32{4, 5, 6, 0}, d.Velocity)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1}, d.Color)
	assert.Equal(t, float32(0.25), d.Size)
	assert.Equal(t, uint32(7), d.Life)
}

func TestNewStepUniforms(t *testing.T) {
	u := NewStepUniforms(mgl32.Vec3{0, -0.001, 0}, 0.0001, 4096)
	assert.Equal(t, [4]float32{0, -0.001, 0, 0}, u.Gravity)
	assert.Equal(t, float32(0.0001), u.SizeDecay)
	assert.Equal(t, uint32(4096), u.Count)
}

func TestQuadMesh(t *testing.T) {
	m := QuadMesh(1)
	assert.NoError(t, m.Validate())
	assert.Len(t, m.Vertices, 6)
	assert.Equal(t, [3]float32{1, 1, 0}, m.Vertices[0].Position)
	assert.Equal(t, [3]float32{-1, -1, 0}, m.Vertices[2].Position)

	f := m.Floats()
	assert.Len(t, f, 18)
	assert.Equal(t, []float32{1, 1, 0, 1, -1, 0}, f[:6])
}

func TestMesh_ValidateRejectsNonTriangleLists(t *testing.T) {
	assert.ErrorIs(t, Mesh{}.Validate(), ErrInvariant)
	assert.ErrorIs(t, Mesh{Vertices: make([]Vertex, 4)}.Validate(), ErrInvariant)
}

func TestDevice_DeadParticleHasZeroSize(t *testing.T) {
	p := Particle{Center: mgl32.Vec3{1, 2, 3}, Size: 0.004, Life: 0}
	d := p.Device()
	assert.Zero(t, d.Size, "the kernel never touches a dead record, so it must upload invisible")
	assert.Zero(t, d.Life)
	assert.Equal(t, p.Project().Size, d.Size)
	assert.Equal(t, [4]float32{1, 2, 3, 1}, d.Center)
}
