package particles

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBuffer records how the engine drives the map/unmap protocol.
type testBuffer struct {
	data     []Instance
	mapped   bool
	maps     int
	unmaps   int
	mapErr   error
	unmapErr error
}

func newTestBuffer(n int) *testBuffer { return &testBuffer{data: make([]Instance, n)} }

func (b *testBuffer) Len() int { return len(b.data) }

func (b *testBuffer) Map() ([]Instance, error) {
	if b.mapErr != nil {
		return nil, b.mapErr
	}
	if b.mapped {
		return nil, ErrBufferMapped
	}
	b.mapped = true
	b.maps++
	return b.data, nil
}

func (b *testBuffer) Unmap() error {
	b.mapped = false
	b.unmaps++
	return b.unmapErr
}

func newTestEngine(t *testing.T, capacity int) (*CPUEngine, *testBuffer) {
	t.Helper()
	buf := newTestBuffer(capacity)
	eng, err := NewCPUEngine(capacity, buf, testPhysics)
	require.NoError(t, err)
	return eng, buf
}

func TestNewCPUEngine_Invariants(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		buf      InstanceBuffer
		physics  Physics
	}{
		{"zero capacity", 0, newTestBuffer(0), testPhysics},
		{"nil buffer", 4, nil, testPhysics},
		{"short buffer", 4, newTestBuffer(3), testPhysics},
		{"long buffer", 4, newTestBuffer(5), testPhysics},
		{"negative decay", 4, newTestBuffer(4), Physics{SizeDecay: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, err := NewCPUEngine(tt.capacity, tt.buf, tt.physics)
			require.ErrorIs(t, err, ErrInvariant)
			assert.Nil(t, eng)
		})
	}
}

func TestCPUEngine_StepMapsOncePerTick(t *testing.T) {
	eng, buf := newTestEngine(t, 8)
	eng.Allocate(particleWithLife(3))

	for i := 0; i < 3; i++ {
		require.NoError(t, eng.Step())
	}
	assert.Equal(t, 3, buf.maps)
	assert.Equal(t, 3, buf.unmaps)
	assert.False(t, buf.mapped)

	require.NoError(t, eng.Step())
	assert.Equal(t, 3, buf.maps, "an empty pool leaves the buffer alone")
}

func TestCPUEngine_StepPropagatesMapError(t *testing.T) {
	eng, buf := newTestEngine(t, 2)
	eng.Allocate(particleWithLife(3))
	buf.mapErr = errors.New("device lost")

	err := eng.Step()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "map instance buffer")
	assert.Equal(t, uint32(3), eng.Store().At(0).Life, "nothing advances without a view")
	assert.Zero(t, buf.unmaps)
}

func TestCPUEngine_StepPropagatesUnmapError(t *testing.T) {
	eng, buf := newTestEngine(t, 2)
	eng.Allocate(particleWithLife(3))
	buf.unmapErr = errors.New("flush failed")

	err := eng.Step()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmap instance buffer")
	assert.Equal(t, uint32(2), eng.Store().At(0).Life)
}

func TestWithMapped_UnmapsOnPanic(t *testing.T) {
	buf := newTestBuffer(2)

	assert.Panics(t, func() {
		_ = WithMapped(buf, func([]Instance) { panic("boom") })
	})
	assert.False(t, buf.mapped)
	assert.Equal(t, 1, buf.unmaps)
}

func TestWithMapped_ViewCoversWholeBuffer(t *testing.T) {
	buf := newTestBuffer(5)
	var got int
	require.NoError(t, WithMapped(buf, func(view []Instance) {
		got = len(view)
		view[4].Size = 2
	}))
	assert.Equal(t, 5, got)
	assert.Equal(t, float32(2), buf.data[4].Size)
}

func TestHostBuffer_MapProtocol(t *testing.T) {
	b := NewHostBuffer(3)
	assert.Equal(t, 3, b.Len())

	require.ErrorIs(t, b.Unmap(), ErrBufferNotMapped)

	view, err := b.Map()
	require.NoError(t, err)
	assert.True(t, b.Mapped())
	_, err = b.Map()
	require.ErrorIs(t, err, ErrBufferMapped)

	view[1] = Instance{Size: 1}
	require.NoError(t, b.Unmap())
	assert.False(t, b.Mapped())
	assert.Equal(t, float32(1), b.Snapshot()[1].Size)
}

func TestHostBuffer_OnUnmapSeesWrites(t *testing.T) {
	b := NewHostBuffer(2)
	var uploaded []Instance
	b.OnUnmap = func(data []Instance) error {
		uploaded = append([]Instance(nil), data...)
		return nil
	}

	eng, err := NewCPUEngine(2, b, testPhysics)
	require.NoError(t, err)
	eng.Allocate(particleWithLife(4))
	require.NoError(t, eng.Step())

	require.Len(t, uploaded, 2)
	assert.Equal(t, b.Snapshot(), uploaded)
	assert.Greater(t, uploaded[0].Size, float32(0))
}

func TestPhysics_Validate(t *testing.T) {
	assert.NoError(t, Physics{Gravity: mgl32.Vec3{0, -1, 0}}.Validate())
	assert.ErrorIs(t, Physics{SizeDecay: -0.1}.Validate(), ErrInvariant)
}
