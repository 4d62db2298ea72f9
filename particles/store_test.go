package particles

import (
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPhysics = Physics{
	Gravity:   mgl32.Vec3{0, -0.001, 0},
	SizeDecay: 0.0001,
}

func particleWithLife(life uint32) Particle {
	return Particle{
		Velocity: mgl32.Vec3{0.01, 0.02, 0},
		Color:    mgl32.Vec3{0.5, 1, 0},
		Size:     0.004,
		Life:     life,
	}
}

// referenceStore steps every slot on every tick; the bounded scan must agree with it.
type referenceStore struct {
	particles []Particle
	view      []Instance
	cursor    int
}

func newReferenceStore(capacity int) *referenceStore {
	return &referenceStore{
		particles: make([]Particle, capacity),
		view:      make([]Instance, capacity),
	}
}

func (r *referenceStore) allocate(p Particle) {
	r.particles[r.cursor] = p
	r.cursor = (r.cursor + 1) % len(r.particles)
}

func (r *referenceStore) step(ph Physics) {
	for i := range r.particles {
		p := &r.particles[i]
		if p.Life == 0 {
			r.view[i].Size = 0
			continue
		}
		p.Life--
		if p.Life == 0 {
			r.view[i].Size = 0
			continue
		}
		if p.Size > 0 {
			p.Size -= ph.SizeDecay
			if p.Size < 0 {
				p.Size = 0
			}
		}
		p.Velocity = p.Velocity.Add(ph.Gravity)
		p.Center = p.Center.Add(p.Velocity)
		r.view[i] = p.Project()
	}
}

func (r *referenceStore) live() int {
	n := 0
	for i := range r.particles {
		if r.particles[i].Life > 0 {
			n++
		}
	}
	return n
}

func countLive(s *Store) int {
	n := 0
	for i := 0; i < s.Capacity(); i++ {
		if s.At(i).Life > 0 {
			n++
		}
	}
	return n
}

func TestNewStore_RejectsEmptyCapacity(t *testing.T) {
	for _, c := range []int{0, -1} {
		s, err := NewStore(c)
		require.ErrorIs(t, err, ErrInvariant)
		assert.Nil(t, s)
	}
}

func TestAllocate_WrapsAroundAndOverwritesSlotZero(t *testing.T) {
	s, err := NewStore(3)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.Equal(t, i, s.Allocate(particleWithLife(5)))
	}
	assert.Equal(t, 0, s.Cursor())

	fourth := particleWithLife(9)
	fourth.Color = mgl32.Vec3{1, 0, 0}
	slot := s.Allocate(fourth)

	assert.Equal(t, 0, slot, "the (C+1)-th allocation overwrites slot 0")
	assert.Equal(t, fourth, s.At(0))
	assert.Equal(t, 3, s.LiveCount(), "overwriting a live slot keeps the count exact")
	assert.Equal(t, 1, s.Cursor())
}

func TestAllocate_SetsHintOnlyWhenUnset(t *testing.T) {
	s, err := NewStore(8)
	require.NoError(t, err)

	_, ok := s.FirstLiveHint()
	assert.False(t, ok)

	s.Allocate(particleWithLife(3))
	s.Allocate(particleWithLife(3))

	hint, ok := s.FirstLiveHint()
	require.True(t, ok)
	assert.Equal(t, 0, hint)
}

func TestAllocate_PreDeadParticleIsSkipped(t *testing.T) {
	eng, buf := newTestEngine(t, 4)

	eng.Allocate(particleWithLife(0))
	assert.Equal(t, 0, eng.LiveCount())
	_, ok := eng.Store().FirstLiveHint()
	assert.False(t, ok, "a pre-dead particle never becomes the scan start")

	require.NoError(t, eng.Step())
	assert.Equal(t, StepStats{}, eng.LastStep())
	assert.Equal(t, 0, buf.maps)
}

func TestStep_ThreeParticlesLifeTwo(t *testing.T) {
	eng, buf := newTestEngine(t, 4)
	for i := 0; i < 3; i++ {
		assert.Equal(t, i, eng.Allocate(particleWithLife(2)))
	}

	require.NoError(t, eng.Step())
	for i := 0; i < 3; i++ {
		p := eng.Store().At(i)
		assert.Equal(t, uint32(1), p.Life)
		assert.Greater(t, p.Size, float32(0))
		assert.Greater(t, buf.data[i].Size, float32(0))
	}
	assert.Equal(t, 3, eng.LiveCount())

	require.NoError(t, eng.Step())
	for i := 0; i < 3; i++ {
		assert.Equal(t, uint32(0), eng.Store().At(i).Life)
		assert.Zero(t, buf.data[i].Size)
	}
	assert.Equal(t, 0, eng.LiveCount())
	assert.Equal(t, 3, eng.LastStep().Died)

	mapsBefore := buf.maps
	require.NoError(t, eng.Step())
	assert.Equal(t, StepStats{}, eng.LastStep(), "third step visits nothing")
	assert.Equal(t, mapsBefore, buf.maps)
}

func TestStep_LifeOneDiesInSingleStep(t *testing.T) {
	eng, buf := newTestEngine(t, 4)
	slot := eng.Allocate(particleWithLife(1))
	buf.data[slot].Size = 1 // stale projection from an earlier occupant

	require.NoError(t, eng.Step())

	assert.Equal(t, uint32(0), eng.Store().At(slot).Life)
	assert.Zero(t, buf.data[slot].Size)
	assert.Equal(t, 0, eng.LiveCount())
	assert.Equal(t, StepStats{Visited: 1, Processed: 1, Died: 1}, eng.LastStep())
}

func TestStep_LifeDecreasesByOneUntilZero(t *testing.T) {
	eng, _ := newTestEngine(t, 2)
	eng.Allocate(particleWithLife(5))

	for want := uint32(4); ; want-- {
		require.NoError(t, eng.Step())
		assert.Equal(t, want, eng.Store().At(0).Life)
		if want == 0 {
			break
		}
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, eng.Step())
		assert.Equal(t, uint32(0), eng.Store().At(0).Life)
	}
}

func TestStep_DeadSlotStaysInvisible(t *testing.T) {
	eng, buf := newTestEngine(t, 4)
	eng.Allocate(particleWithLife(1))
	eng.Allocate(particleWithLife(6))

	for i := 0; i < 5; i++ {
		require.NoError(t, eng.Step())
		assert.Equal(t, uint32(0), eng.Store().At(0).Life)
		assert.Zero(t, buf.data[0].Size)
	}
}

func TestStep_PhysicsIntegration(t *testing.T) {
	eng, buf := newTestEngine(t, 1)
	eng.Allocate(Particle{
		Center:   mgl32.Vec3{1, 2, 3},
		Velocity: mgl32.Vec3{0.5, 0, 0},
		Color:    mgl32.Vec3{0.1, 0.2, 0.3},
		Size:     0.00015,
		Life:     10,
	})

	require.NoError(t, eng.Step())
	p := eng.Store().At(0)
	assert.InDelta(t, 0.5, p.Velocity.X(), 1e-6)
	assert.InDelta(t, -0.001, p.Velocity.Y(), 1e-6)
	assert.InDelta(t, 1.5, p.Center.X(), 1e-6)
	assert.InDelta(t, 1.999, p.Center.Y(), 1e-6)
	assert.InDelta(t, 0.00005, p.Size, 1e-9)
	assert.Equal(t, p.Project(), buf.data[0])

	require.NoError(t, eng.Step())
	assert.Zero(t, eng.Store().At(0).Size, "size decay floors at zero")
	assert.InDelta(t, -0.002, eng.Store().At(0).Velocity.Y(), 1e-6)
}

func TestStep_VisitsTrackLiveCountNotCapacity(t *testing.T) {
	const capacity = 1000
	eng, _ := newTestEngine(t, capacity)
	em := NewEmitter(EmitterConfig{PerFrame: 5, Life: 10, Size: 0.004}, 1)

	for frame := 0; frame < 600; frame++ {
		em.Emit(eng)
		liveAtEntry := eng.LiveCount()
		require.NoError(t, eng.Step())

		st := eng.LastStep()
		assert.Equal(t, liveAtEntry, st.Processed)
		assert.Equal(t, liveAtEntry, st.Visited, "frame %d: a contiguous arc is scanned without gaps", frame)
		assert.LessOrEqual(t, st.Visited, capacity)
	}
}

func TestStep_MatchesFullScanReference(t *testing.T) {
	for _, capacity := range []int{1, 4, 16, 33} {
		rng := rand.New(rand.NewPCG(uint64(capacity), 7))
		eng, buf := newTestEngine(t, capacity)
		ref := newReferenceStore(capacity)

		for round := 0; round < 400; round++ {
			for n := rng.IntN(6); n > 0; n-- {
				p := particleWithLife(uint32(rng.IntN(7)))
				p.Center = mgl32.Vec3{rng.Float32(), rng.Float32(), rng.Float32()}
				eng.Allocate(p)
				ref.allocate(p)
			}
			require.Equal(t, ref.live(), eng.LiveCount(), "live count after allocation")

			liveAtEntry := eng.LiveCount()
			require.NoError(t, eng.Step())
			ref.step(testPhysics)

			st := eng.LastStep()
			assert.LessOrEqual(t, st.Processed, liveAtEntry)
			assert.LessOrEqual(t, st.Visited, capacity)
			require.Equal(t, ref.live(), eng.LiveCount(), "capacity %d round %d", capacity, round)
			require.Equal(t, countLive(eng.Store()), eng.LiveCount())
			for i := 0; i < capacity; i++ {
				require.Equal(t, ref.particles[i], eng.Store().At(i), "slot %d", i)
			}
			require.Equal(t, ref.view, buf.data)
		}
	}
}

func TestStep_OverwrittenWithPreDeadClearsProjection(t *testing.T) {
	eng, buf := newTestEngine(t, 2)
	eng.Allocate(particleWithLife(10))
	require.NoError(t, eng.Step())
	require.Greater(t, buf.data[0].Size, float32(0))

	eng.Allocate(particleWithLife(0)) // slot 1
	eng.Allocate(particleWithLife(0)) // wraps onto the live slot 0
	assert.Equal(t, 0, eng.LiveCount())

	require.NoError(t, eng.Step())
	assert.Zero(t, buf.data[0].Size)
	assert.Zero(t, eng.LastStep().Visited)
}

func TestStore_Reset(t *testing.T) {
	s, err := NewStore(4)
	require.NoError(t, err)
	s.Allocate(particleWithLife(3))
	s.Allocate(particleWithLife(3))

	s.Reset()

	assert.Equal(t, 0, s.LiveCount())
	assert.Equal(t, 0, s.Cursor())
	_, ok := s.FirstLiveHint()
	assert.False(t, ok)
	assert.Zero(t, countLive(s))
}
