package particles

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLedger_RejectsEmptyCapacity(t *testing.T) {
	l, err := NewLedger(0)
	require.ErrorIs(t, err, ErrInvariant)
	assert.Nil(t, l)
}

func TestLedger_CountsDeaths(t *testing.T) {
	l, err := NewLedger(4)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.Equal(t, i, l.Allocate(2))
	}
	assert.Equal(t, 3, l.LiveCount())

	assert.Zero(t, l.Step())
	assert.Equal(t, 3, l.LiveCount())
	assert.Equal(t, 3, l.Step())
	assert.Zero(t, l.LiveCount())

	tick := l.Tick()
	assert.Zero(t, l.Step())
	assert.Equal(t, tick, l.Tick(), "an empty pool does not advance the clock")
}

func TestLedger_OverwriteCancelsPendingDeath(t *testing.T) {
	l, err := NewLedger(2)
	require.NoError(t, err)

	l.Allocate(3) // slot 0
	l.Allocate(0) // slot 1, pre-dead
	assert.Equal(t, 1, l.LiveCount())

	l.Allocate(10) // overwrites slot 0
	assert.Equal(t, 1, l.LiveCount())
	assert.True(t, l.Alive(0))
	assert.False(t, l.Alive(1))

	for i := 0; i < 9; i++ {
		assert.Zero(t, l.Step(), "tick %d: the overwritten particle's death is stale", i)
	}
	assert.Equal(t, 1, l.Step())
	assert.Zero(t, l.LiveCount())
}

func TestLedger_MatchesCPUEngine(t *testing.T) {
	const capacity = 24
	rng := rand.New(rand.NewPCG(42, 42))
	l, err := NewLedger(capacity)
	require.NoError(t, err)
	eng, _ := newTestEngine(t, capacity)

	for round := 0; round < 500; round++ {
		for n := rng.IntN(8); n > 0; n-- {
			life := uint32(rng.IntN(12))
			assert.Equal(t, eng.Allocate(particleWithLife(life)), l.Allocate(life))
		}
		require.Equal(t, eng.LiveCount(), l.LiveCount(), "round %d after allocation", round)

		require.NoError(t, eng.Step())
		died := l.Step()
		require.Equal(t, eng.LastStep().Died, died, "round %d", round)
		require.Equal(t, eng.LiveCount(), l.LiveCount(), "round %d after step", round)
		for i := 0; i < capacity; i++ {
			require.Equal(t, eng.Store().At(i).Alive(), l.Alive(i), "round %d slot %d", round, i)
		}
	}
}
