package particles

import (
	"container/heap"
	"fmt"
)

// Ledger is the host-side bookkeeping of an engine whose particle records live
// on the device. It never sees positions or sizes; it only knows when each slot
// was filled and how many ticks it has left, which is enough to keep the ring
// cursor and an exact live count without reading anything back.
type Ledger struct {
	tick   uint64
	live   int
	cursor int

	deathTick []uint64 // slot is alive while deathTick > tick
	gen       []uint32
	deaths    deathQueue
}

func NewLedger(capacity int) (*Ledger, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d", ErrInvariant, capacity)
	}
	return &Ledger{
		deathTick: make([]uint64, capacity),
		gen:       make([]uint32, capacity),
	}, nil
}

func (l *Ledger) Capacity() int  { return len(l.deathTick) }
func (l *Ledger) LiveCount() int { return l.live }
func (l *Ledger) Tick() uint64   { return l.tick }

// Alive reports whether slot i currently holds a live particle.
func (l *Ledger) Alive(i int) bool { return l.deathTick[i] > l.tick }

// Allocate records a particle with the given life in the next ring slot and returns the slot.
func (l *Ledger) Allocate(life uint32) int {
	slot := l.cursor
	if l.Alive(slot) {
		l.live--
	}
	l.gen[slot]++
	l.deathTick[slot] = l.tick
	if life > 0 {
		l.deathTick[slot] = l.tick + uint64(life)
		heap.Push(&l.deaths, death{tick: l.deathTick[slot], slot: slot, gen: l.gen[slot]})
		l.live++
	}

	l.cursor++
	if l.cursor == len(l.deathTick) {
		l.cursor = 0
	}
	return slot
}

// Step accounts for one device tick and returns how many particles died in it.
func (l *Ledger) Step() int {
	if l.live == 0 {
		return 0
	}
	l.tick++
	died := 0
	for l.deaths.Len() > 0 && l.deaths[0].tick <= l.tick {
		d := heap.Pop(&l.deaths).(death)
		if d.gen != l.gen[d.slot] {
			continue // slot was overwritten before this particle expired
		}
		l.live--
		died++
	}
	return died
}

type death struct {
	tick uint64
	slot int
	gen  uint32
}

type deathQueue []death

func (q deathQueue) Len() int           { return len(q) }
func (q deathQueue) Less(i, j int) bool { return q[i].tick < q[j].tick }
func (q deathQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *deathQueue) Push(x any) { *q = append(*q, x.(death)) }

func (q *deathQueue) Pop() any {
	old := *q
	n := len(old)
	d := old[n-1]
	*q = old[:n-1]
	return d
}
