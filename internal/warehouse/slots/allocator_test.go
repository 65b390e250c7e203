package slots

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/warehouse/internal/core/systems/physics"
)

func stack(keys ...float64) []Point {
	out := make([]Point, len(keys))
	for i, k := range keys {
		out[i] = NewPoint(i, "", physics.At(physics.V(0, k, 0)))
	}
	return out
}

func TestRegisterPointsOnce(t *testing.T) {
	a := NewAllocator[string](BottomUp)
	require.NoError(t, a.RegisterPoints(stack(0, 1)))
	require.ErrorIs(t, a.RegisterPoints(stack(0)), ErrAlreadyRegistered)
	assert.Equal(t, 2, a.Capacity())
	assert.Zero(t, a.Count())

	require.ErrorIs(t, NewAllocator[string](BottomUp).RegisterPoints(nil), ErrNoAttachmentPoints)
}

func TestFindFreeIsLowestEmptyKey(t *testing.T) {
	a := NewAllocator[string](BottomUp)
	require.NoError(t, a.RegisterPoints(stack(2, 0, 1)))

	p, ok := a.FindFree()
	require.True(t, ok)
	assert.Equal(t, 0.0, p.Key)
	require.NoError(t, a.Occupy(p, "a"))

	p, ok = a.FindFree()
	require.True(t, ok)
	assert.Equal(t, 1.0, p.Key)
}

func TestFindOccupiedIsHighestHeldKey(t *testing.T) {
	a := NewAllocator[string](BottomUp)
	pts := stack(0, 1, 2)
	require.NoError(t, a.RegisterPoints(pts))
	require.NoError(t, a.Occupy(pts[0], "low"))
	require.NoError(t, a.Occupy(pts[2], "high"))

	p, v, ok := a.FindOccupied()
	require.True(t, ok)
	assert.Equal(t, 2.0, p.Key)
	assert.Equal(t, "high", v)

	a.Release(p)
	_, v, _ = a.FindOccupied()
	assert.Equal(t, "low", v)
}

func TestRegistrationOrderPolicy(t *testing.T) {
	a := NewAllocator[string](RegistrationOrder)
	require.NoError(t, a.RegisterPoints(stack(5, 0)))
	p, ok := a.FindFree()
	require.True(t, ok)
	assert.Equal(t, 0, p.Index, "shelves take the first declared slot regardless of height")
}

func TestOccupyAndReleaseNotify(t *testing.T) {
	a := NewAllocator[string](BottomUp)
	pts := stack(0, 1)
	require.NoError(t, a.RegisterPoints(pts))

	var states []bool
	a.OnOccupancyChange(func(any bool) { states = append(states, any) })

	require.NoError(t, a.Occupy(pts[0], "a"))
	require.ErrorIs(t, a.Occupy(pts[0], "b"), ErrSlotOccupied)
	require.ErrorIs(t, a.Occupy(Point{Index: 9}, "b"), ErrUnknownPoint)
	require.NoError(t, a.Occupy(pts[1], "b"))
	a.Release(pts[1])
	a.Release(pts[1])
	a.Release(pts[0])

	assert.Equal(t, []bool{true, true, true, false}, states)

	_, _, ok := a.FindOccupied()
	assert.False(t, ok)
}

func TestHoldingAndOccupants(t *testing.T) {
	a := NewAllocator[string](BottomUp)
	pts := stack(0, 1, 2)
	require.NoError(t, a.RegisterPoints(pts))
	require.NoError(t, a.Occupy(pts[2], "c"))
	require.NoError(t, a.Occupy(pts[0], "a"))

	p, ok := a.Holding("c")
	require.True(t, ok)
	assert.Equal(t, 2, p.Index)
	assert.Equal(t, []string{"a", "c"}, a.Occupants())

	require.ErrorIs(t, a.Occupy(pts[1], "c"), ErrAlreadyHeld)
	assert.Equal(t, 2, a.Count())
	_, free := a.FindFree()
	assert.True(t, free)
}

// Whatever order slots are filled and drained in, the selectors keep their
// min/max guarantees and occupancy never exceeds capacity.
func TestSelectorsHoldUnderRandomTraffic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	keys := []float64{3, 0, 4, 1, 2, 6, 5}
	a := NewAllocator[int](BottomUp)
	require.NoError(t, a.RegisterPoints(stack(keys...)))

	next := 0
	for step := 0; step < 500; step++ {
		if rng.Intn(3) > 0 {
			if p, ok := a.FindFree(); ok {
				for _, q := range a.Points() {
					if q.Key < p.Key {
						_, taken := a.occupied[q.Index]
						assert.True(t, taken, "found key %v while %v was empty", p.Key, q.Key)
					}
				}
				require.NoError(t, a.Occupy(p, next))
				next++
			}
		} else if p, _, ok := a.FindOccupied(); ok {
			for idx := range a.occupied {
				assert.LessOrEqual(t, a.points[idx].Key, p.Key)
			}
			a.Release(p)
		}
		assert.LessOrEqual(t, a.Count(), a.Capacity())
	}
}
