package slots

import (
	"slices"

	"github.com/zeusync/warehouse/pkg/sequence"
)

// Policy selects which empty slot FindFree returns.
type Policy uint8

const (
	// BottomUp fills the lowest key first and is the default.
	BottomUp Policy = iota
	// RegistrationOrder fills slots in the order they were discovered.
	RegistrationOrder
)

// Allocator maps each attachment point of one fixture to its occupant. An
// occupant holds at most one slot of an allocator; exclusivity across
// fixtures is left to the attach protocol.
type Allocator[T comparable] struct {
	points   []Point
	occupied map[int]T
	policy   Policy
	onChange func(anyOccupied bool)
}

func NewAllocator[T comparable](policy Policy) *Allocator[T] {
	return &Allocator[T]{
		occupied: make(map[int]T),
		policy:   policy,
	}
}

// OnOccupancyChange is called after every Occupy and every effective Release
// with whether any slot is still held.
func (a *Allocator[T]) OnOccupancyChange(fn func(anyOccupied bool)) {
	a.onChange = fn
}

// RegisterPoints initialises the slot set once. All points start empty.
func (a *Allocator[T]) RegisterPoints(points []Point) error {
	if a.points != nil {
		return ErrAlreadyRegistered
	}
	if len(points) == 0 {
		return ErrNoAttachmentPoints
	}
	a.points = slices.Clone(points)
	for i := range a.points {
		a.points[i].Index = i
	}
	return nil
}

func (a *Allocator[T]) Points() []Point { return slices.Clone(a.points) }

func (a *Allocator[T]) Capacity() int { return len(a.points) }

// Count is the number of held slots.
func (a *Allocator[T]) Count() int { return len(a.occupied) }

// FindFree returns the empty point with the lowest key (ties by registration
// order), or the first empty point under RegistrationOrder.
func (a *Allocator[T]) FindFree() (Point, bool) {
	free := sequence.From(a.points).Filter(func(p Point) bool {
		_, held := a.occupied[p.Index]
		return !held
	})
	if a.policy == RegistrationOrder {
		return free.First()
	}
	return sequence.MinBy(free, func(p Point) float64 { return p.Key })
}

// FindOccupied returns the held point with the highest key. Ties go to the
// later-registered point so a drain mirrors the fill.
func (a *Allocator[T]) FindOccupied() (Point, T, bool) {
	var (
		best  Point
		found bool
	)
	for _, p := range a.points {
		if _, held := a.occupied[p.Index]; !held {
			continue
		}
		if !found || p.Key >= best.Key {
			best, found = p, true
		}
	}
	if !found {
		var zero T
		return Point{}, zero, false
	}
	return best, a.occupied[best.Index], true
}

func (a *Allocator[T]) Occupy(p Point, v T) error {
	if p.Index < 0 || p.Index >= len(a.points) {
		return ErrUnknownPoint
	}
	if _, held := a.occupied[p.Index]; held {
		return ErrSlotOccupied
	}
	if _, holding := a.Holding(v); holding {
		return ErrAlreadyHeld
	}
	a.occupied[p.Index] = v
	a.notify()
	return nil
}

// Release empties p. Releasing an empty point does nothing.
func (a *Allocator[T]) Release(p Point) {
	if _, held := a.occupied[p.Index]; !held {
		return
	}
	delete(a.occupied, p.Index)
	a.notify()
}

// Holding returns the point that holds v.
func (a *Allocator[T]) Holding(v T) (Point, bool) {
	for idx, held := range a.occupied {
		if held == v {
			return a.points[idx], true
		}
	}
	return Point{}, false
}

// Occupants lists held values in slot registration order.
func (a *Allocator[T]) Occupants() []T {
	out := make([]T, 0, len(a.occupied))
	for _, p := range a.points {
		if v, held := a.occupied[p.Index]; held {
			out = append(out, v)
		}
	}
	return out
}

func (a *Allocator[T]) notify() {
	if a.onChange != nil {
		a.onChange(len(a.occupied) > 0)
	}
}
