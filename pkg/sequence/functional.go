package sequence

import "iter"

// Iterator is a generic, immutable, chainable iterator for any type T.
type Iterator[T any] struct {
	seq iter.Seq[T]
}

// From creates a new Iterator from a slice of T.
func From[T any](data []T) *Iterator[T] {
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			for _, v := range data {
				if !yield(v) {
					return
				}
			}
		},
	}
}

// Filter keeps the elements for which keep returns true.
func (i *Iterator[T]) Filter(keep func(T) bool) *Iterator[T] {
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			for v := range i.seq {
				if keep(v) && !yield(v) {
					return
				}
			}
		},
	}
}

// First returns the first element, if any.
func (i *Iterator[T]) First() (T, bool) {
	for v := range i.seq {
		return v, true
	}
	var zero T
	return zero, false
}

// MinBy returns the element with the lowest key. Ties keep the earliest element.
func MinBy[T any, K int | int64 | uint64 | float64](i *Iterator[T], key func(T) K) (T, bool) {
	var (
		best    T
		bestKey K
		found   bool
	)
	for v := range i.seq {
		k := key(v)
		if !found || k < bestKey {
			best, bestKey, found = v, k, true
		}
	}
	return best, found
}
