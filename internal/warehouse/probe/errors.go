package probe

import "errors"

var (
	// ErrProbeMiss means no lockable pallet overlaps the probe. It is an
	// ordinary outcome.
	ErrProbeMiss    = errors.New("probe: no pallet in range")
	ErrUnknownProbe = errors.New("probe: probe part does not exist")
)
