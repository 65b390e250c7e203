package collector

import "errors"

var (
	ErrNotCollectable  = errors.New("collector: contact is neither a crate nor a fixture")
	ErrEmptyFixture    = errors.New("collector: fixture holds nothing")
	ErrAlreadyConsumed = errors.New("collector: already consumed")
	ErrNoEligibleAgent = errors.New("collector: no agent to credit")
)
