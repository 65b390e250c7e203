package fixture

import "errors"

var (
	ErrDisabled         = errors.New("fixture: disabled")
	ErrDebounced        = errors.New("fixture: contact already in flight")
	ErrHeldByFixture    = errors.New("fixture: carryable is stored in a fixture")
	ErrNoTakeAffordance = errors.New("fixture: fixture cannot be drained by hand")
	ErrUnknownKind      = errors.New("fixture: unknown kind")

	// ErrMissingDependency means a fixture was configured without something it
	// needs. It is a startup error, never a runtime one.
	ErrMissingDependency = errors.New("fixture: missing dependency")
)
