package host

import "errors"

var (
	ErrUnknownEntity = errors.New("host: unknown entity")
	ErrSelfJoint     = errors.New("host: cannot join a part to itself")
	ErrParentCycle   = errors.New("host: parent would create a cycle")
)
