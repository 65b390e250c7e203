package carry

import "errors"

var (
	// ErrAlreadyAttached is returned when an attach targets a carryable that is
	// not free, or whose carrier already holds a joint from it.
	ErrAlreadyAttached = errors.New("carry: already attached")
	// ErrAgentBusy is returned when the agent is already carrying something.
	ErrAgentBusy      = errors.New("carry: agent already carrying")
	ErrPromptDisabled = errors.New("carry: interaction disabled")
	ErrNotCarrier     = errors.New("carry: agent is not carrying this object")
	ErrUnknownCarrier = errors.New("carry: carrier does not exist")
	ErrNotCarryable   = errors.New("carry: entity is not carryable")
)
