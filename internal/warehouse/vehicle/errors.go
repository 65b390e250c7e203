package vehicle

import "errors"

var (
	ErrSeatTaken     = errors.New("vehicle: seat already occupied")
	ErrNotOccupant   = errors.New("vehicle: agent is not driving")
	ErrAlreadySeated = errors.New("vehicle: agent is already seated")
	ErrUnknownModel  = errors.New("vehicle: unknown model")
	ErrUnknownHandle = errors.New("vehicle: unknown handle")
	ErrNoVehicle     = errors.New("vehicle: part is not a vehicle")
)
