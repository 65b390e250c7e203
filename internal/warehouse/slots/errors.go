package slots

import "errors"

var (
	ErrNoFreeSlot         = errors.New("slots: no free slot")
	ErrNoOccupiedSlot     = errors.New("slots: no occupied slot")
	ErrSlotOccupied       = errors.New("slots: slot already occupied")
	ErrAlreadyHeld        = errors.New("slots: occupant already holds a slot")
	ErrUnknownPoint       = errors.New("slots: unknown attachment point")
	ErrAlreadyRegistered  = errors.New("slots: attachment points already registered")
	ErrNoAttachmentPoints = errors.New("slots: fixture has no attachment points")
)
