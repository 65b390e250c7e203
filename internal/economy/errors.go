package economy

import "errors"

var (
	ErrUnknownAgent  = errors.New("economy: agent has no ledger")
	ErrAlreadyJoined = errors.New("economy: agent already joined")
	ErrStoreClosed   = errors.New("economy: store closed")
)
