package session

import "github.com/pkg/errors"

var (
	ErrClosed         = errors.New("session: closed")
	ErrUnknownAgent   = errors.New("session: agent has not joined")
	ErrAlreadyJoined  = errors.New("session: agent already joined")
	ErrUnknownTarget  = errors.New("session: unknown target")
	ErrUnknownCommand = errors.New("session: unknown command")
	ErrNotCarrying    = errors.New("session: agent is not carrying anything")
)
