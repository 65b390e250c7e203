package server

import "github.com/pkg/errors"

var (
	ErrServerClosed         = errors.New("server is closed")
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrInvalidMessage       = errors.New("invalid message")
	ErrNotJoined            = errors.New("first message must be join")
	ErrListenerFailed       = errors.New("failed to create listener")
)
