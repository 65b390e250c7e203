package config

import "github.com/pkg/errors"

var (
	ErrInvalid       = errors.New("config: invalid document")
	ErrDuplicateName = errors.New("config: duplicate scene name")
)
