package master

import "errors"

var (
	ErrEmptyCode   = errors.New("lookup code must not be empty")
	ErrUnknownKind = errors.New("unknown lookup kind")
)
