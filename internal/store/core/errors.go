package core

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalid        = errors.New("invalid")
	ErrUnavailable    = errors.New("datastore unavailable")
	ErrNotImplemented = errors.New("not implemented")
)
