package lua

import "errors"

var (
	// ErrNilRuntime is returned when a nil runtime is passed to Register.
	ErrNilRuntime = errors.New("runtime cannot be nil")

	// ErrNilSource is returned when Register is given no fact source.
	ErrNilSource = errors.New("fact source cannot be nil")
)
