package device

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedCapability is returned when a resource needs a format, extension or size the
	// context does not provide.
	ErrUnsupportedCapability = errors.New("unsupported capability")

	// ErrInvalidConfiguration is returned for programmer errors: a program attribute with no
	// supplying vertex buffer, an incompatible uniform value, a draw without a program.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidVariableName is returned when a program has no active uniform with the given name.
	ErrInvalidVariableName = fmt.Errorf("%w: unknown program variable", ErrInvalidConfiguration)

	// ErrCompilationFailure is returned when a shader fails to compile on a live context.
	ErrCompilationFailure = errors.New("shader compilation failed")

	// ErrLinkFailure is returned when a program fails to link on a live context.
	ErrLinkFailure = errors.New("program link failed")
)

// errContextLost aborts a GL sequence that found the context gone part way through.
var errContextLost = errors.New("context lost")
