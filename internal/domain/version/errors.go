package version

import "errors"

// Domain errors for version operations.
var (
	// ErrInvalidVersion indicates an invalid version string.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrUnknownCommand indicates a command that is neither a version nor a known verb.
	ErrUnknownCommand = errors.New("unknown command")
)
