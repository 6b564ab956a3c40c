package svgview

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrSourceUnavailable indicates a source document could not be opened or read.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrInvalidURI indicates a string could not be parsed as a source URI.
	ErrInvalidURI = errors.New("invalid uri")

	// ErrDisposed indicates an operation on a manager after Dispose.
	ErrDisposed = errors.New("manager disposed")
)
