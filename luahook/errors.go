package luahook

import "errors"

// Lua hooker errors.
var (
	// ErrClosed is returned when operating on a closed hooker.
	ErrClosed = errors.New("luahook: hooker is closed")

	// ErrNoCallbacks indicates the script defines neither a before nor
	// an after function.
	ErrNoCallbacks = errors.New("luahook: script defines no before or after function")
)
