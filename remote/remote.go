// Package remote provides the read-only collaborator services the
// framework hosts for hooker modules: grouped preferences and shared
// data files.
//
// Both services are optional. A framework running in an embedded mode
// has neither, and every call fails with ErrUnsupported; missing
// groups, keys, and files fail with ErrNotFound.
package remote

import "errors"

// Collaborator errors.
var (
	// ErrUnsupported indicates the hosting mode does not provide the
	// requested collaborator.
	ErrUnsupported = errors.New("remote: operation not supported in this hosting mode")

	// ErrNotFound indicates the group, key, or file does not exist.
	ErrNotFound = errors.New("remote: not found")

	// ErrBadName indicates a file name containing path separators or
	// dot segments.
	ErrBadName = errors.New("remote: invalid file name")
)
