package spacedata

import "errors"

// Sentinel errors surfaced by the shared-data machinery.  Callers test
// with errors.Is; every raise site wraps the sentinel with context.
var (
	// ErrConfiguration covers caller mistakes: unknown extraction
	// methods, constraints targeting a foreign space, vector widths
	// beyond the encodable range, top/bottom requests on flat meshes.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrResourceLimit is returned when the local node count exceeds the
	// bit budget reserved for constraint encoding.
	ErrResourceLimit = errors.New("resource limit exceeded")

	// ErrNotImplemented marks paths with no implementation: the
	// geometric method on variable-layer meshes, and mask-dependent
	// operations when the geometric mask is absent.
	ErrNotImplemented = errors.New("not implemented")
)
