package systems

import "errors"

// Non-fatal errors. Each one skips a single operation (one spawn, one absorption).
var (
	// ErrPlacementFailed is returned when the allocator exhausts its attempt budget.
	ErrPlacementFailed = errors.New("placement failed")
	// ErrInvalidVolume is returned when a shape or player volume is non-finite or not positive.
	ErrInvalidVolume = errors.New("invalid volume")
	// ErrInvalidRadius is returned when an absorption would produce a non-finite or non-increasing radius.
	ErrInvalidRadius = errors.New("invalid radius")
)
