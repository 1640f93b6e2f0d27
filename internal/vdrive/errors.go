package vdrive

import "github.com/pkg/errors"

// Sentinel errors for the failure classes callers branch on. Wrap them
// with context and test with errors.Is.
var (
	// ErrInsufficientSpace covers zero-size requests and requests larger
	// than the pool's remaining capacity.
	ErrInsufficientSpace = errors.New("insufficient space")

	// ErrNotFound means no drive with the given identifier exists.
	ErrNotFound = errors.New("drive not found")

	// ErrPoolUnavailable means the storage pool could not be reached or
	// refused the operation.
	ErrPoolUnavailable = errors.New("storage pool unavailable")

	// ErrCorruptVolume marks a pool volume whose metadata is unusable.
	// Such volumes are skipped, never fatal.
	ErrCorruptVolume = errors.New("corrupt volume record")
)
