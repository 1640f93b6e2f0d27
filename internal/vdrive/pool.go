// Package vdrive maintains the set of virtual USB drives backed by a
// storage pool. The Registry owns the drive list, keeps it reconciled with
// the pool, and doubles as the menu the user navigates on the device.
package vdrive

import (
	"context"

	"github.com/pkg/errors"
)

// VolumeID identifies a pool volume. IDs are stable across reboots and
// across reconciliation, which is what makes them usable as drive handles.
type VolumeID string

// Volume is one backing volume as reported by the pool.
type Volume struct {
	ID   VolumeID
	Name string
	Size uint64
}

// Validate reports why a volume record cannot back a drive.
func (v Volume) Validate() error {
	if v.ID == "" {
		return errors.Wrapf(ErrCorruptVolume, "volume %q has no id", v.Name)
	}
	if v.Size == 0 {
		return errors.Wrapf(ErrCorruptVolume, "volume %q has zero size", v.Name)
	}
	return nil
}

// Pool is the storage backend the registry draws volumes from. The LVM
// implementation shells out to the lvm2 tools; MemoryPool backs the
// simulator and tests.
//
// Implementations map their failures onto the package sentinels where one
// applies, so callers can use errors.Is regardless of backend.
type Pool interface {
	// Volumes enumerates the pool's volumes in the backend's order.
	Volumes(ctx context.Context) ([]Volume, error)
	// TotalCapacity returns the pool size in bytes.
	TotalCapacity(ctx context.Context) (uint64, error)
	// RemainingCapacity returns the unallocated bytes.
	RemainingCapacity(ctx context.Context) (uint64, error)
	// Allocate creates a volume of the given size. An empty name lets
	// the pool pick one.
	Allocate(ctx context.Context, name string, size uint64) (Volume, error)
	// Free releases the volume with the given id.
	Free(ctx context.Context, id VolumeID) error
}
