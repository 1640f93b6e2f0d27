package vdrive

import (
	"context"

	"github.com/c2h5oh/datasize"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/dogi/pISO/internal/display"
	"github.com/dogi/pISO/internal/menu"
)

// Options carry the registry's collaborators. Everything is optional
// except the pool: a nil Typesetter falls back to the built-in font, a nil
// Picker disables on-device drive creation and a nil Action leaves drive
// rows inert.
type Options struct {
	Typesetter display.Typesetter
	Picker     SizePicker
	Action     DriveAction
	Logger     zerolog.Logger
}

// Registry owns the ordered drive list and its menu. It is the single
// authority on which drives exist; everything else (gadget, CLI, UI) works
// from snapshots it hands out.
//
// Registry is not safe for concurrent use. The UI loop owns it and runs
// every operation on its own goroutine, which is also what keeps each
// operation atomic with respect to rendering.
type Registry struct {
	pool   Pool
	ts     display.Typesetter
	action DriveAction
	log    zerolog.Logger

	drives []*Drive
	create *createItem
	list   *menu.List

	// Capacity figures are cached at mutation points so rendering never
	// has to touch the pool.
	total uint64
	free  uint64
}

var _ menu.Item = (*Registry)(nil)

// NewRegistry builds a registry over pool and reconciles it with the
// pool's current volumes. Corrupt volumes are skipped with a warning; a
// pool that cannot be enumerated fails construction.
func NewRegistry(ctx context.Context, pool Pool, opts Options) (*Registry, error) {
	ts := opts.Typesetter
	if ts == nil {
		ts = display.Font5x7{}
	}
	r := &Registry{
		pool:   pool,
		ts:     ts,
		action: opts.Action,
		log:    opts.Logger,
	}
	r.create = &createItem{reg: r, picker: opts.Picker}
	r.list = menu.NewList("drives")
	if err := r.Rebuild(ctx); err != nil {
		if !errors.Is(err, ErrCorruptVolume) {
			return nil, err
		}
		r.log.Warn().Err(err).Msg("skipped unusable pool volumes")
	}
	return r, nil
}

// Rebuild reconciles the drive list against the pool's volumes:
//
//   - drives whose backing volume still exists are retained in their
//     current order, with their identity and focus untouched
//   - volumes with no drive get one appended in pool order
//   - drives whose volume vanished are dropped
//
// Corrupt volume records are skipped and reported through the returned
// error, which wraps ErrCorruptVolume; the rest of the pool is still
// processed. If the pool cannot be enumerated the registry is left
// exactly as it was.
func (r *Registry) Rebuild(ctx context.Context) error {
	vols, err := r.pool.Volumes(ctx)
	if err != nil {
		return errors.Wrap(err, "listing pool volumes")
	}

	var report *multierror.Error
	seen := make(map[VolumeID]struct{}, len(vols))
	valid := make([]Volume, 0, len(vols))
	for _, v := range vols {
		if err := v.Validate(); err != nil {
			report = multierror.Append(report, err)
			r.log.Warn().Str("volume", v.Name).Err(err).Msg("skipping volume")
			continue
		}
		if _, dup := seen[v.ID]; dup {
			err := errors.Wrapf(ErrCorruptVolume, "duplicate volume id %s (%s)", v.ID, v.Name)
			report = multierror.Append(report, err)
			r.log.Warn().Str("volume", v.Name).Err(err).Msg("skipping volume")
			continue
		}
		seen[v.ID] = struct{}{}
		valid = append(valid, v)
	}

	byID := make(map[VolumeID]Volume, len(valid))
	for _, v := range valid {
		byID[v.ID] = v
	}

	kept := make([]*Drive, 0, len(valid))
	matched := make(map[VolumeID]struct{}, len(r.drives))
	for _, d := range r.drives {
		v, ok := byID[d.ID()]
		if !ok {
			r.log.Info().Str("drive", d.Name()).Msg("backing volume gone, dropping drive")
			continue
		}
		if v != d.volume {
			r.log.Info().Str("drive", d.Name()).Uint64("size", v.Size).Msg("backing volume changed, refreshing")
			d.setVolume(v)
		}
		kept = append(kept, d)
		matched[d.ID()] = struct{}{}
	}
	for _, v := range valid {
		if _, ok := matched[v.ID]; ok {
			continue
		}
		kept = append(kept, newDrive(v, r.ts, r.action))
	}
	r.drives = kept

	r.refreshCapacity(ctx)
	r.syncItems()
	return report.ErrorOrNil()
}

// AddDrive allocates a volume of the given size and appends a drive for
// it. An empty name lets the pool pick one. The registry is only modified
// once the pool allocation has succeeded.
func (r *Registry) AddDrive(ctx context.Context, name string, size uint64) (Info, error) {
	if size == 0 {
		return Info{}, errors.Wrap(ErrInsufficientSpace, "drive size must be positive")
	}
	free, err := r.pool.RemainingCapacity(ctx)
	if err != nil {
		return Info{}, errors.Wrap(err, "querying remaining capacity")
	}
	if size > free {
		return Info{}, errors.Wrapf(ErrInsufficientSpace, "requested %s but only %s free",
			datasize.ByteSize(size).HR(), datasize.ByteSize(free).HR())
	}
	vol, err := r.pool.Allocate(ctx, name, size)
	if err != nil {
		return Info{}, errors.Wrap(err, "allocating volume")
	}
	d := newDrive(vol, r.ts, r.action)
	r.drives = append(r.drives, d)
	r.refreshCapacity(ctx)
	r.syncItems()
	r.log.Info().Str("drive", vol.Name).Str("id", string(vol.ID)).
		Str("size", datasize.ByteSize(vol.Size).HR()).Msg("drive added")
	return d.Info(), nil
}

// RemoveDrive frees the backing volume and drops the drive. The drive
// stays registered if the pool refuses to free the volume.
func (r *Registry) RemoveDrive(ctx context.Context, id VolumeID) error {
	idx := -1
	for i, d := range r.drives {
		if d.ID() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.Wrapf(ErrNotFound, "no drive with id %s", id)
	}
	if err := r.pool.Free(ctx, id); err != nil {
		return errors.Wrapf(err, "freeing volume %s", id)
	}
	name := r.drives[idx].Name()
	r.drives = append(r.drives[:idx], r.drives[idx+1:]...)
	r.refreshCapacity(ctx)
	r.syncItems()
	r.log.Info().Str("drive", name).Msg("drive removed")
	return nil
}

// PercentUsed returns the share of the pool taken by registered drives,
// from 0 to 100. An empty or zero-size pool reads as 0. The figure uses
// the capacity cache, so it never blocks.
func (r *Registry) PercentUsed() float64 {
	if r.total == 0 {
		return 0
	}
	var used uint64
	for _, d := range r.drives {
		used += d.Capacity()
	}
	return float64(used) / float64(r.total) * 100
}

// Drives returns snapshots of the registered drives in menu order.
func (r *Registry) Drives() []Info {
	out := make([]Info, len(r.drives))
	for i, d := range r.drives {
		out[i] = d.Info()
	}
	return out
}

// Len returns the number of registered drives, not counting the create
// entry.
func (r *Registry) Len() int { return len(r.drives) }

// FindByName returns the first drive with the given volume name.
func (r *Registry) FindByName(name string) (Info, bool) {
	for _, d := range r.drives {
		if d.Name() == name {
			return d.Info(), true
		}
	}
	return Info{}, false
}

// TotalCapacity returns the cached pool size in bytes.
func (r *Registry) TotalCapacity() uint64 { return r.total }

// FreeCapacity returns the cached unallocated bytes.
func (r *Registry) FreeCapacity() uint64 { return r.free }

// CreateFocused reports whether the trailing create entry holds focus.
func (r *Registry) CreateFocused() bool {
	return r.list.FocusIndex() == len(r.drives)
}

func (r *Registry) refreshCapacity(ctx context.Context) {
	total, err := r.pool.TotalCapacity(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("pool capacity query failed, keeping cached figures")
		return
	}
	free, err := r.pool.RemainingCapacity(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("pool capacity query failed, keeping cached figures")
		return
	}
	r.total, r.free = total, free
}

func (r *Registry) syncItems() {
	items := make([]menu.Item, 0, len(r.drives)+1)
	for _, d := range r.drives {
		items = append(items, d)
	}
	items = append(items, r.create)
	r.list.SetItems(items)
}

// Registry is a menu item so it can sit inside a larger menu. All
// navigation is delegated to the internal list, whose trailing entry is
// always the create item.

func (r *Registry) Label() string { return "Drives" }

func (r *Registry) Render(focused bool) *display.Bitmap { return r.list.Render(focused) }

func (r *Registry) Activate(ctx context.Context) (bool, error) { return r.list.Activate(ctx) }

func (r *Registry) Next() bool { return r.list.Next() }

func (r *Registry) Prev() bool { return r.list.Prev() }

// FocusFirst and FocusLast let an enclosing list reset focus when it
// enters the registry from either end.

func (r *Registry) FocusFirst() { r.list.FocusFirst() }

func (r *Registry) FocusLast() { r.list.FocusLast() }
