package vdrive

import (
	"context"
	"fmt"

	"github.com/c2h5oh/datasize"

	"github.com/dogi/pISO/internal/display"
	"github.com/dogi/pISO/internal/menu"
)

// Info is a read-only snapshot of one drive. Callers outside the package
// only ever see snapshots; the registry keeps ownership of the live state.
type Info struct {
	ID       VolumeID
	Name     string
	Capacity uint64
}

// DriveAction handles a select press on a drive row, typically by toggling
// whether the drive is exported over USB. A nil action leaves the press
// unconsumed.
type DriveAction func(ctx context.Context, d Info) (bool, error)

// Drive is one virtual drive row in the menu.
type Drive struct {
	volume Volume
	ts     display.Typesetter
	action DriveAction
}

var _ menu.Item = (*Drive)(nil)

func newDrive(v Volume, ts display.Typesetter, action DriveAction) *Drive {
	return &Drive{volume: v, ts: ts, action: action}
}

// ID returns the drive's stable identifier, which is the id of its backing
// volume.
func (d *Drive) ID() VolumeID { return d.volume.ID }

// Name returns the backing volume name.
func (d *Drive) Name() string { return d.volume.Name }

// Capacity returns the drive size in bytes.
func (d *Drive) Capacity() uint64 { return d.volume.Size }

// Info returns a snapshot of the drive.
func (d *Drive) Info() Info {
	return Info{ID: d.volume.ID, Name: d.volume.Name, Capacity: d.volume.Size}
}

// setVolume refreshes the snapshot after reconciliation noticed the
// backing volume changed underneath us.
func (d *Drive) setVolume(v Volume) { d.volume = v }

// Label combines name and size, e.g. "backup 4.0 GB".
func (d *Drive) Label() string {
	return fmt.Sprintf("%s %s", d.volume.Name, datasize.ByteSize(d.volume.Size).HR())
}

// Render draws the drive row from state already in memory.
func (d *Drive) Render(focused bool) *display.Bitmap {
	return menu.Line(d.ts, d.Label(), focused)
}

// Activate forwards the press to the configured action.
func (d *Drive) Activate(ctx context.Context) (bool, error) {
	if d.action == nil {
		return false, nil
	}
	return d.action(ctx, d.Info())
}

func (d *Drive) Next() bool { return false }
func (d *Drive) Prev() bool { return false }
