package vdrive

import (
	"context"
	"fmt"

	"github.com/c2h5oh/datasize"

	"github.com/dogi/pISO/internal/display"
	"github.com/dogi/pISO/internal/menu"
)

// SizePicker runs the capacity-selection interaction for the create entry.
// The device UI implements it as a modal dial; headless callers can return
// a fixed size. ok=false means the user cancelled.
type SizePicker interface {
	PickSize(ctx context.Context, free uint64) (size uint64, ok bool, err error)
}

// createItem is the perpetual trailing "New drive" entry. It is part of
// the registry's menu no matter how many drives exist, including zero.
type createItem struct {
	reg    *Registry
	picker SizePicker
}

var _ menu.Item = (*createItem)(nil)

func (c *createItem) Label() string { return "New drive" }

// Render shows the remaining capacity so the user knows what a new drive
// can get before starting the dialog.
func (c *createItem) Render(focused bool) *display.Bitmap {
	text := fmt.Sprintf("+ New drive (%s free)", datasize.ByteSize(c.reg.free).HR())
	return menu.Line(c.reg.ts, text, focused)
}

// Activate runs the picker and, on confirmation, creates the drive. With
// no picker configured the press is not consumed.
func (c *createItem) Activate(ctx context.Context) (bool, error) {
	if c.picker == nil {
		return false, nil
	}
	size, ok, err := c.picker.PickSize(ctx, c.reg.free)
	if err != nil {
		return true, err
	}
	if !ok {
		return true, nil
	}
	if _, err := c.reg.AddDrive(ctx, "", size); err != nil {
		return true, err
	}
	return true, nil
}

func (c *createItem) Next() bool { return false }
func (c *createItem) Prev() bool { return false }
