package ui

import (
	"context"

	"github.com/c2h5oh/datasize"
	"github.com/pkg/errors"

	"github.com/dogi/pISO/internal/display"
	"github.com/dogi/pISO/internal/input"
	"github.com/dogi/pISO/internal/menu"
	"github.com/dogi/pISO/internal/vdrive"
)

// pickerState is the size dial both front ends share: Up grows the size by
// one step, Down shrinks it, and shrinking below the minimum arms cancel.
type pickerState struct {
	size   uint64
	step   uint64
	free   uint64
	cancel bool
}

func newPickerState(step, free uint64) pickerState {
	size := step
	if size > free {
		size = free
	}
	return pickerState{size: size, step: step, free: free, cancel: size == 0}
}

func (p *pickerState) up() {
	if p.cancel {
		p.cancel = p.size == 0
		return
	}
	if p.size+p.step <= p.free {
		p.size += p.step
	}
}

func (p *pickerState) down() {
	if p.size > p.step {
		p.size -= p.step
	} else {
		p.cancel = true
	}
}

// frame draws the dial as a bitmap for the device and the simulator.
func (p *pickerState) frame(ts display.Typesetter) *display.Bitmap {
	rows := []*display.Bitmap{
		ts.Text("New drive"),
	}
	if p.cancel {
		rows = append(rows, menu.Line(ts, "cancel?", true))
	} else {
		rows = append(rows, menu.Line(ts, "size "+datasize.ByteSize(p.size).HR(), true))
	}
	rows = append(rows,
		ts.Text("free "+datasize.ByteSize(p.free).HR()),
		ts.Text("press select"),
	)
	return display.Stack(rows...)
}

// StepPicker runs the size dial on the real hardware. It borrows the
// loop's screen and button stream for the duration of the dialog; the
// loop is parked inside Activate until PickSize returns.
type StepPicker struct {
	dev    display.Device
	events <-chan input.Event
	ts     display.Typesetter
	step   uint64
}

var _ vdrive.SizePicker = (*StepPicker)(nil)

// NewStepPicker returns a picker stepping by step bytes.
func NewStepPicker(dev display.Device, events <-chan input.Event, ts display.Typesetter, step uint64) *StepPicker {
	return &StepPicker{dev: dev, events: events, ts: ts, step: step}
}

// PickSize runs the dial until the user confirms or cancels.
func (sp *StepPicker) PickSize(ctx context.Context, free uint64) (uint64, bool, error) {
	state := newPickerState(sp.step, free)
	for {
		if err := sp.draw(&state); err != nil {
			return 0, false, err
		}
		select {
		case <-ctx.Done():
			return 0, false, ctx.Err()
		case ev, ok := <-sp.events:
			if !ok {
				return 0, false, errors.New("input stream closed during size dialog")
			}
			switch ev {
			case input.Up:
				state.up()
			case input.Down:
				state.down()
			case input.Select:
				if state.cancel {
					return 0, false, nil
				}
				return state.size, true, nil
			}
		}
	}
}

func (sp *StepPicker) draw(state *pickerState) error {
	w, h := sp.dev.Size()
	frame := display.NewBitmap(w, h)
	frame.Blit(state.frame(sp.ts), 0, 0)
	return sp.dev.Draw(frame)
}
