package input

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	evKey      = 0x01
	keyPressed = 1
)

// rawEvent mirrors struct input_event on 64-bit kernels.
type rawEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// Keymap names the key codes the three buttons report. The defaults match
// the usual gpio-keys overlay.
type Keymap struct {
	Up     uint16
	Down   uint16
	Select uint16
}

// DefaultKeymap maps KEY_UP, KEY_DOWN and KEY_ENTER.
func DefaultKeymap() Keymap {
	return Keymap{Up: 103, Down: 108, Select: 28}
}

// Evdev reads button presses from a Linux input device such as
// /dev/input/event0.
type Evdev struct {
	f      *os.File
	events chan Event
	log    zerolog.Logger
}

var _ Source = (*Evdev)(nil)

// OpenEvdev opens the device at path and starts decoding key presses in
// the background.
func OpenEvdev(path string, km Keymap, log zerolog.Logger) (*Evdev, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening input device %s", path)
	}
	e := &Evdev{
		f:      f,
		events: make(chan Event, 8),
		log:    log,
	}
	go e.read(km)
	return e, nil
}

// Events returns the press stream.
func (e *Evdev) Events() <-chan Event { return e.events }

// Close stops the reader. The events channel closes once the pending read
// returns.
func (e *Evdev) Close() error {
	return e.f.Close()
}

func (e *Evdev) read(km Keymap) {
	defer close(e.events)
	for {
		var raw rawEvent
		if err := binary.Read(e.f, binary.LittleEndian, &raw); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				e.log.Warn().Err(err).Msg("input device read failed")
			}
			return
		}
		if raw.Type != evKey || raw.Value != keyPressed {
			continue
		}
		var ev Event
		switch raw.Code {
		case km.Up:
			ev = Up
		case km.Down:
			ev = Down
		case km.Select:
			ev = Select
		default:
			continue
		}
		select {
		case e.events <- ev:
		default:
			// Presses that arrive while the loop is busy are dropped.
		}
	}
}
