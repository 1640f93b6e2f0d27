package ui

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/dogi/pISO/internal/display"
	"github.com/dogi/pISO/internal/input"
	"github.com/dogi/pISO/internal/menu"
	"github.com/dogi/pISO/internal/sysinfo"
	"github.com/dogi/pISO/internal/vdrive"
)

const (
	statsInterval = 5 * time.Second
	statusTTL     = 4 * time.Second
)

// Exporter publishes backing files to the USB host. The loop hands it the
// device paths of every drive that is not hidden, in menu order.
type Exporter interface {
	Sync(paths []string) error
}

// LoopConfig wires the event loop to its devices.
type LoopConfig struct {
	Registry    *vdrive.Registry
	Device      display.Device
	Events      <-chan input.Event
	Exporter    Exporter
	DevPath     func(vdrive.Info) string
	Typesetter  display.Typesetter
	RescanEvery time.Duration
	Logger      zerolog.Logger
}

// Loop owns the screen, the buttons, and the registry. Everything below
// Run happens on a single goroutine; only RequestRescan may be called
// from outside it.
type Loop struct {
	reg     *vdrive.Registry
	dev     display.Device
	events  <-chan input.Event
	export  Exporter
	devPath func(vdrive.Info) string
	ts      display.Typesetter
	every   time.Duration
	log     zerolog.Logger

	root   *menu.List
	stats  *statsItem
	hidden map[vdrive.VolumeID]bool
	rescan chan struct{}
	status statusLine
}

// NewLoop assembles the loop. The registry's drive action should already
// point at ToggleExport; see cmd/run.
func NewLoop(cfg LoopConfig) (*Loop, error) {
	if cfg.Registry == nil {
		return nil, errors.New("loop needs a registry")
	}
	if cfg.Device == nil {
		return nil, errors.New("loop needs a display")
	}
	if cfg.Events == nil {
		return nil, errors.New("loop needs an input stream")
	}
	ts := cfg.Typesetter
	if ts == nil {
		ts = display.Font5x7{}
	}
	root, stats := newRoot(cfg.Registry, ts)
	return &Loop{
		reg:     cfg.Registry,
		dev:     cfg.Device,
		events:  cfg.Events,
		export:  cfg.Exporter,
		devPath: cfg.DevPath,
		ts:      ts,
		every:   cfg.RescanEvery,
		log:     cfg.Logger,
		root:    root,
		stats:   stats,
		hidden:  make(map[vdrive.VolumeID]bool),
		rescan:  make(chan struct{}, 1),
	}, nil
}

// RequestRescan schedules a pool rescan. Safe to call from signal
// handlers; a rescan already pending is collapsed into one.
func (l *Loop) RequestRescan() {
	select {
	case l.rescan <- struct{}{}:
	default:
	}
}

// ToggleExport flips a drive between exported and hidden. It is the
// activate action handed to the registry for every drive row; the loop
// syncs the exporter after the consumed press.
func (l *Loop) ToggleExport(ctx context.Context, d vdrive.Info) (bool, error) {
	l.hidden[d.ID] = !l.hidden[d.ID]
	if l.hidden[d.ID] {
		l.status.set(d.Name+" hidden", false)
	} else {
		l.status.set(d.Name+" exported", false)
	}
	return true, nil
}

// Run drives the menu until ctx is cancelled or the input stream ends.
func (l *Loop) Run(ctx context.Context) error {
	l.stats.SetSnapshot(sysinfo.Collect(ctx))
	l.syncExport()
	l.draw()

	statsTick := time.NewTicker(statsInterval)
	defer statsTick.Stop()

	var rescanTick <-chan time.Time
	if l.every > 0 {
		t := time.NewTicker(l.every)
		defer t.Stop()
		rescanTick = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-l.events:
			if !ok {
				return errors.New("input device closed")
			}
			l.handleEvent(ctx, ev)
			l.draw()
		case <-l.rescan:
			l.rescanNow(ctx)
			l.draw()
		case <-rescanTick:
			l.rescanNow(ctx)
			l.draw()
		case <-statsTick.C:
			l.stats.SetSnapshot(sysinfo.Collect(ctx))
			l.draw()
		}
	}
}

func (l *Loop) handleEvent(ctx context.Context, ev input.Event) {
	switch ev {
	case input.Up:
		l.root.Prev()
	case input.Down:
		l.root.Next()
	case input.Select:
		consumed, err := l.root.Activate(ctx)
		if err != nil {
			l.log.Warn().Err(err).Msg("activation failed")
			l.status.set(statusForError(err), true)
			return
		}
		if consumed {
			l.syncExport()
		}
	}
}

func (l *Loop) rescanNow(ctx context.Context) {
	if err := l.reg.Rebuild(ctx); err != nil {
		if errors.Is(err, vdrive.ErrCorruptVolume) {
			l.log.Warn().Err(err).Msg("rescan skipped corrupt volumes")
			l.status.set("skipped corrupt volume", true)
		} else {
			l.log.Error().Err(err).Msg("rescan failed")
			l.status.set("pool unavailable", true)
		}
	}
	known := make(map[vdrive.VolumeID]bool, l.reg.Len())
	for _, d := range l.reg.Drives() {
		known[d.ID] = true
	}
	for id := range l.hidden {
		if !known[id] {
			delete(l.hidden, id)
		}
	}
	l.syncExport()
}

func (l *Loop) syncExport() {
	if l.export == nil || l.devPath == nil {
		return
	}
	drives := l.reg.Drives()
	paths := make([]string, 0, len(drives))
	for _, d := range drives {
		if l.hidden[d.ID] {
			continue
		}
		paths = append(paths, l.devPath(d))
	}
	if err := l.export.Sync(paths); err != nil {
		l.log.Error().Err(err).Msg("usb export sync failed")
		l.status.set("usb export failed", true)
	}
}

func (l *Loop) draw() {
	w, h := l.dev.Size()
	frame := display.NewBitmap(w, h)
	frame.Blit(l.root.Render(true), 0, 0)
	if l.status.active() {
		frame.Blit(l.ts.Text(l.status.text), 0, h-l.ts.LineHeight())
	}
	if err := l.dev.Draw(frame); err != nil {
		l.log.Error().Err(err).Msg("frame write failed")
	}
}

func statusForError(err error) string {
	switch {
	case errors.Is(err, vdrive.ErrInsufficientSpace):
		return "not enough free space"
	case errors.Is(err, vdrive.ErrPoolUnavailable):
		return "storage pool unavailable"
	case errors.Is(err, vdrive.ErrNotFound):
		return "drive vanished"
	default:
		return "operation failed"
	}
}

// statusLine is a transient one-line notice shown at the bottom of a
// frame. It expires on its own; callers just set and render.
type statusLine struct {
	text  string
	isErr bool
	until time.Time
}

func (s *statusLine) set(text string, isErr bool) {
	s.text = text
	s.isErr = isErr
	s.until = time.Now().Add(statusTTL)
}

func (s *statusLine) active() bool {
	return s.text != "" && time.Now().Before(s.until)
}
