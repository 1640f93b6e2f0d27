// Package ui drives the two front ends: the on-device loop over the OLED
// and buttons, and the bubbletea simulator for a terminal. Both run the
// same registry and menu; only the frame sink and the input source differ.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/dogi/pISO/internal/display"
	"github.com/dogi/pISO/internal/menu"
	"github.com/dogi/pISO/internal/sysinfo"
	"github.com/dogi/pISO/internal/vdrive"
	"github.com/dogi/pISO/internal/version"
)

// statsItem is the host health row. It renders from the last sample it
// was handed; the loop and the simulator refresh it on their own clock so
// drawing never probes the host.
type statsItem struct {
	ts   display.Typesetter
	snap sysinfo.Snapshot
}

var _ menu.Item = (*statsItem)(nil)

func newStatsItem(ts display.Typesetter) *statsItem {
	return &statsItem{ts: ts}
}

// SetSnapshot installs a fresh sample.
func (s *statsItem) SetSnapshot(snap sysinfo.Snapshot) { s.snap = snap }

func (s *statsItem) Label() string { return "Stats" }

func (s *statsItem) Render(focused bool) *display.Bitmap {
	text := fmt.Sprintf("up %s mem %.0f%%", formatUptime(s.snap.Uptime), s.snap.MemUsedPercent)
	if s.snap.CPUTempC > 0 {
		text += fmt.Sprintf(" %.0fC", s.snap.CPUTempC)
	}
	return menu.Line(s.ts, text, focused)
}

func (s *statsItem) Activate(context.Context) (bool, error) { return false, nil }
func (s *statsItem) Next() bool                             { return false }
func (s *statsItem) Prev() bool                             { return false }

// aboutItem is the version row with the pool usage figure.
type aboutItem struct {
	ts  display.Typesetter
	reg *vdrive.Registry
}

var _ menu.Item = (*aboutItem)(nil)

func (a *aboutItem) Label() string { return "About" }

func (a *aboutItem) Render(focused bool) *display.Bitmap {
	text := fmt.Sprintf("%s %.0f%% used", version.GetVersionString(), a.reg.PercentUsed())
	return menu.Line(a.ts, text, focused)
}

func (a *aboutItem) Activate(context.Context) (bool, error) { return false, nil }
func (a *aboutItem) Next() bool                             { return false }
func (a *aboutItem) Prev() bool                             { return false }

// newRoot assembles the top-level menu: the drive registry, then stats,
// then about. The stats handle is returned so the owner can push samples.
func newRoot(reg *vdrive.Registry, ts display.Typesetter) (*menu.List, *statsItem) {
	stats := newStatsItem(ts)
	about := &aboutItem{ts: ts, reg: reg}
	return menu.NewList("root", reg, stats, about), stats
}

func formatUptime(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
