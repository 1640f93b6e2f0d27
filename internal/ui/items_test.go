package ui

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dogi/pISO/internal/display"
	"github.com/dogi/pISO/internal/menu"
	"github.com/dogi/pISO/internal/sysinfo"
	"github.com/dogi/pISO/internal/vdrive"
)

func newUITestRegistry(t *testing.T, pool vdrive.Pool, opts vdrive.Options) *vdrive.Registry {
	t.Helper()
	opts.Logger = zerolog.Nop()
	reg, err := vdrive.NewRegistry(context.Background(), pool, opts)
	require.NoError(t, err)
	return reg
}

func TestFormatUptime(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0m"},
		{5 * time.Minute, "5m"},
		{3*time.Hour + 12*time.Minute, "3h12m"},
		{26*time.Hour + 5*time.Minute, "26h05m"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, formatUptime(c.in))
	}
}

func TestStatsItemRendersSnapshot(t *testing.T) {
	ts := display.Font5x7{}
	s := newStatsItem(ts)
	s.SetSnapshot(sysinfo.Snapshot{
		Uptime:         3*time.Hour + 12*time.Minute,
		MemUsedPercent: 40.4,
		CPUTempC:       52.3,
	})
	assert.Equal(t, menu.Line(ts, "up 3h12m mem 40% 52C", false), s.Render(false))
}

func TestStatsItemOmitsMissingTemperature(t *testing.T) {
	ts := display.Font5x7{}
	s := newStatsItem(ts)
	s.SetSnapshot(sysinfo.Snapshot{Uptime: 5 * time.Minute, MemUsedPercent: 12})
	assert.Equal(t, menu.Line(ts, "up 5m mem 12%", false), s.Render(false))
}

func TestAboutItemShowsUsage(t *testing.T) {
	ts := display.Font5x7{}
	pool := vdrive.NewMemoryPool(1000)
	reg := newUITestRegistry(t, pool, vdrive.Options{Typesetter: ts})

	_, err := reg.AddDrive(context.Background(), "", 250)
	require.NoError(t, err)

	about := &aboutItem{ts: ts, reg: reg}
	assert.Equal(t, menu.Line(ts, "piso v1.3.0 25% used", false), about.Render(false))
}

func TestRootMenuOrder(t *testing.T) {
	ts := display.Font5x7{}
	reg := newUITestRegistry(t, vdrive.NewMemoryPool(1000), vdrive.Options{Typesetter: ts})

	root, stats := newRoot(reg, ts)
	require.NotNil(t, stats)
	require.Equal(t, 3, root.Len())
	assert.Equal(t, "Drives", root.Items()[0].Label())
	assert.Equal(t, "Stats", root.Items()[1].Label())
	assert.Equal(t, "About", root.Items()[2].Label())
}
