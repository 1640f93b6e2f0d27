package ui

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dogi/pISO/internal/display"
	"github.com/dogi/pISO/internal/input"
	"github.com/dogi/pISO/internal/vdrive"
)

type fakeScreen struct {
	mu      sync.Mutex
	draws   int
	last    *display.Bitmap
	drawErr error
}

func newFakeScreen() *fakeScreen { return &fakeScreen{} }

func (f *fakeScreen) Size() (int, int) { return 128, 64 }

func (f *fakeScreen) Draw(b *display.Bitmap) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.drawErr != nil {
		return f.drawErr
	}
	f.draws++
	f.last = b
	return nil
}

func (f *fakeScreen) Close() error { return nil }

func (f *fakeScreen) frames() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draws
}

type fakeExporter struct {
	mu   sync.Mutex
	last []string
	err  error
}

func (f *fakeExporter) Sync(paths []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.last = append([]string(nil), paths...)
	return nil
}

func (f *fakeExporter) exported() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.last...)
}

func newTestLoop(t *testing.T, pool vdrive.Pool) (*Loop, chan input.Event, *fakeScreen, *fakeExporter) {
	t.Helper()
	events := make(chan input.Event, 8)
	screen := newFakeScreen()
	export := &fakeExporter{}

	var loop *Loop
	action := func(ctx context.Context, d vdrive.Info) (bool, error) {
		return loop.ToggleExport(ctx, d)
	}
	reg := newUITestRegistry(t, pool, vdrive.Options{Action: action})

	loop, err := NewLoop(LoopConfig{
		Registry: reg,
		Device:   screen,
		Events:   events,
		Exporter: export,
		DevPath:  func(d vdrive.Info) string { return "/dev/piso/" + d.Name },
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)
	return loop, events, screen, export
}

func startLoop(t *testing.T, loop *Loop) (context.CancelFunc, chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	return cancel, done
}

func waitStopped(t *testing.T, done chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(3 * time.Second):
		t.Fatal("loop did not stop")
		return nil
	}
}

func TestLoopExportsDrivesOnStart(t *testing.T) {
	pool := vdrive.NewMemoryPool(1000)
	pool.Seed(
		vdrive.Volume{ID: "a", Name: "alpha", Size: 100},
		vdrive.Volume{ID: "b", Name: "beta", Size: 200},
	)
	loop, _, screen, export := newTestLoop(t, pool)
	cancel, done := startLoop(t, loop)

	assert.Eventually(t, func() bool {
		return len(export.exported()) == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"/dev/piso/alpha", "/dev/piso/beta"}, export.exported())
	assert.Eventually(t, func() bool { return screen.frames() > 0 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, waitStopped(t, done))
}

func TestLoopToggleHidesAndRestoresDrive(t *testing.T) {
	pool := vdrive.NewMemoryPool(1000)
	pool.Seed(vdrive.Volume{ID: "a", Name: "alpha", Size: 100})
	loop, events, _, export := newTestLoop(t, pool)
	cancel, done := startLoop(t, loop)
	defer func() {
		cancel()
		waitStopped(t, done)
	}()

	require.Eventually(t, func() bool {
		return len(export.exported()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Focus starts on the drive row; select hides it.
	events <- input.Select
	assert.Eventually(t, func() bool {
		return len(export.exported()) == 0
	}, 2*time.Second, 10*time.Millisecond)

	events <- input.Select
	assert.Eventually(t, func() bool {
		return len(export.exported()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLoopRescanPicksUpNewVolumes(t *testing.T) {
	pool := vdrive.NewMemoryPool(1000)
	pool.Seed(vdrive.Volume{ID: "a", Name: "alpha", Size: 100})
	loop, _, _, export := newTestLoop(t, pool)
	cancel, done := startLoop(t, loop)
	defer func() {
		cancel()
		waitStopped(t, done)
	}()

	require.Eventually(t, func() bool {
		return len(export.exported()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	pool.Seed(vdrive.Volume{ID: "b", Name: "beta", Size: 200})
	loop.RequestRescan()

	assert.Eventually(t, func() bool {
		return len(export.exported()) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLoopStopsWhenInputCloses(t *testing.T) {
	loop, events, _, _ := newTestLoop(t, vdrive.NewMemoryPool(1000))
	_, done := startLoop(t, loop)

	close(events)
	assert.Error(t, waitStopped(t, done))
}

func TestLoopStopsOnContextCancel(t *testing.T) {
	loop, _, _, _ := newTestLoop(t, vdrive.NewMemoryPool(1000))
	cancel, done := startLoop(t, loop)

	cancel()
	assert.NoError(t, waitStopped(t, done))
}

func TestLoopRequiresCoreWiring(t *testing.T) {
	_, err := NewLoop(LoopConfig{})
	assert.Error(t, err)
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, "not enough free space", statusForError(vdrive.ErrInsufficientSpace))
	assert.Equal(t, "storage pool unavailable", statusForError(errors.Wrap(vdrive.ErrPoolUnavailable, "vgs")))
	assert.Equal(t, "drive vanished", statusForError(vdrive.ErrNotFound))
	assert.Equal(t, "operation failed", statusForError(errors.New("boom")))
}

func TestStatusLineExpires(t *testing.T) {
	var s statusLine
	assert.False(t, s.active())
	s.set("hello", false)
	assert.True(t, s.active())
	s.until = time.Now().Add(-time.Second)
	assert.False(t, s.active())
}
