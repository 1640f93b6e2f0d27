package ui

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dogi/pISO/internal/display"
	"github.com/dogi/pISO/internal/input"
)

const gb = 1 << 30

func TestPickerStateStepsAndClamps(t *testing.T) {
	p := newPickerState(gb, 3*gb)
	assert.EqualValues(t, gb, p.size)

	p.up()
	p.up()
	assert.EqualValues(t, 3*gb, p.size)
	p.up()
	assert.EqualValues(t, 3*gb, p.size)

	p.down()
	p.down()
	assert.EqualValues(t, gb, p.size)
	assert.False(t, p.cancel)

	p.down()
	assert.True(t, p.cancel)
	assert.EqualValues(t, gb, p.size)

	p.up()
	assert.False(t, p.cancel)
	assert.EqualValues(t, gb, p.size)
}

func TestPickerStateStartsClampedToFree(t *testing.T) {
	p := newPickerState(2*gb, gb)
	assert.EqualValues(t, gb, p.size)
	assert.False(t, p.cancel)
}

func TestPickerStateEmptyPoolOnlyCancels(t *testing.T) {
	p := newPickerState(gb, 0)
	assert.True(t, p.cancel)
	p.up()
	assert.True(t, p.cancel)
}

func TestPickerFrameShowsCancel(t *testing.T) {
	ts := display.Font5x7{}
	p := newPickerState(gb, 2*gb)
	normal := p.frame(ts)
	p.cancel = true
	cancel := p.frame(ts)
	assert.NotEqual(t, normal, cancel)
}

func TestStepPickerConfirm(t *testing.T) {
	screen := newFakeScreen()
	events := make(chan input.Event, 4)
	sp := NewStepPicker(screen, events, display.Font5x7{}, gb)

	events <- input.Up
	events <- input.Select

	size, ok, err := sp.PickSize(context.Background(), 4*gb)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 2*gb, size)
	assert.Greater(t, screen.frames(), 0)
}

func TestStepPickerCancel(t *testing.T) {
	events := make(chan input.Event, 4)
	sp := NewStepPicker(newFakeScreen(), events, display.Font5x7{}, gb)

	events <- input.Down
	events <- input.Select

	size, ok, err := sp.PickSize(context.Background(), 4*gb)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, size)
}

func TestStepPickerContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sp := NewStepPicker(newFakeScreen(), make(chan input.Event), display.Font5x7{}, gb)

	_, _, err := sp.PickSize(ctx, gb)
	assert.Error(t, err)
}

func TestStepPickerInputClosed(t *testing.T) {
	events := make(chan input.Event)
	close(events)
	sp := NewStepPicker(newFakeScreen(), events, display.Font5x7{}, gb)

	_, _, err := sp.PickSize(context.Background(), gb)
	assert.Error(t, err)
}

func TestStepPickerPropagatesDrawFailure(t *testing.T) {
	screen := newFakeScreen()
	screen.drawErr = errors.New("panel gone")
	sp := NewStepPicker(screen, make(chan input.Event, 1), display.Font5x7{}, gb)

	_, _, err := sp.PickSize(context.Background(), gb)
	assert.ErrorContains(t, err, "panel gone")
}
