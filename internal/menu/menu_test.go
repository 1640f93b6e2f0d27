package menu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dogi/pISO/internal/display"
)

type leaf struct {
	label     string
	activated int
	consume   bool
}

func (l *leaf) Label() string { return l.label }

func (l *leaf) Render(focused bool) *display.Bitmap {
	return Line(display.Font5x7{}, l.label, focused)
}

func (l *leaf) Activate(context.Context) (bool, error) {
	l.activated++
	return l.consume, nil
}

func (l *leaf) Next() bool { return false }
func (l *leaf) Prev() bool { return false }

func TestListClampsAtBoundaries(t *testing.T) {
	l := NewList("root", &leaf{label: "a"}, &leaf{label: "b"}, &leaf{label: "c"})

	assert.False(t, l.Prev(), "top boundary should not consume")
	assert.Equal(t, 0, l.FocusIndex())

	assert.True(t, l.Next())
	assert.True(t, l.Next())
	assert.Equal(t, 2, l.FocusIndex())

	assert.False(t, l.Next(), "bottom boundary should not consume")
	assert.Equal(t, 2, l.FocusIndex())

	assert.True(t, l.Prev())
	assert.Equal(t, 1, l.FocusIndex())
}

func TestNestedListDelegation(t *testing.T) {
	inner := NewList("inner", &leaf{label: "x"}, &leaf{label: "y"})
	outer := NewList("outer", inner, &leaf{label: "tail"})

	// First press moves inside the inner list.
	assert.True(t, outer.Next())
	assert.Equal(t, 0, outer.FocusIndex())
	assert.Equal(t, 1, inner.FocusIndex())

	// Inner list is exhausted, so the outer list moves on.
	assert.True(t, outer.Next())
	assert.Equal(t, 1, outer.FocusIndex())

	// Both lists at the bottom: the press bubbles all the way out.
	assert.False(t, outer.Next())

	// Coming back up re-enters the inner list at its last entry.
	assert.True(t, outer.Prev())
	assert.Equal(t, 0, outer.FocusIndex())
	assert.Equal(t, 1, inner.FocusIndex())

	assert.True(t, outer.Prev())
	assert.Equal(t, 0, inner.FocusIndex())
	assert.False(t, outer.Prev())
}

func TestListFocusHooksResetNestedFocus(t *testing.T) {
	inner := NewList("inner", &leaf{label: "x"}, &leaf{label: "y"})
	outer := NewList("outer", &leaf{label: "head"}, inner)

	require.True(t, outer.Next())
	require.True(t, outer.Next())
	assert.Equal(t, 1, inner.FocusIndex())

	// Walk back out, leave the inner focus parked on the last entry, and
	// re-enter from above: entry resets it to the top.
	require.True(t, outer.Prev())
	require.True(t, outer.Prev())
	inner.FocusLast()
	require.Equal(t, 1, inner.FocusIndex())

	require.True(t, outer.Next())
	assert.Equal(t, 1, outer.FocusIndex())
	assert.Equal(t, 0, inner.FocusIndex())
}

func TestListSetItemsClampsFocus(t *testing.T) {
	l := NewList("root", &leaf{label: "a"}, &leaf{label: "b"}, &leaf{label: "c"})
	l.FocusLast()
	require.Equal(t, 2, l.FocusIndex())

	l.SetItems([]Item{&leaf{label: "only"}})
	assert.Equal(t, 0, l.FocusIndex())
	assert.Equal(t, "only", l.Focused().Label())

	l.SetItems(nil)
	assert.Equal(t, 0, l.FocusIndex())
	assert.Nil(t, l.Focused())
	assert.False(t, l.Next())
	assert.False(t, l.Prev())
}

func TestListActivateDelegates(t *testing.T) {
	a := &leaf{label: "a", consume: true}
	b := &leaf{label: "b"}
	l := NewList("root", a, b)

	consumed, err := l.Activate(context.Background())
	require.NoError(t, err)
	assert.True(t, consumed)
	assert.Equal(t, 1, a.activated)
	assert.Zero(t, b.activated)

	require.True(t, l.Next())
	consumed, err = l.Activate(context.Background())
	require.NoError(t, err)
	assert.False(t, consumed)
	assert.Equal(t, 1, b.activated)
}

func TestListRenderShowsSingleSelection(t *testing.T) {
	inner := NewList("inner", &leaf{label: "x"})
	outer := NewList("outer", inner, &leaf{label: "tail"})
	require.True(t, outer.Next())

	frame := outer.Render(true)
	require.NotZero(t, frame.Height())

	// The inner list lost focus, so its row must not be inverted while
	// the tail row is. Inverted rows have their margin pixels lit.
	assert.False(t, frame.On(0, 0))
	assert.True(t, frame.On(0, display.Font5x7{}.LineHeight()))
}

func TestLineInversion(t *testing.T) {
	ts := display.Font5x7{}
	plain := Line(ts, "ok", false)
	hot := Line(ts, "ok", true)

	require.Equal(t, plain.Width(), hot.Width())
	require.Equal(t, plain.Height(), hot.Height())
	for y := 0; y < plain.Height(); y++ {
		for x := 0; x < plain.Width(); x++ {
			assert.NotEqual(t, plain.On(x, y), hot.On(x, y))
		}
	}
}
