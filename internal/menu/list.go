package menu

import (
	"context"

	"github.com/dogi/pISO/internal/display"
)

// List is a vertical stack of items with a single focused entry. A List is
// itself an Item, so lists nest: presses go to the focused child first and
// only move the list's own focus when the child reports its boundary.
type List struct {
	label string
	items []Item
	focus int
}

var _ Item = (*List)(nil)
var _ focusable = (*List)(nil)

// NewList builds a list over the given items with focus on the first one.
func NewList(label string, items ...Item) *List {
	return &List{label: label, items: items}
}

// Label returns the list's name.
func (l *List) Label() string { return l.label }

// Len returns the number of items.
func (l *List) Len() int { return len(l.items) }

// FocusIndex returns the index of the focused item.
func (l *List) FocusIndex() int { return l.focus }

// Focused returns the focused item, or nil for an empty list.
func (l *List) Focused() Item {
	if len(l.items) == 0 {
		return nil
	}
	return l.items[l.focus]
}

// Items returns the children in display order. The slice is shared;
// callers must not mutate it.
func (l *List) Items() []Item { return l.items }

// SetItems replaces the list's children. Focus is clamped so it stays on a
// valid entry when the list shrinks.
func (l *List) SetItems(items []Item) {
	l.items = items
	if l.focus >= len(items) {
		l.focus = len(items) - 1
	}
	if l.focus < 0 {
		l.focus = 0
	}
}

// FocusFirst moves focus to the first item, recursing into it when it is
// itself a container.
func (l *List) FocusFirst() {
	l.focus = 0
	if f, ok := l.Focused().(focusable); ok {
		f.FocusFirst()
	}
}

// FocusLast moves focus to the last item, recursing into it when it is
// itself a container.
func (l *List) FocusLast() {
	if len(l.items) > 0 {
		l.focus = len(l.items) - 1
	}
	if f, ok := l.Focused().(focusable); ok {
		f.FocusLast()
	}
}

// Next moves focus one entry down. The focused child gets the press first;
// when it reports its boundary the list advances its own focus. At the
// bottom of the list the press is not consumed.
func (l *List) Next() bool {
	cur := l.Focused()
	if cur == nil {
		return false
	}
	if cur.Next() {
		return true
	}
	if l.focus >= len(l.items)-1 {
		return false
	}
	l.focus++
	if f, ok := l.Focused().(focusable); ok {
		f.FocusFirst()
	}
	return true
}

// Prev moves focus one entry up, mirroring Next.
func (l *List) Prev() bool {
	cur := l.Focused()
	if cur == nil {
		return false
	}
	if cur.Prev() {
		return true
	}
	if l.focus == 0 {
		return false
	}
	l.focus--
	if f, ok := l.Focused().(focusable); ok {
		f.FocusLast()
	}
	return true
}

// Activate forwards the select press to the focused item.
func (l *List) Activate(ctx context.Context) (bool, error) {
	cur := l.Focused()
	if cur == nil {
		return false, nil
	}
	return cur.Activate(ctx)
}

// Render stacks the children top to bottom. Only the child on the focused
// path renders with focus, so an inactive nested list shows no selection
// bar.
func (l *List) Render(focused bool) *display.Bitmap {
	rows := make([]*display.Bitmap, len(l.items))
	for i, it := range l.items {
		rows[i] = it.Render(focused && i == l.focus)
	}
	return display.Stack(rows...)
}
