// Package menu holds the navigation model for the on-device UI. Everything
// that can appear on screen implements Item; List composes items into a
// column and routes button presses to whichever one holds focus.
package menu

import (
	"context"

	"github.com/dogi/pISO/internal/display"
)

// Item is one entry in the menu tree.
//
// Next and Prev report whether the press was consumed. An item at its
// boundary returns false so the enclosing container can move its own focus
// instead. Leaf items always return false.
type Item interface {
	// Label is the row's short plain-text name. Drawing goes through
	// Render; Label is for logs and messages.
	Label() string
	// Render draws the item. focused is true when the item currently
	// holds focus along the active path.
	Render(focused bool) *display.Bitmap
	// Activate handles a select press. The bool reports whether the
	// press was consumed.
	Activate(ctx context.Context) (bool, error)
	Next() bool
	Prev() bool
}

// focusable is implemented by composite items whose internal focus should
// reset when the enclosing container moves onto them.
type focusable interface {
	FocusFirst()
	FocusLast()
}

// Line typesets a single menu row, inverted when focused. The two-pixel
// margin keeps the selection bar from hugging the glyphs.
func Line(ts display.Typesetter, text string, focused bool) *display.Bitmap {
	txt := ts.Text(text)
	row := display.NewBitmap(txt.Width()+4, ts.LineHeight())
	row.Blit(txt, 2, 0)
	if focused {
		row.InvertRect(0, 0, row.Width(), row.Height())
	}
	return row
}
