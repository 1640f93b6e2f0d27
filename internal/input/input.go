// Package input delivers presses from the physical buttons next to the
// screen. The UI loop consumes a plain event stream and never sees the
// underlying device.
package input

// Event is a decoded button press.
type Event int

const (
	Up Event = iota
	Down
	Select
)

func (e Event) String() string {
	switch e {
	case Up:
		return "up"
	case Down:
		return "down"
	case Select:
		return "select"
	default:
		return "unknown"
	}
}

// Source emits button events. The channel closes when the source shuts
// down, either through Close or because the device went away.
type Source interface {
	Events() <-chan Event
	Close() error
}
