package svgview

import "time"

// Event is a sealed interface representing a surface lifecycle change
// reported by a Manager. The unexported marker method prevents external
// implementations.
type Event interface {
	event()
}

// EventRegistered signals that a surface was opened for a source.
type EventRegistered struct {
	URI URI
}

func (EventRegistered) event() {}

// EventUnregistered signals that a surface was removed.
type EventUnregistered struct {
	URI URI
}

func (EventUnregistered) event() {}

// EventRendered signals that fresh HTML was pushed into a surface.
type EventRendered struct {
	URI  URI
	At   time.Time
	Size int
}

func (EventRendered) event() {}

// EventRefreshFailed signals that a background refresh was abandoned.
// The surface keeps its previous content.
type EventRefreshFailed struct {
	URI URI
	Err error
}

func (EventRefreshFailed) event() {}

// EventActiveChanged signals that a surface gained or lost focus.
type EventActiveChanged struct {
	URI    URI
	Active bool
}

func (EventActiveChanged) event() {}

// Interface compliance checks.
var (
	_ Event = EventRegistered{}
	_ Event = EventUnregistered{}
	_ Event = EventRendered{}
	_ Event = EventRefreshFailed{}
	_ Event = EventActiveChanged{}
)
