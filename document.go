package svgview

import (
	"context"
	"time"
)

// DocumentSource reads the current text of a document. Open returns an error
// wrapping ErrSourceUnavailable when the document is missing or unreadable.
type DocumentSource interface {
	Open(ctx context.Context, uri URI) (string, error)
}

// Notifier delivers change notifications for documents. Subscribe returns a
// function that cancels the subscription; calling it more than once is safe.
type Notifier interface {
	Subscribe(fn func(URI)) (unsubscribe func())
}

// Display is a host-owned rendering target. The manager pushes HTML into it
// but never creates or destroys it.
type Display interface {
	SetContent(html string)
}

// Timer is an armed callback that can be cancelled.
type Timer interface {
	// Stop prevents the callback from running. It returns false if the
	// callback already ran or the timer was already stopped.
	Stop() bool
}

// Scheduler arms delayed callbacks. The default implementation wraps
// time.AfterFunc; tests substitute a manual clock.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
