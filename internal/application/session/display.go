package session

import (
	"sync"
	"time"

	"github.com/doeshing/recogaize/internal/domain"
)

// AppendListener is called after an entry is added to the history.
type AppendListener func(history []domain.CaptionResult)

// Display presents the current request state and keeps the bounded
// history of successful captions, newest first.
type Display struct {
	mu        sync.RWMutex
	state     domain.RequestState
	history   []domain.CaptionResult
	marker    string
	now       func() time.Time
	listeners []AppendListener
}

// DisplayOption configures a Display.
type DisplayOption func(*Display)

// WithClock overrides the timestamp source for history entries.
func WithClock(now func() time.Time) DisplayOption {
	return func(d *Display) {
		d.now = now
	}
}

// NewDisplay returns an empty Display.
func NewDisplay(opts ...DisplayOption) *Display {
	d := &Display{now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// OnAppend registers a listener for history growth.
func (d *Display) OnAppend(l AppendListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, l)
}

// Observe records state and applies the history rule. It satisfies Observer.
func (d *Display) Observe(state domain.RequestState) {
	d.mu.Lock()
	d.state = state
	next, marker, appended := domain.AppendIfNew(d.history, d.marker, state, d.now())
	d.history, d.marker = next, marker
	var listeners []AppendListener
	var snapshot []domain.CaptionResult
	if appended {
		listeners = append(listeners, d.listeners...)
		snapshot = cloneHistory(d.history)
	}
	d.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
}

// State returns the last observed request state.
func (d *Display) State() domain.RequestState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// History returns a copy of the history, newest first.
func (d *Display) History() []domain.CaptionResult {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return cloneHistory(d.history)
}

// Len reports the number of history entries.
func (d *Display) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.history)
}

// Clear empties the history and forgets the last appended caption, so the
// same caption may be appended again.
func (d *Display) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.history = nil
	d.marker = ""
}

func cloneHistory(in []domain.CaptionResult) []domain.CaptionResult {
	out := make([]domain.CaptionResult, len(in))
	copy(out, in)
	return out
}
