package client

// VisibilityPolicy reports whether an element has entered the viewport.
// Observe returns a stream of visibility changes; consumers read it until
// the first true and then stop watching, so the gate fires once.
type VisibilityPolicy interface {
	Observe() <-chan bool
}

// AlwaysVisible is the no-op policy for hosts without a viewport, such as
// server-side rendering. Every observed element is immediately visible.
type AlwaysVisible struct{}

// Observe emits a single true and closes the stream
func (AlwaysVisible) Observe() <-chan bool {
	ch := make(chan bool, 1)
	ch <- true
	close(ch)
	return ch
}

// VisibilitySignal is a policy fed by the host's intersection events.
// The UI adapter calls Enter when the element crosses into the viewport.
type VisibilitySignal struct {
	ch chan bool
}

// NewVisibilitySignal creates a signal-driven visibility policy
func NewVisibilitySignal() *VisibilitySignal {
	return &VisibilitySignal{ch: make(chan bool, 1)}
}

// Observe returns the event stream
func (s *VisibilitySignal) Observe() <-chan bool {
	return s.ch
}

// Enter records that the element became visible. Repeat calls while an
// event is already queued are dropped; the consumer only acts on the
// first true anyway.
func (s *VisibilitySignal) Enter() {
	select {
	case s.ch <- true:
	default:
	}
}
