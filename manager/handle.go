package manager

import "sync"

// Handle is the shared termination gate any actor under a Manager can
// trip to unblock Manager.Run. It is exposed to actors so a handler can
// call handle.Terminate() to ask the manager to wind down (e.g. the
// local ping/pong scenario terminating itself after N rounds).
type Handle struct {
	once sync.Once
	ch   chan struct{}
}

func newHandle() *Handle {
	return &Handle{ch: make(chan struct{})}
}

// Terminate closes the gate. Safe to call more than once or
// concurrently.
func (h *Handle) Terminate() {
	h.once.Do(func() { close(h.ch) })
}

// Done returns a channel closed once Terminate has been called.
func (h *Handle) Done() <-chan struct{} {
	return h.ch
}
