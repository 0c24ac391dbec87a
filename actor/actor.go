package actor

import (
	"reflect"
	"sync/atomic"
)

// HandlerFunc processes one envelope for a registered message kind.
type HandlerFunc func(env *Envelope)

// Start and Shutdown are the synthetic lifecycle messages a Manager
// delivers: Start once after an actor's worker is launched, Shutdown
// once when the manager ends. Handling either is optional.
type Start struct{}
type Shutdown struct{}

// Actor is the contract a Manager drives. Bind supplies the actor's own
// reference once, at manage time; Dispatch delivers one envelope at a
// time, never concurrently (I1); Running/Stop let a handler leave its
// worker pool without tearing down the rest of the manager.
type Actor interface {
	Bind(self ActorRef)
	Self() ActorRef
	Dispatch(env *Envelope)
	Running() bool
	Stop()
}

// Base is embedded by concrete actor types. It owns the handler table
// and self reference; application state stays private to the embedding
// type and is never touched by the runtime.
type Base struct {
	self     ActorRef
	handlers map[reflect.Type]HandlerFunc
	alive    atomic.Bool
}

// NewBase constructs an empty, running Base. Concrete actors call this
// in their constructor and register handlers before returning.
func NewBase() *Base {
	b := &Base{handlers: make(map[reflect.Type]HandlerFunc)}
	b.alive.Store(true)
	return b
}

// Handle registers fn for the concrete type of sample. sample is only
// used for its type; pass a zero value of the message struct.
func (b *Base) Handle(sample any, fn HandlerFunc) {
	b.handlers[reflect.TypeOf(sample)] = fn
}

func (b *Base) Bind(self ActorRef) { b.self = self }
func (b *Base) Self() ActorRef     { return b.self }
func (b *Base) Running() bool      { return b.alive.Load() }
func (b *Base) Stop()              { b.alive.Store(false) }

// Dispatch looks up the handler keyed by the concrete type of the
// envelope's message and invokes it. A message kind with no registered
// handler is dropped silently, not treated as a fault.
func (b *Base) Dispatch(env *Envelope) {
	fn, ok := b.handlers[reflect.TypeOf(env.Message)]
	if !ok {
		return
	}
	fn(env)
}

// Reply fulfills env's reply slot if the sender used FastSend,
// otherwise sends response back to env's sender using self as the
// sender identity, otherwise drops it (no reply address available).
func (b *Base) Reply(env *Envelope, response any) {
	if env.ReplySlot != nil {
		env.ReplySlot.fulfill(response)
		return
	}
	if env.Sender != nil {
		env.Sender.Send(response, b.self)
	}
}
