package actor

import (
	"context"
	"errors"
)

var (
	// ErrTimeout is returned by FastSend when ctx expires before a reply
	// arrives.
	ErrTimeout = errors.New("actor: fast send timed out")
	// ErrUnsupported is returned by refs that cannot correlate a reply,
	// such as a RemoteRef (see DESIGN.md).
	ErrUnsupported = errors.New("actor: fast send not supported by this reference")
)

// ActorRef is a capability: a uniform handle to an actor, whether it is
// co-located in this process or reachable behind a transport endpoint.
// Callers never know which (I1, location transparency).
type ActorRef interface {
	Name() string
	Send(msg any, sender ActorRef)
	FastSend(ctx context.Context, msg any) (any, error)
}
