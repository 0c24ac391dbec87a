package transport

import (
	"context"

	"github.com/lguibr/actorhost/actor"
	"github.com/lguibr/actorhost/wire"
)

// RemoteRef is an actor.ActorRef whose target lives behind a transport
// endpoint. Send encodes a wire record and hands it to a Sender;
// FastSend is unsupported — there is no correlation table to match a
// reply back to a waiting caller (see DESIGN.md).
type RemoteRef struct {
	name          string
	endpoint      string
	localEndpoint string
	sender        *Sender
}

// NewRemoteRef builds a reference to the actor named name at endpoint.
// localEndpoint is this process's own manager endpoint, stamped as
// sender_endpoint on outbound records so replies can route back.
func NewRemoteRef(name, endpoint, localEndpoint string, sender *Sender) *RemoteRef {
	return &RemoteRef{name: name, endpoint: endpoint, localEndpoint: localEndpoint, sender: sender}
}

func (r *RemoteRef) Name() string { return r.name }

func (r *RemoteRef) Send(msg any, sender actor.ActorRef) {
	var senderActor, senderEndpoint *string
	if sender != nil {
		n := sender.Name()
		senderActor = &n
		if r.localEndpoint != "" {
			e := r.localEndpoint
			senderEndpoint = &e
		}
	}
	rec, err := wire.Encode(r.name, senderActor, senderEndpoint, msg)
	if err != nil {
		return
	}
	r.sender.Send(r.endpoint, rec)
}

func (r *RemoteRef) FastSend(_ context.Context, _ any) (any, error) {
	return nil, actor.ErrUnsupported
}
