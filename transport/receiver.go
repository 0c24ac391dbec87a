package transport

import (
	"log/slog"
	"net"
	"net/http"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/lguibr/actorhost/actor"
	"github.com/lguibr/actorhost/wire"
)

// LocalLookup resolves a locally-managed actor by name. *manager.Manager
// satisfies this structurally, so transport never imports manager.
type LocalLookup interface {
	GetRef(name string) (actor.ActorRef, bool)
}

// Receiver is bound to a listen address and feeds decoded envelopes
// into locally-managed mailboxes. It embeds *actor.Base so it can be
// managed like any other actor: its listener starts on Start and stops
// on Shutdown, so its lifecycle participates in Manager.End.
type Receiver struct {
	*actor.Base

	log          *slog.Logger
	listenAddr   string
	selfEndpoint string
	local        LocalLookup
	sender       *Sender

	mu      sync.Mutex
	httpSrv *http.Server
}

// NewReceiver constructs a Receiver that will bind listenAddr once
// managed and started. selfEndpoint is the address this process
// advertises to peers: it is the local endpoint of the RemoteRef built
// for each inbound sender, so replies sent through that ref carry it as
// sender_endpoint.
func NewReceiver(listenAddr, selfEndpoint string, local LocalLookup, sender *Sender, log *slog.Logger) *Receiver {
	if log == nil {
		log = slog.Default()
	}
	r := &Receiver{
		Base:         actor.NewBase(),
		log:          log,
		listenAddr:   listenAddr,
		selfEndpoint: selfEndpoint,
		local:        local,
		sender:       sender,
	}
	r.Handle(actor.Start{}, func(*actor.Envelope) { r.listen() })
	r.Handle(actor.Shutdown{}, func(*actor.Envelope) { r.close() })
	return r
}

func (r *Receiver) listen() {
	mux := http.NewServeMux()
	mux.Handle("/actor", websocket.Handler(r.handleConn))

	ln, err := net.Listen("tcp", r.listenAddr)
	if err != nil {
		r.log.Error("receiver failed to bind", "addr", r.listenAddr, "error", err)
		return
	}
	r.mu.Lock()
	r.httpSrv = &http.Server{Handler: mux}
	r.mu.Unlock()

	go func() {
		if err := r.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			r.log.Error("receiver serve error", "error", err)
		}
	}()
}

func (r *Receiver) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.httpSrv != nil {
		_ = r.httpSrv.Close()
	}
}

func (r *Receiver) handleConn(ws *websocket.Conn) {
	defer ws.Close()
	for {
		var rec wire.Record
		if err := websocket.JSON.Receive(ws, &rec); err != nil {
			return
		}
		r.dispatch(&rec)
	}
}

func (r *Receiver) dispatch(rec *wire.Record) {
	ref, ok := r.local.GetRef(rec.Receiver)
	if !ok {
		r.log.Warn("receiver: unknown local actor, dropping", "receiver", rec.Receiver, "kind", rec.MessageType)
		return
	}
	msg, err := wire.Decode(rec)
	if err != nil {
		r.log.Warn("receiver: decode failed, dropping", "kind", rec.MessageType, "error", err)
		return
	}
	var sender actor.ActorRef
	if rec.SenderActor != nil && rec.SenderEndpoint != nil {
		sender = NewRemoteRef(*rec.SenderActor, *rec.SenderEndpoint, r.selfEndpoint, r.sender)
	}
	ref.Send(msg, sender)
}
