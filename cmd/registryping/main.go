// Command registryping is the client half of the registry-mediated
// ping/pong scenario (S2): it looks up "pong" in the global registry,
// exchanges five rounds over the wire, then terminates.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/lguibr/actorhost/actor"
	"github.com/lguibr/actorhost/manager"
	"github.com/lguibr/actorhost/pingpong"
	"github.com/lguibr/actorhost/registryclient"
	"github.com/lguibr/actorhost/transport"
)

const rounds = 5

type pingActor struct {
	*actor.Base
	registryClient *registryclient.Client
	sender         *transport.Sender
	selfEndpoint   string
	handle         *manager.Handle
	pong           actor.ActorRef
}

func newPingActor(rc *registryclient.Client, sender *transport.Sender, selfEndpoint string, handle *manager.Handle) *pingActor {
	p := &pingActor{
		Base:           actor.NewBase(),
		registryClient: rc,
		sender:         sender,
		selfEndpoint:   selfEndpoint,
		handle:         handle,
	}
	p.Handle(actor.Start{}, p.onStart)
	p.Handle(pingpong.Pong{}, p.onPong)
	return p
}

func (p *pingActor) onStart(*actor.Envelope) {
	endpoint, err := p.registryClient.Lookup(context.Background(), "pong")
	if err != nil {
		slog.Error("failed to look up pong actor", "error", err)
		p.handle.Terminate()
		return
	}
	p.pong = transport.NewRemoteRef("pong", endpoint, p.selfEndpoint, p.sender)
	p.pong.Send(pingpong.Ping{Round: 1}, p.Self())
}

func (p *pingActor) onPong(env *actor.Envelope) {
	msg := env.Message.(pingpong.Pong)
	slog.Info("ping received pong", "round", msg.Round)
	if msg.Round >= rounds {
		p.handle.Terminate()
		return
	}
	p.pong.Send(pingpong.Ping{Round: msg.Round + 1}, p.Self())
}

func main() {
	listenAddr := flag.String("listen", "127.0.0.1:6002", "address this process's receiver binds")
	selfEndpoint := flag.String("endpoint", "ws://127.0.0.1:6002", "address advertised to peers")
	registryEndpoint := flag.String("registry", "ws://127.0.0.1:5555", "global registry endpoint")
	flag.Parse()

	pingpong.RegisterKinds()

	managerID := "ping-manager-" + uuid.NewString()
	m := manager.New(*selfEndpoint, nil)
	sender := transport.NewSender(nil)

	client := registryclient.New(managerID, *registryEndpoint, nil)
	client.StartHeartbeat()

	ping := newPingActor(client, sender, *selfEndpoint, m.GetHandle())
	if err := m.Manage("ping", ping); err != nil {
		panic(err)
	}
	receiver := transport.NewReceiver(*listenAddr, *selfEndpoint, m, sender, nil)
	if err := m.Manage("receiver", receiver); err != nil {
		panic(err)
	}

	m.Init()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		m.GetHandle().Terminate()
	}()

	m.Run()

	_ = client.Close()
	m.End()
	os.Exit(0)
}
