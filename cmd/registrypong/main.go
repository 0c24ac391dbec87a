// Command registrypong is the server half of the registry-mediated
// ping/pong scenario (S2): it registers its "pong" actor with the
// global registry and answers every Ping it receives over the wire.
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

type pongActor struct {
	*actor.Base
}

func newPongActor() *pongActor {
	p := &pongActor{Base: actor.NewBase()}
	p.Handle(pingpong.Ping{}, p.onPing)
	return p
}

func (p *pongActor) onPing(env *actor.Envelope) {
	msg := env.Message.(pingpong.Ping)
	slog.Info("pong received ping", "round", msg.Round)
	p.Reply(env, pingpong.Pong{Round: msg.Round})
}

func main() {
	listenAddr := flag.String("listen", "127.0.0.1:6001", "address this process's receiver binds")
	selfEndpoint := flag.String("endpoint", "ws://127.0.0.1:6001", "address advertised to peers")
	registryEndpoint := flag.String("registry", "ws://127.0.0.1:5555", "global registry endpoint")
	flag.Parse()

	pingpong.RegisterKinds()

	managerID := "pong-manager-" + uuid.NewString()
	m := manager.New(*selfEndpoint, nil)
	sender := transport.NewSender(nil)

	pong := newPongActor()
	if err := m.Manage("pong", pong); err != nil {
		panic(err)
	}
	receiver := transport.NewReceiver(*listenAddr, *selfEndpoint, m, sender, nil)
	if err := m.Manage("receiver", receiver); err != nil {
		panic(err)
	}

	m.Init()

	client := registryclient.New(managerID, *registryEndpoint, nil)
	client.StartHeartbeat()
	if err := client.Register(context.Background(), "pong", *selfEndpoint); err != nil {
		slog.Error("failed to register pong actor", "error", err)
		m.End()
		os.Exit(1)
	}
	slog.Info("registered pong actor with registry", "endpoint", *selfEndpoint)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		m.GetHandle().Terminate()
	}()

	m.Run()
	_ = client.Close()
	m.End()
}
