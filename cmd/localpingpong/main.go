// Command localpingpong demonstrates the single-manager ping/pong
// scenario (S1): two actors in the same manager exchange messages
// serially for five rounds, then the manager terminates itself.
package main

import (
	"fmt"
	"log/slog"

	"github.com/lguibr/actorhost/actor"
	"github.com/lguibr/actorhost/manager"
)

// Ping is sent from the Ping actor to the Pong actor.
type Ping struct{ Round int }

// Pong is the reply.
type Pong struct{ Round int }

const rounds = 5

type pingActor struct {
	*actor.Base
	pong   actor.ActorRef
	handle *manager.Handle
}

func newPingActor(handle *manager.Handle) *pingActor {
	p := &pingActor{Base: actor.NewBase(), handle: handle}
	p.Handle(actor.Start{}, p.onStart)
	p.Handle(Pong{}, p.onPong)
	return p
}

func (p *pingActor) onStart(*actor.Envelope) {
	p.pong.Send(Ping{Round: 1}, p.Self())
}

func (p *pingActor) onPong(env *actor.Envelope) {
	msg := env.Message.(Pong)
	slog.Info("ping received pong", "round", msg.Round)
	if msg.Round >= rounds {
		p.handle.Terminate()
		return
	}
	p.pong.Send(Ping{Round: msg.Round + 1}, p.Self())
}

type pongActor struct {
	*actor.Base
}

func newPongActor() *pongActor {
	p := &pongActor{Base: actor.NewBase()}
	p.Handle(Ping{}, p.onPing)
	return p
}

func (p *pongActor) onPing(env *actor.Envelope) {
	msg := env.Message.(Ping)
	slog.Info("pong received ping", "round", msg.Round)
	p.Reply(env, Pong{Round: msg.Round})
}

func main() {
	m := manager.New("local://localpingpong", nil)

	pong := newPongActor()
	if err := m.Manage("pong", pong); err != nil {
		panic(err)
	}
	pongRef, _ := m.GetRef("pong")

	ping := newPingActor(m.GetHandle())
	ping.pong = pongRef
	if err := m.Manage("ping", ping); err != nil {
		panic(err)
	}

	m.Init()
	m.Run()
	m.End()

	fmt.Println("localpingpong: completed", rounds, "rounds")
}
