// Package pingpong holds the message kinds shared by the
// cmd/registryping and cmd/registrypong example processes (S2): a
// remote round-trip routed through the registry rather than a direct
// in-process reference.
package pingpong

import "github.com/lguibr/actorhost/wire"

// Ping is sent from the ping side to the pong side.
type Ping struct {
	Round int `json:"round"`
}

// Pong is the reply.
type Pong struct {
	Round int `json:"round"`
}

// RegisterKinds freezes the two message kinds into the process-wide
// wire registry. Every remote-capable main calls this once, before
// starting its receiver.
func RegisterKinds() {
	wire.Register[Ping]("Ping")
	wire.Register[Pong]("Pong")
	wire.Freeze()
}
