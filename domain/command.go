package domain

import "chatroom/contract"

// Command is one unit of work for a room actor. Commands from all
// connections funnel through the actor's inbox channel, which is what
// serializes state mutation (single writer per room).
type Command interface {
	command()
}

// AttachCommand registers a new connection and triggers its snapshot.
type AttachCommand struct {
	Sink contract.ConnSink
}

// DetachCommand removes a connection from the room's connection set.
type DetachCommand struct {
	ConnID string
}

// InboundFrame carries one raw client payload, untouched by transport.
type InboundFrame struct {
	ConnID  string
	Payload []byte
}

func (AttachCommand) command() {}
func (DetachCommand) command() {}
func (InboundFrame) command()  {}
