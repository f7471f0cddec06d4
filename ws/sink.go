// Package ws is the websocket transport: it upgrades connections, feeds
// raw client payloads to room actors, and writes broadcast frames back.
package ws

// Sink buffers outbound frames for one connection.
type Sink struct {
	id     string
	frames chan []byte
}

func NewSink(id string, bufferSize int) *Sink {
	return &Sink{id: id, frames: make(chan []byte, bufferSize)}
}

func (s *Sink) ID() string {
	return s.id
}

// Send is called by the broadcaster's fanout. If the connection cannot
// keep up, the frame is dropped rather than blocking the room actor.
func (s *Sink) Send(payload []byte) {
	select {
	case s.frames <- payload:
	default:
		// Backpressure: slow consumer loses the frame.
	}
}

func (s *Sink) Frames() <-chan []byte {
	return s.frames
}
