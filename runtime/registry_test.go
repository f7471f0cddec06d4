package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chatroom/contract"
)

type fakeSink struct {
	id     string
	frames [][]byte
}

func (s *fakeSink) ID() string    { return s.id }
func (s *fakeSink) Send(p []byte) { s.frames = append(s.frames, p) }

func TestRegistry_SubscribeUnsubscribe(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	a := &fakeSink{id: "a"}
	b := &fakeSink{id: "b"}
	registry.Subscribe(a)
	registry.Subscribe(b)
	req.Equal(2, registry.Size())

	registry.Unsubscribe("a")
	req.Equal(1, registry.Size())

	sinks := registry.Sinks()
	req.Len(sinks, 1)
	req.Equal("b", sinks[0].ID())
}

func TestRegistry_SubscribeSameIDReplaces(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	registry.Subscribe(&fakeSink{id: "a"})
	registry.Subscribe(&fakeSink{id: "a"})
	req.Equal(1, registry.Size())
}

func TestRegistry_SinksIsASnapshot(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	registry.Subscribe(&fakeSink{id: "a"})

	snapshot := registry.Sinks()
	registry.Unsubscribe("a")
	req.Len(snapshot, 1)

	var _ []contract.ConnSink = snapshot
}
