package workers_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chatroom/domain"
	"chatroom/mocks"
	"chatroom/observability"
	"chatroom/runtime"
	"chatroom/runtime/workers"
)

type testSink struct {
	id     string
	frames chan []byte
}

func newTestSink(id string) *testSink {
	return &testSink{id: id, frames: make(chan []byte, 32)}
}

func (s *testSink) ID() string    { return s.id }
func (s *testSink) Send(p []byte) { s.frames <- p }

func (s *testSink) next(t *testing.T) []byte {
	t.Helper()
	select {
	case p := <-s.frames:
		return p
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

func (s *testSink) empty() bool {
	select {
	case <-s.frames:
		return false
	default:
		return true
	}
}

// startWorker runs a room actor over the given store and returns its
// inbox, state and termination channel.
func startWorker(t *testing.T, store *mocks.MockStore) (chan domain.Command, *domain.Room, chan error, context.CancelFunc) {
	t.Helper()
	room := domain.NewRoom("lobby")
	registry := runtime.NewRegistry()
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	broadcaster := runtime.NewBroadcaster(registry, slog.Default(), metrics)
	inbox := make(chan domain.Command, 32)
	worker := workers.NewRoomWorker(room, store, registry, broadcaster, inbox, slog.Default(), metrics)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	stopped := make(chan struct{})
	go func() {
		done <- worker.Run(ctx)
		close(stopped)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-stopped:
		case <-time.After(time.Second):
			t.Error("worker did not stop")
		}
	})
	return inbox, room, done, cancel
}

func expectHydration(store *mocks.MockStore, messages []domain.ChatMessage, likes int, found bool) {
	store.EXPECT().EnsureSchema(gomock.Any()).Return(nil)
	store.EXPECT().Messages(gomock.Any()).Return(messages, nil)
	store.EXPECT().Metadata(gomock.Any(), "likes").Return(likes, found, nil)
}

func TestRoomWorker_Attach_SendsSnapshotThenLikes(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	persisted := []domain.ChatMessage{
		{ID: "m1", User: "Alice", Role: domain.RoleUser, Content: "hello"},
		{ID: "m2", User: "Bob", Role: domain.RoleUser, Content: "hi"},
	}
	store := mocks.NewMockStore(ctrl)
	expectHydration(store, persisted, 3, true)

	inbox, _, _, _ := startWorker(t, store)

	sink := newTestSink("c1")
	inbox <- domain.AttachCommand{Sink: sink}

	var all domain.AllFrame
	req.NoError(json.Unmarshal(sink.next(t), &all))
	req.Equal(domain.KindAll, all.Kind)
	req.Equal(persisted, all.Messages)

	var likes domain.LikesFrame
	req.NoError(json.Unmarshal(sink.next(t), &likes))
	req.Equal(domain.KindLikes, likes.Kind)
	req.Equal(3, likes.Count)
}

func TestRoomWorker_Like_EchoBeforeCountBroadcast(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	expectHydration(store, nil, 3, true)
	store.EXPECT().UpsertMetadata(gomock.Any(), "likes", 4).Return(nil)

	inbox, room, _, _ := startWorker(t, store)

	sink := newTestSink("c1")
	inbox <- domain.AttachCommand{Sink: sink}
	sink.next(t) // all snapshot
	sink.next(t) // likes snapshot

	payload := []byte(`{"kind":"like"}`)
	inbox <- domain.InboundFrame{ConnID: "c1", Payload: payload}

	// The verbatim echo reaches the sender before the counter broadcast.
	req.Equal(payload, sink.next(t))

	var likes domain.LikesFrame
	req.NoError(json.Unmarshal(sink.next(t), &likes))
	req.Equal(4, likes.Count)
	req.Equal(4, room.Likes())
}

func TestRoomWorker_Add_AppliesAndPersists_Idempotent(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	msg := domain.ChatMessage{ID: "m1", User: "Alice", Role: domain.RoleUser, Content: "hello"}
	store := mocks.NewMockStore(ctrl)
	expectHydration(store, nil, 0, false)
	store.EXPECT().UpsertMessage(gomock.Any(), msg).Return(nil).Times(2)

	inbox, room, _, _ := startWorker(t, store)

	sink := newTestSink("c1")
	inbox <- domain.AttachCommand{Sink: sink}
	sink.next(t)
	sink.next(t)

	payload, err := json.Marshal(domain.Frame{Kind: domain.KindAdd, ID: msg.ID, User: msg.User, Role: msg.Role, Content: msg.Content})
	req.NoError(err)

	inbox <- domain.InboundFrame{ConnID: "c1", Payload: payload}
	req.Equal(payload, sink.next(t))
	inbox <- domain.InboundFrame{ConnID: "c1", Payload: payload}
	req.Equal(payload, sink.next(t))

	// Sentinel frame: once its echo arrives, both adds are fully handled.
	ping := []byte(`{"kind":"ping"}`)
	inbox <- domain.InboundFrame{ConnID: "c1", Payload: ping}
	req.Equal(ping, sink.next(t))

	messages := room.Messages()
	req.Len(messages, 1)
	req.Equal(msg, messages[0])
}

func TestRoomWorker_MalformedPayload_EchoOnlyNoMutation(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No upsert expectations: any store write would fail the test.
	store := mocks.NewMockStore(ctrl)
	expectHydration(store, nil, 0, false)

	inbox, room, _, _ := startWorker(t, store)

	sink := newTestSink("c1")
	inbox <- domain.AttachCommand{Sink: sink}
	sink.next(t)
	sink.next(t)

	garbage := []byte(`{not json at all`)
	inbox <- domain.InboundFrame{ConnID: "c1", Payload: garbage}
	req.Equal(garbage, sink.next(t))

	// Well-formed but invalid: an add without an id mutates nothing either.
	invalid := []byte(`{"kind":"add","content":"orphan"}`)
	inbox <- domain.InboundFrame{ConnID: "c1", Payload: invalid}
	req.Equal(invalid, sink.next(t))

	ping := []byte(`{"kind":"ping"}`)
	inbox <- domain.InboundFrame{ConnID: "c1", Payload: ping}
	req.Equal(ping, sink.next(t))

	req.Empty(room.Messages())
	req.Zero(room.Likes())
	req.True(sink.empty())
}

func TestRoomWorker_PersistenceFailurePropagates(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	expectHydration(store, nil, 0, false)
	store.EXPECT().UpsertMessage(gomock.Any(), gomock.Any()).Return(assert.AnError)

	inbox, _, done, _ := startWorker(t, store)

	payload := []byte(`{"kind":"add","id":"m1","user":"Alice","content":"hello"}`)
	inbox <- domain.InboundFrame{ConnID: "c1", Payload: payload}

	select {
	case err := <-done:
		req.ErrorIs(err, assert.AnError)
	case <-time.After(time.Second):
		t.Fatal("worker did not propagate the persistence failure")
	}
}

func TestRoomWorker_DetachStopsDelivery(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	expectHydration(store, nil, 0, false)

	inbox, _, _, _ := startWorker(t, store)

	sink := newTestSink("c1")
	inbox <- domain.AttachCommand{Sink: sink}
	sink.next(t)
	sink.next(t)

	inbox <- domain.DetachCommand{ConnID: "c1"}

	witness := newTestSink("c2")
	inbox <- domain.AttachCommand{Sink: witness}
	witness.next(t)
	witness.next(t)

	ping := []byte(`{"kind":"ping"}`)
	inbox <- domain.InboundFrame{ConnID: "c2", Payload: ping}
	req.Equal(ping, witness.next(t))
	req.True(sink.empty())
}
