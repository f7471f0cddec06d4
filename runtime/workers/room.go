package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"chatroom/contract"
	"chatroom/domain"
	"chatroom/observability"
	"chatroom/repositories"
)

var validate = validator.New()

// RoomWorker is the actor owning one room. It is the only goroutine that
// touches the room's state, so the whole reconciliation path runs without
// locks: commands from every connection are serialized by the inbox.
//
// Lifecycle: Run hydrates the room from the durable store before serving
// anything (cold -> active), then loops on the inbox until the context is
// canceled. Run hydrates again on every restart, which is also how memory
// and store reconverge after a persistence failure: whatever the store
// holds wins.
type RoomWorker struct {
	room        *domain.Room
	store       repositories.Store
	registry    contract.IRegistry
	broadcaster contract.Broadcaster
	inbox       chan domain.Command
	log         *slog.Logger
	metrics     *observability.Metrics
}

func NewRoomWorker(
	room *domain.Room,
	store repositories.Store,
	registry contract.IRegistry,
	broadcaster contract.Broadcaster,
	inbox chan domain.Command,
	log *slog.Logger,
	metrics *observability.Metrics,
) *RoomWorker {
	return &RoomWorker{
		room:        room,
		store:       store,
		registry:    registry,
		broadcaster: broadcaster,
		inbox:       inbox,
		log:         log,
		metrics:     metrics,
	}
}

func (w *RoomWorker) Run(ctx context.Context) error {
	if err := w.hydrate(ctx); err != nil {
		return fmt.Errorf("hydrate room %s: %w", w.room.ID, err)
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping room worker", "room", w.room.ID)
			return nil
		case cmd, ok := <-w.inbox:
			if !ok {
				return nil
			}
			switch c := cmd.(type) {
			case domain.AttachCommand:
				w.handleAttach(c.Sink)
			case domain.DetachCommand:
				w.registry.Unsubscribe(c.ConnID)
				w.metrics.ConnectedClients.Dec()
			case domain.InboundFrame:
				if err := w.handleInbound(ctx, c); err != nil {
					return err
				}
			}
		}
	}
}

// hydrate rebuilds the in-memory replica from the store, then broadcasts
// the counter once so connections that raced the activation converge.
func (w *RoomWorker) hydrate(ctx context.Context) error {
	if err := w.store.EnsureSchema(ctx); err != nil {
		return err
	}
	messages, err := w.store.Messages(ctx)
	if err != nil {
		return err
	}
	likes, found, err := w.store.Metadata(ctx, repositories.MetadataLikes)
	if err != nil {
		return err
	}
	if !found {
		likes = 0
	}
	w.room.Hydrate(messages, likes)
	w.log.Info("Room hydrated", "room", w.room.ID, "messages", len(messages), "likes", likes)
	w.broadcaster.Emit(domain.NewLikesFrame(likes))
	return nil
}

// handleAttach sends exactly two frames to the new connection only:
// the full message log, then the current like count. A concurrent
// broadcast may land right after with newer state; that window is
// accepted, the client converges on the next frame.
func (w *RoomWorker) handleAttach(sink contract.ConnSink) {
	w.registry.Subscribe(sink)
	w.metrics.ConnectedClients.Inc()

	all, err := json.Marshal(domain.NewAllFrame(w.room.Messages()))
	if err != nil {
		w.log.Error("Failed to serialize snapshot", "room", w.room.ID, "error", err)
		return
	}
	likes, err := json.Marshal(domain.NewLikesFrame(w.room.Likes()))
	if err != nil {
		w.log.Error("Failed to serialize likes snapshot", "room", w.room.ID, "error", err)
		return
	}
	sink.Send(all)
	sink.Send(likes)
}

// handleInbound applies one client payload:
//
//  1. the raw bytes are echoed to every connection, sender included,
//     before any parsing - clients get a low-latency copy of exactly
//     what was sent and must deduplicate their own echoes,
//  2. a payload that fails parsing or validation is logged and dropped,
//  3. add/update mutates the log and is persisted before the command
//     is considered done,
//  4. like bumps the counter, persists it, and broadcasts the new count,
//  5. any other kind was already echoed and is otherwise ignored.
//
// A persistence failure propagates: the supervisor restarts the actor,
// which rehydrates from the store.
func (w *RoomWorker) handleInbound(ctx context.Context, frame domain.InboundFrame) error {
	w.broadcaster.EmitRaw(frame.Payload)

	parsed, err := domain.ParseFrame(frame.Payload)
	if err != nil {
		w.log.Warn("Invalid message", "room", w.room.ID, "conn", frame.ConnID, "error", err)
		w.metrics.ParseFailures.Inc()
		return nil
	}

	switch parsed.Kind {
	case domain.KindAdd, domain.KindUpdate:
		msg := parsed.ChatMessage()
		if err := validate.Struct(msg); err != nil {
			w.log.Warn("Rejected malformed chat message", "room", w.room.ID, "error", err)
			w.metrics.ParseFailures.Inc()
			return nil
		}
		w.room.ApplyMessage(msg)
		if err := w.store.UpsertMessage(ctx, msg); err != nil {
			return err
		}
		w.metrics.MessagesApplied.Inc()

	case domain.KindLike:
		count := w.room.IncrementLikes()
		if err := w.store.UpsertMetadata(ctx, repositories.MetadataLikes, count); err != nil {
			return err
		}
		w.metrics.LikesTotal.Inc()
		w.broadcaster.Emit(domain.NewLikesFrame(count))

	default:
		// Forward compatible: unknown kinds ride the echo only.
		w.log.Debug("Ignoring unknown frame kind", "room", w.room.ID, "kind", parsed.Kind)
	}
	return nil
}
