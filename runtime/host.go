package runtime

import (
	"context"
	"log/slog"
	"regexp"
	"sync"

	"chatroom/contract"
	"chatroom/domain"
	"chatroom/errors"
	"chatroom/observability"
	"chatroom/repositories"
	"chatroom/runtime/workers"
)

var roomNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// StoreFactory opens the durable side of one room.
type StoreFactory func(room domain.RoomID) (repositories.Store, error)

// RoomHandle is the transport's grip on a live room actor.
type RoomHandle struct {
	room  domain.RoomID
	inbox chan domain.Command
	log   *slog.Logger
}

// Dispatch blocks until the actor takes the command. Attach and detach
// go through here: dropping an attach would leave the client without its
// snapshot, dropping a detach would leak a registry entry and skew the
// connection gauge.
func (h *RoomHandle) Dispatch(cmd domain.Command) {
	h.inbox <- cmd
}

// TryDispatch is the backpressured path for inbound frames: under load a
// frame is dropped and logged rather than stalling the transport
// goroutine.
func (h *RoomHandle) TryDispatch(cmd domain.Command) {
	select {
	case h.inbox <- cmd:
	default:
		h.log.Warn("Room inbox full, dropping command", "room", h.room)
	}
}

// Host activates one actor per room name, lazily, and guarantees at most
// one live actor per room in this process. That single actor goroutine is
// the single-writer the reconciliation core relies on.
type Host struct {
	mu         sync.Mutex
	log        *slog.Logger
	supervisor contract.ISupervisor
	newStore   StoreFactory
	metrics    *observability.Metrics
	bufferSize int
	rooms      map[domain.RoomID]*RoomHandle
	stores     []repositories.Store
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewHost(
	log *slog.Logger,
	supervisor contract.ISupervisor,
	newStore StoreFactory,
	metrics *observability.Metrics,
	bufferSize int,
) *Host {
	return &Host{
		log:        log,
		supervisor: supervisor,
		newStore:   newStore,
		metrics:    metrics,
		bufferSize: bufferSize,
		rooms:      make(map[domain.RoomID]*RoomHandle),
	}
}

// Start pins the lifetime context and runs the supervisor. Rooms
// activated later join the same supervision tree.
func (h *Host) Start(ctx context.Context) {
	h.ctx, h.cancel = context.WithCancel(ctx)
	go h.supervisor.Run(h.ctx)
}

// Room returns the handle of a live room, activating it first if needed.
// Activation wires the room's store, connection set and broadcaster, and
// hands the actor to the supervisor; the actor hydrates before it serves
// its first command.
func (h *Host) Room(name string) (*RoomHandle, error) {
	if !roomNamePattern.MatchString(name) {
		return nil, errors.ErrBadRoomName
	}
	id := domain.RoomID(name)

	h.mu.Lock()
	defer h.mu.Unlock()

	if handle, ok := h.rooms[id]; ok {
		return handle, nil
	}

	store, err := h.newStore(id)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry, h.log, h.metrics)
	inbox := make(chan domain.Command, h.bufferSize)
	worker := workers.NewRoomWorker(
		domain.NewRoom(id), store, registry, broadcaster,
		inbox, h.log.With("room", id), h.metrics,
	)
	h.supervisor.Start(h.ctx, worker)

	handle := &RoomHandle{room: id, inbox: inbox, log: h.log}
	h.rooms[id] = handle
	h.stores = append(h.stores, store)
	h.log.Info("Room activated", "room", id)
	return handle, nil
}

// Stop shuts the supervision tree down, waits for every actor to drain,
// then closes the room stores. The wait matters: an actor mid-command
// must not see its store closed under it.
func (h *Host) Stop() {
	h.supervisor.Stop()
	if h.cancel != nil {
		h.cancel()
	}
	h.supervisor.Wait()

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, store := range h.stores {
		if err := store.Close(); err != nil {
			h.log.Error("Failed to close room store", "error", err)
		}
	}
	h.stores = nil
}
