package runtime

import (
	"encoding/json"
	"log/slog"

	"github.com/samber/lo"

	"chatroom/contract"
	"chatroom/observability"
)

// Broadcaster delivers events to every connection of one room, minus an
// optional exclusion list. Delivery is fire-and-forget per connection:
// no confirmation, no retry. A connection that has gone away was either
// unsubscribed already or drops the frame in its sink.
type Broadcaster struct {
	registry contract.IRegistry
	log      *slog.Logger
	metrics  *observability.Metrics
}

func NewBroadcaster(registry contract.IRegistry, log *slog.Logger, metrics *observability.Metrics) *Broadcaster {
	return &Broadcaster{registry: registry, log: log, metrics: metrics}
}

// Emit serializes event and delivers it. A marshalling failure is logged
// and the broadcast skipped; it cannot corrupt room state.
func (b *Broadcaster) Emit(event any, exclude ...string) {
	payload, err := json.Marshal(event)
	if err != nil {
		b.log.Error("Failed to serialize broadcast event", "error", err)
		return
	}
	b.EmitRaw(payload, exclude...)
}

// EmitRaw delivers payload verbatim. This is also the unconditional echo
// path, so the bytes are never inspected or rewritten here.
func (b *Broadcaster) EmitRaw(payload []byte, exclude ...string) {
	excluded := lo.SliceToMap(exclude, func(id string) (string, struct{}) {
		return id, struct{}{}
	})
	for _, sink := range b.registry.Sinks() {
		if _, skip := excluded[sink.ID()]; skip {
			continue
		}
		sink.Send(payload)
	}
	b.metrics.Broadcasts.Inc()
}
