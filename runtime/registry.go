// Package runtime hosts room actors and fans state changes out to their
// connections. It orchestrates the system without containing domain rules.
package runtime

import (
	"sync"

	"chatroom/contract"
)

// Registry is the connection set of one room. Ownership of the
// connections themselves stays with the transport; the registry only
// tracks who is attached right now for delivery purposes.
type Registry struct {
	mu    sync.RWMutex
	sinks map[string]contract.ConnSink
}

func NewRegistry() *Registry {
	return &Registry{sinks: make(map[string]contract.ConnSink)}
}

func (r *Registry) Subscribe(sink contract.ConnSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks[sink.ID()] = sink
}

func (r *Registry) Unsubscribe(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sinks, connID)
}

// Sinks returns a snapshot of the attached connections. Callers iterate
// the snapshot, so a connection leaving mid-broadcast is simply skipped.
func (r *Registry) Sinks() []contract.ConnSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]contract.ConnSink, 0, len(r.sinks))
	for _, sink := range r.sinks {
		out = append(out, sink)
	}
	return out
}

func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sinks)
}
