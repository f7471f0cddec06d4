package domain

// RoomID is the room name taken from the connection URL.
type RoomID string

// Room is the in-memory authoritative replica of one chat room:
// an ordered message log plus a like counter. It is a write-through
// cache over the durable store, rebuilt by Hydrate on activation.
//
// Room is not safe for concurrent use. The owning actor goroutine
// serializes every mutation, so no locking is done here.
type Room struct {
	ID       RoomID
	messages []ChatMessage
	likes    int
	hydrated bool
}

func NewRoom(id RoomID) *Room {
	return &Room{ID: id}
}

// Hydrate installs the state loaded from the durable store and marks the
// room active. Messages keep the order the store returned them in.
func (r *Room) Hydrate(messages []ChatMessage, likes int) {
	r.messages = messages
	r.likes = likes
	r.hydrated = true
}

// Hydrated reports whether the room left the cold state.
func (r *Room) Hydrated() bool {
	return r.hydrated
}

// ApplyMessage upserts a message by ID. An existing entry is replaced in
// place, keeping its position in the log; a new one is appended. Applying
// the same message twice leaves exactly one entry.
func (r *Room) ApplyMessage(msg ChatMessage) {
	for i := range r.messages {
		if r.messages[i].ID == msg.ID {
			r.messages[i] = msg
			return
		}
	}
	r.messages = append(r.messages, msg)
}

// IncrementLikes bumps the counter by one and returns the new value.
// There is no decrement and no upper bound.
func (r *Room) IncrementLikes() int {
	r.likes++
	return r.likes
}

func (r *Room) Likes() int {
	return r.likes
}

// Messages returns a copy of the log in insertion order.
func (r *Room) Messages() []ChatMessage {
	out := make([]ChatMessage, len(r.messages))
	copy(out, r.messages)
	return out
}
