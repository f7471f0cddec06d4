package domain

import "encoding/json"

// Frame kinds exchanged with clients. Unknown kinds pass through the raw
// echo untouched and trigger no state change.
const (
	KindAdd    = "add"
	KindUpdate = "update"
	KindLike   = "like"
	KindAll    = "all"
	KindLikes  = "likes"
)

// Frame is the inbound client frame, discriminated by Kind.
// Add and update frames carry ChatMessage fields inline.
type Frame struct {
	Kind    string `json:"kind" validate:"required"`
	ID      string `json:"id,omitempty"`
	User    string `json:"user,omitempty"`
	Role    Role   `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// ChatMessage extracts the message carried by an add/update frame.
func (f Frame) ChatMessage() ChatMessage {
	return ChatMessage{
		ID:      f.ID,
		User:    f.User,
		Role:    f.Role,
		Content: f.Content,
	}
}

// ParseFrame decodes a raw client payload.
func ParseFrame(raw []byte) (Frame, error) {
	var f Frame
	err := json.Unmarshal(raw, &f)
	return f, err
}

// AllFrame is the server->client snapshot of the full message log,
// sent once to each newly attached connection.
type AllFrame struct {
	Kind     string        `json:"kind"`
	Messages []ChatMessage `json:"messages"`
}

func NewAllFrame(messages []ChatMessage) AllFrame {
	if messages == nil {
		messages = []ChatMessage{}
	}
	return AllFrame{Kind: KindAll, Messages: messages}
}

// LikesFrame is the server->client like counter, sent on attach,
// after hydration and after every like.
type LikesFrame struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

func NewLikesFrame(count int) LikesFrame {
	return LikesFrame{Kind: KindLikes, Count: count}
}
