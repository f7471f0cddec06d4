package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoom_ApplyMessage_AppendsInOrder(t *testing.T) {
	room := NewRoom("lobby")
	room.Hydrate(nil, 0)

	room.ApplyMessage(ChatMessage{ID: "m1", User: "Alice", Role: RoleUser, Content: "Hello"})
	room.ApplyMessage(ChatMessage{ID: "m2", User: "Bob", Role: RoleUser, Content: "Hi Alice"})

	messages := room.Messages()
	require.Len(t, messages, 2)
	require.Equal(t, "m1", messages[0].ID)
	require.Equal(t, "m2", messages[1].ID)
}

func TestRoom_ApplyMessage_SameIDIsReplacementNotDuplicate(t *testing.T) {
	req := require.New(t)
	room := NewRoom("lobby")
	room.Hydrate(nil, 0)

	msg := ChatMessage{ID: "m1", User: "Alice", Role: RoleUser, Content: "Hello"}
	room.ApplyMessage(msg)
	room.ApplyMessage(msg)

	messages := room.Messages()
	req.Len(messages, 1)
	req.Equal("Hello", messages[0].Content)
}

func TestRoom_ApplyMessage_UpdatePreservesPosition(t *testing.T) {
	req := require.New(t)
	room := NewRoom("lobby")
	room.Hydrate(nil, 0)

	room.ApplyMessage(ChatMessage{ID: "m1", User: "Alice", Content: "first"})
	room.ApplyMessage(ChatMessage{ID: "m2", User: "Bob", Content: "second"})
	room.ApplyMessage(ChatMessage{ID: "m3", User: "Clara", Content: "third"})

	room.ApplyMessage(ChatMessage{ID: "m2", User: "Bob", Content: "second, edited"})

	messages := room.Messages()
	req.Len(messages, 3)
	req.Equal("m2", messages[1].ID)
	req.Equal("second, edited", messages[1].Content)
}

func TestRoom_IncrementLikes_IsMonotonic(t *testing.T) {
	req := require.New(t)
	room := NewRoom("lobby")
	room.Hydrate(nil, 5)

	for i := 0; i < 3; i++ {
		room.IncrementLikes()
	}
	req.Equal(8, room.Likes())
}

func TestRoom_Hydrate_MarksActive(t *testing.T) {
	req := require.New(t)
	room := NewRoom("lobby")
	req.False(room.Hydrated())

	room.Hydrate([]ChatMessage{{ID: "m1", User: "Alice"}}, 2)
	req.True(room.Hydrated())
	req.Equal(2, room.Likes())
	req.Len(room.Messages(), 1)
}

func TestRoom_Messages_ReturnsCopy(t *testing.T) {
	req := require.New(t)
	room := NewRoom("lobby")
	room.Hydrate([]ChatMessage{{ID: "m1", User: "Alice", Content: "hello"}}, 0)

	leaked := room.Messages()
	leaked[0].Content = "tampered"

	req.Equal("hello", room.Messages()[0].Content)
}
