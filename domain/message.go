// Package domain contains core concepts of the chat room.
// This file defines ChatMessage, the unit of the room's message log.
// Messages are identified by a caller-supplied id and upserted by it.
package domain

// Role distinguishes the origin of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of the room's ordered message log.
// At most one message with a given ID exists at any time; a second
// arrival with the same ID replaces the content of the first.
type ChatMessage struct {
	ID      string `json:"id" validate:"required"`
	User    string `json:"user" validate:"required"`
	Role    Role   `json:"role" validate:"omitempty,oneof=user assistant"`
	Content string `json:"content"`
}
