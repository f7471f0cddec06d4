//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_store.go -package=mocks
package repositories

import (
	"context"

	"chatroom/domain"
)

// MetadataLikes is the fixed metadata key holding the like counter.
const MetadataLikes = "likes"

// Store is the durable side of one room. It is the single source of truth
// across restarts: the in-memory room is rebuilt from it on every activation.
//
// All writes are parameterized upserts keyed by the message id (messages)
// or the metadata key (metadata). The single-writer-per-room guarantee is
// inherited from the owning actor; implementations need no cross-room
// coordination beyond their own transactionality.
type Store interface {
	// EnsureSchema creates the two relations if absent. Idempotent.
	EnsureSchema(ctx context.Context) error

	// UpsertMessage inserts a message, or overwrites the content of the
	// existing row with the same id without changing its position.
	UpsertMessage(ctx context.Context, msg domain.ChatMessage) error

	// Messages returns every persisted message in insertion order.
	Messages(ctx context.Context) ([]domain.ChatMessage, error)

	// UpsertMetadata inserts or overwrites one metadata value.
	UpsertMetadata(ctx context.Context, key string, value int) error

	// Metadata returns a metadata value. A missing key is not an error:
	// it reports (0, false, nil).
	Metadata(ctx context.Context, key string) (int, bool, error)

	Close() error
}
