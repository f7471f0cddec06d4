package repositories

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"chatroom/domain"
)

func newTestSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := NewSQLStore(filepath.Join(t.TempDir(), "room.db"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.EnsureSchema(context.Background()))
	return store
}

func Test_SQLStore_EnsureSchema_Idempotent(t *testing.T) {
	store := newTestSQLStore(t)
	require.NoError(t, store.EnsureSchema(context.Background()))
}

func Test_SQLStore_Upsert_And_Rehydrate(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newTestSQLStore(t)

	messages := []domain.ChatMessage{
		{ID: "m1", User: "Alice", Role: domain.RoleUser, Content: "hello"},
		{ID: "m2", User: "Bob", Role: domain.RoleUser, Content: "hi"},
		{ID: "m3", User: "assistant-1", Role: domain.RoleAssistant, Content: "greetings"},
	}
	for _, msg := range messages {
		req.NoError(store.UpsertMessage(ctx, msg))
	}

	fetched, err := store.Messages(ctx)
	req.NoError(err)
	req.Equal(messages, fetched)
}

func Test_SQLStore_Upsert_SameID_OverwritesContentKeepsPosition(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newTestSQLStore(t)

	req.NoError(store.UpsertMessage(ctx, domain.ChatMessage{ID: "m1", User: "Alice", Content: "first"}))
	req.NoError(store.UpsertMessage(ctx, domain.ChatMessage{ID: "m2", User: "Bob", Content: "second"}))
	req.NoError(store.UpsertMessage(ctx, domain.ChatMessage{ID: "m1", User: "Alice", Content: "first, edited"}))

	fetched, err := store.Messages(ctx)
	req.NoError(err)
	req.Len(fetched, 2)
	req.Equal("m1", fetched[0].ID)
	req.Equal("first, edited", fetched[0].Content)
	req.Equal("m2", fetched[1].ID)
}

func Test_SQLStore_Metadata_MissingKeyIsZero(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newTestSQLStore(t)

	value, found, err := store.Metadata(ctx, MetadataLikes)
	req.NoError(err)
	req.False(found)
	req.Zero(value)
}

func Test_SQLStore_Metadata_Upsert(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newTestSQLStore(t)

	req.NoError(store.UpsertMetadata(ctx, MetadataLikes, 1))
	req.NoError(store.UpsertMetadata(ctx, MetadataLikes, 2))

	value, found, err := store.Metadata(ctx, MetadataLikes)
	req.NoError(err)
	req.True(found)
	req.Equal(2, value)
}
