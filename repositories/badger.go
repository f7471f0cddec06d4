package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"chatroom/domain"
)

// BadgerStore is the key/value Store implementation. Rooms share one
// BadgerDB and are isolated by key prefix:
//
//	msg:{room}:{seq_padded}:{id}  -> message record (JSON)
//	msgid:{room}:{id}             -> record key of the message
//	meta:{room}:{key}             -> metadata value
//
// The 12-digit zero-padded sequence makes a prefix scan return messages
// in insertion order. An upsert of an existing id rewrites the record at
// its original sequence, so position is preserved. The msgid index is the
// upsert's lookup path from id to record key.
type BadgerStore struct {
	db   *badger.DB
	room domain.RoomID
	log  *slog.Logger
}

// NewBadgerStore scopes a shared BadgerDB to one room. Closing the DB
// itself is the owner's job, not the store's.
func NewBadgerStore(db *badger.DB, room domain.RoomID, log *slog.Logger) *BadgerStore {
	return &BadgerStore{db: db, room: room, log: log}
}

// EnsureSchema is a no-op: Badger is schemaless, the prefixes above are
// created on first write.
func (s *BadgerStore) EnsureSchema(_ context.Context) error {
	return nil
}

func (s *BadgerStore) recordPrefix() []byte {
	return []byte(fmt.Sprintf("msg:%s:", s.room))
}

func (s *BadgerStore) indexKey(id string) []byte {
	return []byte(fmt.Sprintf("msgid:%s:%s", s.room, id))
}

func (s *BadgerStore) metaKey(key string) []byte {
	return []byte(fmt.Sprintf("meta:%s:%s", s.room, key))
}

func (s *BadgerStore) UpsertMessage(_ context.Context, msg domain.ChatMessage) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		idxKey := s.indexKey(msg.ID)
		item, err := txn.Get(idxKey)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			seq, err := s.nextSeq(txn)
			if err != nil {
				return err
			}
			recKey := []byte(fmt.Sprintf("msg:%s:%012d:%s", s.room, seq, msg.ID))
			value, err := json.Marshal(msg)
			if err != nil {
				return err
			}
			if err := txn.Set(recKey, value); err != nil {
				return err
			}
			return txn.Set(idxKey, recKey)
		case err != nil:
			return err
		}

		// Existing id: overwrite content at the original record key.
		var recKey []byte
		if err := item.Value(func(v []byte) error {
			recKey = append([]byte(nil), v...)
			return nil
		}); err != nil {
			return err
		}
		rec, err := txn.Get(recKey)
		if err != nil {
			return err
		}
		var existing domain.ChatMessage
		if err := rec.Value(func(v []byte) error {
			return json.Unmarshal(v, &existing)
		}); err != nil {
			return err
		}
		existing.Content = msg.Content
		value, err := json.Marshal(existing)
		if err != nil {
			return err
		}
		return txn.Set(recKey, value)
	})
	if err != nil {
		return fmt.Errorf("upsert message %s: %w", msg.ID, err)
	}
	return nil
}

// nextSeq reads and bumps the room's record sequence inside the
// surrounding transaction. Safe under the single-writer-per-room rule.
func (s *BadgerStore) nextSeq(txn *badger.Txn) (uint64, error) {
	seqKey := s.metaKey("_seq")
	var seq uint64
	item, err := txn.Get(seqKey)
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return 0, err
	default:
		if err := item.Value(func(v []byte) error {
			seq, err = strconv.ParseUint(string(v), 10, 64)
			return err
		}); err != nil {
			return 0, err
		}
	}
	seq++
	return seq, txn.Set(seqKey, []byte(strconv.FormatUint(seq, 10)))
}

func (s *BadgerStore) Messages(_ context.Context) ([]domain.ChatMessage, error) {
	var messages []domain.ChatMessage
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := s.recordPrefix()
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var msg domain.ChatMessage
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &msg)
			}); err != nil {
				return err
			}
			messages = append(messages, msg)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan messages: %w", err)
	}
	return messages, nil
}

func (s *BadgerStore) UpsertMetadata(_ context.Context, key string, value int) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.metaKey(key), []byte(strconv.Itoa(value)))
	})
	if err != nil {
		return fmt.Errorf("upsert metadata %s: %w", key, err)
	}
	return nil
}

func (s *BadgerStore) Metadata(_ context.Context, key string) (int, bool, error) {
	var value int
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.metaKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			value, err = strconv.Atoi(string(v))
			found = err == nil
			return err
		})
	})
	if err != nil {
		return 0, false, fmt.Errorf("query metadata %s: %w", key, err)
	}
	return value, found, nil
}

// Close is a no-op: the shared BadgerDB outlives any single room.
func (s *BadgerStore) Close() error {
	return nil
}
