// Command inspect dumps the persisted state of one room: the message log
// in insertion order and the like counter. Operator tooling only, the
// server does not need it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"chatroom/domain"
	"chatroom/repositories"
)

func main() {
	dataDir := flag.String("data", "./data", "Data directory of the server")
	backend := flag.String("backend", "sqlite", "Store backend: sqlite or badger")
	room := flag.String("room", "", "Room name to inspect")
	flag.Parse()

	if *room == "" {
		log.Fatal("Missing -room")
	}

	store, cleanup, err := openStore(*backend, *dataDir, domain.RoomID(*room))
	if err != nil {
		log.Fatal("Error while opening store: ", err)
	}
	defer cleanup()

	ctx := context.Background()
	messages, err := store.Messages(ctx)
	if err != nil {
		log.Fatal("Error while reading messages: ", err)
	}
	likes, found, err := store.Metadata(ctx, repositories.MetadataLikes)
	if err != nil {
		log.Fatal("Error while reading metadata: ", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "ID", "User", "Role", "Content"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.AppendBulk(lo.Map(messages, func(msg domain.ChatMessage, i int) []string {
		return []string{fmt.Sprintf("%d", i+1), msg.ID, msg.User, string(msg.Role), msg.Content}
	}))
	table.Render()

	color.Cyan.Printf("\n%d message(s) in room %q\n", len(messages), *room)
	if found {
		color.Green.Printf("Likes: %d\n", likes)
	} else {
		color.Yellow.Println("Likes: no counter row yet (0)")
	}
}

func openStore(backend, dataDir string, room domain.RoomID) (repositories.Store, func(), error) {
	log := slog.Default()
	switch backend {
	case "sqlite":
		store, err := repositories.NewSQLStore(filepath.Join(dataDir, string(room)+".db"), log)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case "badger":
		// BypassLockGuard allows opening while the server holds the lock.
		opts := badger.DefaultOptions(filepath.Join(dataDir, "badger")).
			WithReadOnly(true).
			WithBypassLockGuard(true).
			WithLoggingLevel(badger.WARNING)
		db, err := badger.Open(opts)
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewBadgerStore(db, room, log), func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", backend)
	}
}
