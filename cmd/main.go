package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"

	"chatroom/domain"
	apperrors "chatroom/errors"
	"chatroom/observability"
	"chatroom/repositories"
	"chatroom/runtime"
	"chatroom/runtime/workers"
	"chatroom/services"
	"chatroom/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so deferred cleanups always execute.
func run() error {
	// 1. Configuration & Logger
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, ".env file not found, using environment: %v\n", err)
	}
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// 2. Metrics
	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	// 3. Durable store factory (one store per room)
	newStore, cleanup, err := storeFactory(config, log)
	if err != nil {
		return err
	}
	defer cleanup()

	// 4. Supervision & room host
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewHealthWorker(log, metrics, config.MetricInterval))
	host := runtime.NewHost(log, sup, newStore, metrics, config.BufferSize)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	host.Start(ctx)

	// 6. HTTP server (websocket transport + metrics + static assets)
	service := services.NewRoomService(host)
	origins := strings.Split(config.AllowedOrigins, ",")
	handler := ws.NewHandler(log, service, origins, config.ConnectionBufferSize, config.StaticDir)

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler: c.Handler(handler.SetupRouter()),
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", srv.Addr, "backend", config.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown failed", "error", err)
	}
	host.Stop()
	log.Info("Program stopped cleanly")

	return nil
}

// storeFactory builds the per-room store opener for the configured
// backend. The badger backend shares one DB across rooms, so its close
// is returned as a cleanup instead of being owned by any single room.
func storeFactory(config Config, log *slog.Logger) (runtime.StoreFactory, func(), error) {
	switch config.StoreBackend {
	case "sqlite":
		factory := func(room domain.RoomID) (repositories.Store, error) {
			path := filepath.Join(config.DataDir, string(room)+".db")
			return repositories.NewSQLStore(path, log)
		}
		return factory, func() {}, nil

	case "badger":
		db, err := badger.Open(badger.DefaultOptions(filepath.Join(config.DataDir, "badger")).
			WithLoggingLevel(badger.INFO))
		if err != nil {
			return nil, nil, fmt.Errorf("database opening failed: %w", err)
		}
		factory := func(room domain.RoomID) (repositories.Store, error) {
			return repositories.NewBadgerStore(db, room, log), nil
		}
		cleanup := func() {
			log.Info("Closing BadgerDB...")
			_ = db.Close()
		}
		return factory, cleanup, nil

	default:
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownBackend, config.StoreBackend)
	}
}
