package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chatroom/domain"
	"chatroom/services"
)

type Handler struct {
	log            *slog.Logger
	service        services.IRoomService
	allowedOrigins []string
	connBufferSize int
	staticDir      string
}

func NewHandler(log *slog.Logger, service services.IRoomService, allowedOrigins []string, connBufferSize int, staticDir string) *Handler {
	return &Handler{
		log:            log,
		service:        service,
		allowedOrigins: allowedOrigins,
		connBufferSize: connBufferSize,
		staticDir:      staticDir,
	}
}

// SetupRouter configures and returns the HTTP router. Anything that is
// not a room endpoint falls back to the static asset directory.
func (h *Handler) SetupRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/rooms/{room}/ws", h.HandleWebSocket).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")

	if h.staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(h.staticDir)))
	}
	return r
}

// createUpgrader creates a WebSocket upgrader with the given allowed origins
func createUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowedMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		allowedMap[origin] = true
	}

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedMap["*"] {
				return true
			}
			return allowedMap[r.Header.Get("Origin")]
		},
	}
}

// HandleWebSocket handles GET /rooms/{room}/ws.
//
// The read loop forwards every payload to the room actor untouched; the
// write pump drains the connection's sink. All room semantics (echo,
// snapshot on attach, persistence) live in the actor, not here.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	room := mux.Vars(r)["room"]
	handle, err := h.service.JoinRoom(room)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	upgrader := createUpgrader(h.allowedOrigins)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", "room", room, "error", err)
		return
	}
	defer conn.Close()

	sink := NewSink(uuid.NewString(), h.connBufferSize)
	handle.Dispatch(domain.AttachCommand{Sink: sink})
	defer handle.Dispatch(domain.DetachCommand{ConnID: sink.ID()})

	done := make(chan struct{})
	defer close(done)
	go h.writePump(conn, sink, done)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			h.log.Debug("Client disconnected", "room", room, "conn", sink.ID(), "error", err)
			return
		}
		handle.TryDispatch(domain.InboundFrame{ConnID: sink.ID(), Payload: payload})
	}
}

func (h *Handler) writePump(conn *websocket.Conn, sink *Sink, done <-chan struct{}) {
	for {
		select {
		case payload := <-sink.Frames():
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.log.Debug("Write failed, closing pump", "conn", sink.ID(), "error", err)
				return
			}
		case <-done:
			return
		}
	}
}
