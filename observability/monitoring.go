// Package observability exposes the room server's Prometheus metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics aggregates every collector the server updates. One instance is
// shared by all rooms; per-room labels are deliberately absent to keep
// cardinality independent of room churn.
type Metrics struct {
	MessagesApplied  prometheus.Counter
	LikesTotal       prometheus.Counter
	Broadcasts       prometheus.Counter
	ParseFailures    prometheus.Counter
	ConnectedClients prometheus.Gauge
	ProcessRSSBytes  prometheus.Gauge
	ProcessCPU       prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MessagesApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatroom_messages_applied_total",
			Help: "Add/update frames applied to room state and persisted.",
		}),
		LikesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatroom_likes_total",
			Help: "Like frames applied since process start.",
		}),
		Broadcasts: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatroom_broadcasts_total",
			Help: "Broadcasts fanned out to connection sets.",
		}),
		ParseFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatroom_parse_failures_total",
			Help: "Inbound payloads that failed parsing or validation.",
		}),
		ConnectedClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chatroom_connected_clients",
			Help: "Currently attached websocket connections.",
		}),
		ProcessRSSBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chatroom_process_rss_bytes",
			Help: "Resident memory of the server process.",
		}),
		ProcessCPU: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chatroom_process_cpu_percent",
			Help: "CPU usage of the server process.",
		}),
	}
}
