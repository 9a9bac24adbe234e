// Package metrics centralizes the Prometheus collectors shared by the
// ingestion supervisor and execution pipeline, exposed over the admin
// HTTP server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PipelineSignalsTotal counts processed signals by type and outcome.
	PipelineSignalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clengine_pipeline_signals_total",
		Help: "Signals processed by the execution pipeline, by signal_type and outcome.",
	}, []string{"signal_type", "outcome"})

	// PipelineStepDuration measures wall-clock time spent per step action,
	// including retries.
	PipelineStepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clengine_pipeline_step_duration_seconds",
		Help:    "Time spent executing one pipeline step, including retries.",
		Buckets: prometheus.DefBuckets,
	}, []string{"action"})

	// IngestionMessagesTotal counts inbound WebSocket messages by stream
	// and whether they carried a closed bar.
	IngestionMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clengine_ingestion_messages_total",
		Help: "Inbound kline messages received by the ingestion supervisor.",
	}, []string{"stream", "closed"})

	// IngestionReconnectsTotal counts WebSocket reconnect attempts.
	IngestionReconnectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clengine_ingestion_reconnects_total",
		Help: "WebSocket reconnect attempts by the ingestion supervisor.",
	}, []string{"stream"})

	// EpisodeTransitionsTotal counts episode closes by close reason.
	EpisodeTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clengine_episode_transitions_total",
		Help: "Episode close-and-reopen transitions, by close reason kind.",
	}, []string{"reason"})
)
