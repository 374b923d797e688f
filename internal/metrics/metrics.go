// Package metrics holds the ingestion counters shared by the API and the worker
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion sources
const (
	SourceWebhook = "webhook"
	SourceIndex   = "index"
	SourceSync    = "sync"
)

var (
	CommitsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_commits_ingested_total",
			Help: "Commits normalized and persisted",
		},
		[]string{"source"},
	)

	MalformedCommits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_malformed_commits_total",
			Help: "Commit records rejected during normalization",
		},
		[]string{"source"},
	)

	CoverageSnapshots = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_coverage_snapshots_total",
			Help: "Coverage snapshots stored",
		},
	)

	RejectedPayloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_rejected_payloads_total",
			Help: "Webhook payloads rejected as invalid",
		},
		[]string{"kind"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_cache_lookups_total",
			Help: "Analytics cache lookups by result",
		},
		[]string{"result"},
	)
)
