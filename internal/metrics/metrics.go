package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsIngested tracks inbound failure events per source
	EventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remedian_events_ingested_total",
			Help: "Total number of failure events ingested",
		},
		[]string{"source"},
	)

	// TicketsCreated tracks created tickets per source and severity
	TicketsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remedian_tickets_created_total",
			Help: "Total number of tickets created",
		},
		[]string{"source", "severity"},
	)

	// DuplicatesDetected tracks dedup hits per stage (precheck or race)
	DuplicatesDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remedian_duplicates_detected_total",
			Help: "Total number of duplicate deliveries short-circuited",
		},
		[]string{"stage"},
	)

	// ClassificationFallbacks counts AI failures recovered by the keyword fallback
	ClassificationFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "remedian_classification_fallbacks_total",
			Help: "Total number of classifications served by the keyword fallback",
		},
	)

	// ClassificationLatency tracks AI classification latency per provider
	ClassificationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remedian_classification_latency_seconds",
			Help:    "AI classification latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// RemediationAttempts tracks remediation attempts per error kind
	RemediationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remedian_remediation_attempts_total",
			Help: "Total number of remediation attempts dispatched",
		},
		[]string{"kind"},
	)

	// RemediationOutcomes tracks terminal remediation outcomes per kind
	RemediationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remedian_remediation_outcomes_total",
			Help: "Total remediation outcomes (succeeded, failed, skipped, max_retries)",
		},
		[]string{"kind", "outcome"},
	)

	// PlaybookLatency tracks playbook trigger latency per playbook type
	PlaybookLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remedian_playbook_latency_seconds",
			Help:    "Playbook trigger call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"playbook"},
	)

	// DBConnectionPoolUsage tracks connection pool utilization percentage
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "remedian_db_connection_pool_usage_percent",
			Help: "Database connection pool usage percentage",
		},
	)
)
