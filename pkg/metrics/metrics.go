package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	LeadsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexusq_leads_created_total",
			Help: "Total number of lead creation attempts by outcome (count)",
		},
		[]string{"status"},
	)

	EventsEmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexusq_events_emitted_total",
			Help: "Total number of event rows written (count)",
		},
		[]string{"event_type", "status"},
	)

	AutomationNotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexusq_automation_notifications_total",
			Help: "Total number of automation webhook notifications by outcome (count)",
		},
		[]string{"status"},
	)

	AutomationNotificationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nexusq_automation_notification_duration_ms",
			Help:    "Duration of automation webhook calls in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
	)

	AutomationPoolRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "nexusq_automation_pool_running",
			Help: "Number of automation notifications currently in flight (count)",
		},
	)

	IntakeSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexusq_intake_submissions_total",
			Help: "Total number of intake submissions by result (count)",
		},
		[]string{"result"},
	)

	IntakeTargetRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexusq_intake_target_requests_total",
			Help: "Total number of intake webhook requests per target outcome (count)",
		},
		[]string{"status"},
	)

	IntakeDedupChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexusq_intake_dedup_checks_total",
			Help: "Total number of intake duplicate checks by outcome (count)",
		},
		[]string{"status"},
	)

	IntakeDedupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nexusq_intake_dedup_duration_ms",
			Help:    "Latency of the intake duplicate check against Redis (ms)",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		},
		[]string{"status"},
	)

	PipelineUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexusq_pipeline_updates_total",
			Help: "Total number of pipeline stage updates relayed to the update workflow (count)",
		},
		[]string{"status"},
	)

	SnapshotLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexusq_snapshot_loads_total",
			Help: "Total number of snapshot loads by mode and outcome (count)",
		},
		[]string{"mode", "status"},
	)

	SnapshotLoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nexusq_snapshot_load_duration_ms",
			Help:    "Duration of snapshot loads in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		},
	)

	RealtimeChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexusq_realtime_changes_total",
			Help: "Total number of table change notifications received (count)",
		},
		[]string{"table"},
	)

	RealtimeSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "nexusq_realtime_subscribers",
			Help: "Number of active realtime subscriptions (count)",
		},
	)

	RealtimeDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nexusq_realtime_dropped_total",
			Help: "Total number of change notifications dropped for slow subscribers (count)",
		},
	)

	KafkaMessagesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_written_total",
			Help: "Total number of messages written to Kafka (count)",
		},
		[]string{"topic", "status"},
	)

	KafkaWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_write_duration_ms",
			Help:    "Duration of writing messages to Kafka in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"topic"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	FallbackUsageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallback_usage_total",
			Help: "Total number of times fallback strategies were used (count)",
		},
		[]string{"service", "strategy", "reason"},
	)

	DatabaseQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries (count)",
		},
		[]string{"table", "operation", "status"},
	)

	DatabaseQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_ms",
			Help:    "Duration of database queries in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"table", "operation"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			LeadsCreatedTotal,
			EventsEmittedTotal,
			AutomationNotificationsTotal,
			AutomationNotificationDuration,
			AutomationPoolRunning,
			IntakeSubmissionsTotal,
			IntakeTargetRequestsTotal,
			IntakeDedupChecksTotal,
			IntakeDedupDuration,
			PipelineUpdatesTotal,
			SnapshotLoadsTotal,
			SnapshotLoadDuration,
			RealtimeChangesTotal,
			RealtimeSubscribers,
			RealtimeDroppedTotal,
			KafkaMessagesWrittenTotal,
			KafkaWriteDuration,
			CircuitBreakerState,
			CircuitBreakerRequests,
			CircuitBreakerFailures,
			RateLimitRequestsTotal,
			FallbackUsageTotal,
			DatabaseQueriesTotal,
			DatabaseQueryDuration,
		)
	})
}

func ObserveAutomationNotification(duration time.Duration, status string) {
	AutomationNotificationDuration.Observe(float64(duration.Milliseconds()))
	AutomationNotificationsTotal.WithLabelValues(status).Inc()
}

func ObserveSnapshotLoad(duration time.Duration, mode, status string) {
	SnapshotLoadDuration.Observe(float64(duration.Milliseconds()))
	SnapshotLoadsTotal.WithLabelValues(mode, status).Inc()
}

func ObserveIntakeDedup(duration time.Duration, status string) {
	IntakeDedupChecksTotal.WithLabelValues(status).Inc()
	IntakeDedupDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func IncKafkaMessagesWritten(topic, status string) {
	KafkaMessagesWrittenTotal.WithLabelValues(topic, status).Inc()
}

func ObserveKafkaWriteDuration(topic string, duration time.Duration) {
	KafkaWriteDuration.WithLabelValues(topic).Observe(float64(duration.Milliseconds()))
}

func IncDatabaseQuery(table, operation, status string) {
	DatabaseQueriesTotal.WithLabelValues(table, operation, status).Inc()
}

func ObserveDatabaseQueryDuration(table, operation string, duration time.Duration) {
	DatabaseQueryDuration.WithLabelValues(table, operation).Observe(float64(duration.Milliseconds()))
}

// TrackQuery records count and latency for a single store call.
func TrackQuery(table, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	IncDatabaseQuery(table, operation, status)
	ObserveDatabaseQueryDuration(table, operation, time.Since(start))
}
