package service

import (
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsSnapshot is a point-in-time summary of the collectors.
type MetricsSnapshot struct {
	StatementCount             uint64         `json:"statement_count"`
	StatementErrors            uint64         `json:"statement_errors"`
	AverageStatementDurationMs float64        `json:"average_statement_duration_ms"`
	TasksSubmitted             uint64         `json:"tasks_submitted"`
	TasksSucceeded             uint64         `json:"tasks_succeeded"`
	TasksFailed                uint64         `json:"tasks_failed"`
	CacheHits                  uint64         `json:"cache_hits"`
	CacheMisses                uint64         `json:"cache_misses"`
	CacheHitRatio              float64        `json:"cache_hit_ratio"`
	Goroutines                 int            `json:"goroutines"`
	Backlog                    map[string]int `json:"backlog,omitempty"`
	GeneratedAt                time.Time      `json:"generated_at"`
}

// MetricsService encapsulates Prometheus instrumentation for the entity
// stores, the task bridge and the cache.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	statementDuration *prometheus.HistogramVec
	statementTotal    *prometheus.CounterVec
	tasksSubmitted    *prometheus.CounterVec
	taskDuration      *prometheus.HistogramVec
	cacheLatency      prometheus.Observer
	cacheHitRatio     prometheus.Gauge
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter

	statementCount         uint64
	statementErrors        uint64
	statementDurationTotal uint64
	taskSubmitCount        uint64
	taskSuccessCount       uint64
	taskFailureCount       uint64
	cacheHitCount          uint64
	cacheMissCount         uint64

	backlogMu sync.RWMutex
	backlogs  map[string]func() int
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	statementDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_statement_duration_seconds",
		Help:    "Duration of entity store statements in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"table", "op"})

	statementTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_statements_total",
		Help: "Total entity store statements by outcome",
	}, []string{"table", "op", "outcome"})

	tasksSubmitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bridge_tasks_submitted_total",
		Help: "Total tasks handed to the worker pool",
	}, []string{"task"})

	taskDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bridge_task_duration_seconds",
		Help:    "Time from submission to completion",
		Buckets: prometheus.DefBuckets,
	}, []string{"task", "outcome"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(statementDuration, statementTotal, tasksSubmitted, taskDuration, cacheLatency, cacheHitRatio, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		statementDuration: statementDuration,
		statementTotal:    statementTotal,
		tasksSubmitted:    tasksSubmitted,
		taskDuration:      taskDuration,
		cacheLatency:      cacheLatency,
		cacheHitRatio:     cacheHitRatio,
		cacheHits:         cacheHits,
		cacheMisses:       cacheMisses,
		backlogs:          make(map[string]func() int),
	}
}

// ObserveBacklog exports depth as backlog_depth{queue=name}. A second call
// for the same name replaces the source.
func (m *MetricsService) ObserveBacklog(name string, depth func() int) {
	if m == nil || depth == nil {
		return
	}
	m.backlogMu.Lock()
	_, known := m.backlogs[name]
	m.backlogs[name] = depth
	m.backlogMu.Unlock()
	if known {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "backlog_depth",
		Help:        "Items waiting to be processed",
		ConstLabels: prometheus.Labels{"queue": name},
	}, func() float64 {
		m.backlogMu.RLock()
		defer m.backlogMu.RUnlock()
		return float64(m.backlogs[name]())
	}))
}

// Registry exposes the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveStatement records one entity store statement.
func (m *MetricsService) ObserveStatement(table, op string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		atomic.AddUint64(&m.statementErrors, 1)
	}
	m.statementDuration.WithLabelValues(table, op).Observe(duration.Seconds())
	m.statementTotal.WithLabelValues(table, op, outcome).Inc()
	atomic.AddUint64(&m.statementCount, 1)
	atomic.AddUint64(&m.statementDurationTotal, uint64(duration.Nanoseconds()))
}

// TaskSubmitted counts a task handed to the bridge.
func (m *MetricsService) TaskSubmitted(name string) {
	if m == nil {
		return
	}
	m.tasksSubmitted.WithLabelValues(name).Inc()
	atomic.AddUint64(&m.taskSubmitCount, 1)
}

// TaskCompleted records a task reaching a terminal state.
func (m *MetricsService) TaskCompleted(name, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.taskDuration.WithLabelValues(name, outcome).Observe(duration.Seconds())
	if outcome == "succeeded" {
		atomic.AddUint64(&m.taskSuccessCount, 1)
	} else {
		atomic.AddUint64(&m.taskFailureCount, 1)
	}
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	statements := atomic.LoadUint64(&m.statementCount)
	statementDuration := atomic.LoadUint64(&m.statementDurationTotal)

	var ratio float64
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}

	var avgStatementMs float64
	if statements > 0 {
		avgStatementMs = float64(statementDuration) / float64(statements) / float64(time.Millisecond)
	}

	var backlog map[string]int
	m.backlogMu.RLock()
	if len(m.backlogs) > 0 {
		backlog = make(map[string]int, len(m.backlogs))
		for name, depth := range m.backlogs {
			backlog[name] = depth()
		}
	}
	m.backlogMu.RUnlock()

	return MetricsSnapshot{
		StatementCount:             statements,
		StatementErrors:            atomic.LoadUint64(&m.statementErrors),
		AverageStatementDurationMs: avgStatementMs,
		TasksSubmitted:             atomic.LoadUint64(&m.taskSubmitCount),
		TasksSucceeded:             atomic.LoadUint64(&m.taskSuccessCount),
		TasksFailed:                atomic.LoadUint64(&m.taskFailureCount),
		CacheHits:                  hits,
		CacheMisses:                misses,
		CacheHitRatio:              ratio,
		Goroutines:                 runtime.NumGoroutine(),
		Backlog:                    backlog,
		GeneratedAt:                time.Now().UTC(),
	}
}
