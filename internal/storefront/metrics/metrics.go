// Package metrics содержит Prometheus метрики слоя доступа к данным.
// Методы nil *Metrics ничего не делают.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Значения метки outcome.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeShared  = "shared"
)

// Metrics содержит коллекторы клиента.
type Metrics struct {
	queryFetches   *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	dedupHits      *prometheus.CounterVec
	mutations      *prometheus.CounterVec
	invalidations  *prometheus.CounterVec
	refetches      *prometheus.CounterVec
	evictions      prometheus.Counter
	activeEntries  prometheus.Gauge
	refreshes      *prometheus.CounterVec
	aiBranches     *prometheus.CounterVec
	aiCallDuration *prometheus.HistogramVec
}

// New создает метрики и регистрирует их в registerer.
func New(namespace string, registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		queryFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "query_fetches_total",
				Help:      "Network fetches issued by the query cache",
			},
			[]string{"query", "outcome"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "query_fetch_duration_seconds",
				Help:      "Duration of query fetches in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"query"},
		),
		dedupHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "dedup_hits_total",
				Help:      "Subscriptions served by an existing entry or in-flight fetch",
			},
			[]string{"query"},
		),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "mutations_total",
				Help:      "Mutations executed through the query cache",
			},
			[]string{"mutation", "outcome"},
		),
		invalidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "invalidations_total",
				Help:      "Invalidated tags",
			},
			[]string{"tag"},
		),
		refetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "refetches_total",
				Help:      "Refetches scheduled by invalidation",
			},
			[]string{"query"},
		),
		evictions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "evictions_total",
				Help:      "Unsubscribed entries evicted after the retention window",
			},
		),
		activeEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "entries",
				Help:      "Query entries currently held by the cache",
			},
		),
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "refreshes_total",
				Help:      "Credential refresh attempts",
			},
			[]string{"outcome"},
		),
		aiBranches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ai",
				Name:      "branches_total",
				Help:      "AI generation branches by field and outcome",
			},
			[]string{"field", "outcome"},
		),
		aiCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "ai",
				Name:      "call_duration_seconds",
				Help:      "Duration of calls to external AI services",
				Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"service"},
		),
	}

	if registerer != nil {
		registerer.MustRegister(
			m.queryFetches,
			m.fetchDuration,
			m.dedupHits,
			m.mutations,
			m.invalidations,
			m.refetches,
			m.evictions,
			m.activeEntries,
			m.refreshes,
			m.aiBranches,
			m.aiCallDuration,
		)
	}
	return m
}

// RecordFetch учитывает сетевой запрос движка кэша.
func (m *Metrics) RecordFetch(query string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.queryFetches.WithLabelValues(query, outcome(err)).Inc()
	m.fetchDuration.WithLabelValues(query).Observe(duration.Seconds())
}

// RecordDedup учитывает подписку без нового запроса.
func (m *Metrics) RecordDedup(query string) {
	if m == nil {
		return
	}
	m.dedupHits.WithLabelValues(query).Inc()
}

// RecordMutation учитывает выполненную мутацию.
func (m *Metrics) RecordMutation(mutation string, err error) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(mutation, outcome(err)).Inc()
}

// RecordInvalidation учитывает инвалидированный тег.
func (m *Metrics) RecordInvalidation(tag string) {
	if m == nil {
		return
	}
	m.invalidations.WithLabelValues(tag).Inc()
}

// RecordRefetch учитывает перезапрос после инвалидации.
func (m *Metrics) RecordRefetch(query string) {
	if m == nil {
		return
	}
	m.refetches.WithLabelValues(query).Inc()
}

// RecordEviction учитывает вытеснение записи.
func (m *Metrics) RecordEviction() {
	if m == nil {
		return
	}
	m.evictions.Inc()
}

// SetEntries задает число записей кэша.
func (m *Metrics) SetEntries(n int) {
	if m == nil {
		return
	}
	m.activeEntries.Set(float64(n))
}

// RecordRefresh учитывает попытку обновления токенов.
func (m *Metrics) RecordRefresh(result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(result).Inc()
}

// RecordBranch учитывает ветку AI генерации.
func (m *Metrics) RecordBranch(field string, err error) {
	if m == nil {
		return
	}
	m.aiBranches.WithLabelValues(field, outcome(err)).Inc()
}

// RecordAICall учитывает длительность вызова AI сервиса.
func (m *Metrics) RecordAICall(service string, duration time.Duration) {
	if m == nil {
		return
	}
	m.aiCallDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
