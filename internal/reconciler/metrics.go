package reconciler

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"appdeployer/internal/lifecycle"
	"appdeployer/pkg/logging"
)

const metricsNamespace = "appdeployer"

// Metrics tracks reconciliation metrics for monitoring and alerting.
//
// Counters are exported through Prometheus and mirrored in an in-process
// summary served on the status endpoint.
type Metrics struct {
	mu sync.RWMutex

	reconcileTotal     *prometheus.CounterVec
	resourceApplyTotal *prometheus.CounterVec
	reconcileDuration  *prometheus.HistogramVec
	eventsDropped      *prometheus.CounterVec
	queueDepth         prometheus.Gauge
	inFlight           prometheus.Gauge

	totalReconciles   int64
	totalSuccesses    int64
	totalPartial      int64
	totalFailures     int64
	totalInterrupted  int64
	totalDropped      int64
	perKind           map[Kind]*kindMetrics
	lastReconcileAt   time.Time
	lastFailureAt     time.Time
	currentQueueDepth int
	currentInFlight   int
}

type kindMetrics struct {
	Applies  int64
	Failures int64
}

// NewMetrics creates the metric set and registers it with reg when non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reconcileTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reconcile_total",
			Help:      "Lifecycle events reconciled, by action and result.",
		}, []string{"action", "result"}),
		resourceApplyTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "resource_apply_total",
			Help:      "Resource-kind steps executed, by kind, operation and result.",
		}, []string{"kind", "operation", "result"}),
		reconcileDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Time spent reconciling one lifecycle event.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
		eventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_dropped_total",
			Help:      "Deliveries acknowledged without reconciliation, by reason.",
		}, []string{"reason"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "queue_depth",
			Help:      "Requests waiting for a worker.",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "in_flight",
			Help:      "Requests currently being reconciled.",
		}),
		perKind: make(map[Kind]*kindMetrics),
	}

	if reg != nil {
		reg.MustRegister(
			m.reconcileTotal,
			m.resourceApplyTotal,
			m.reconcileDuration,
			m.eventsDropped,
			m.queueDepth,
			m.inFlight,
		)
	}
	return m
}

// RecordOutcome records a finished reconciliation.
func (m *Metrics) RecordOutcome(o Outcome) {
	if m == nil {
		return
	}
	result := o.Result()
	action := string(o.Event.Action)

	m.reconcileTotal.WithLabelValues(action, string(result)).Inc()
	if result != ResultDropped {
		m.reconcileDuration.WithLabelValues(action).Observe(o.Duration().Seconds())
	}
	for _, r := range o.Resources {
		res := "success"
		if r.Err != nil {
			res = "failure"
		}
		m.resourceApplyTotal.WithLabelValues(string(r.Kind), string(r.Operation), res).Inc()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalReconciles++
	m.lastReconcileAt = o.Finished
	switch result {
	case ResultSuccess:
		m.totalSuccesses++
	case ResultPartial:
		m.totalPartial++
		m.lastFailureAt = o.Finished
	case ResultFailed:
		m.totalFailures++
		m.lastFailureAt = o.Finished
	case ResultInterrupted:
		m.totalInterrupted++
	case ResultDropped:
		m.totalDropped++
	}
	for _, r := range o.Resources {
		km, ok := m.perKind[r.Kind]
		if !ok {
			km = &kindMetrics{}
			m.perKind[r.Kind] = km
		}
		km.Applies++
		if r.Err != nil {
			km.Failures++
		}
	}
}

// RecordDropped records a delivery acknowledged without reconciliation.
func (m *Metrics) RecordDropped(reason string) {
	if m == nil {
		return
	}
	m.eventsDropped.WithLabelValues(reason).Inc()

	m.mu.Lock()
	m.totalDropped++
	m.mu.Unlock()

	logging.Debug("Metrics", "Dropped event: %s", reason)
}

// SetQueueDepth records the number of waiting requests.
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))

	m.mu.Lock()
	m.currentQueueDepth = n
	m.mu.Unlock()
}

// AddInFlight adjusts the number of requests being reconciled.
func (m *Metrics) AddInFlight(delta int) {
	if m == nil {
		return
	}
	m.inFlight.Add(float64(delta))

	m.mu.Lock()
	m.currentInFlight += delta
	m.mu.Unlock()
}

// MetricsSummary provides a summary of reconciliation metrics.
type MetricsSummary struct {
	TotalReconciles  int64                    `json:"total_reconciles"`
	TotalSuccesses   int64                    `json:"total_successes"`
	TotalPartial     int64                    `json:"total_partial"`
	TotalFailures    int64                    `json:"total_failures"`
	TotalInterrupted int64                    `json:"total_interrupted"`
	TotalDropped     int64                    `json:"total_dropped"`
	QueueDepth       int                      `json:"queue_depth"`
	InFlight         int                      `json:"in_flight"`
	PerKind          map[Kind]KindMetricsView `json:"per_kind"`
	FailureRate      float64                  `json:"failure_rate"`
	LastReconcileAt  time.Time                `json:"last_reconcile_at,omitempty"`
	LastFailureAt    time.Time                `json:"last_failure_at,omitempty"`
}

// KindMetricsView is a read-only view of per-kind metrics.
type KindMetricsView struct {
	Applies  int64 `json:"applies"`
	Failures int64 `json:"failures"`
}

// Summary returns a snapshot of the in-process counters.
func (m *Metrics) Summary() MetricsSummary {
	if m == nil {
		return MetricsSummary{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := MetricsSummary{
		TotalReconciles:  m.totalReconciles,
		TotalSuccesses:   m.totalSuccesses,
		TotalPartial:     m.totalPartial,
		TotalFailures:    m.totalFailures,
		TotalInterrupted: m.totalInterrupted,
		TotalDropped:     m.totalDropped,
		QueueDepth:       m.currentQueueDepth,
		InFlight:         m.currentInFlight,
		PerKind:          make(map[Kind]KindMetricsView, len(m.perKind)),
		LastReconcileAt:  m.lastReconcileAt,
		LastFailureAt:    m.lastFailureAt,
	}
	for k, v := range m.perKind {
		s.PerKind[k] = KindMetricsView{Applies: v.Applies, Failures: v.Failures}
	}
	if attempted := m.totalSuccesses + m.totalPartial + m.totalFailures; attempted > 0 {
		s.FailureRate = float64(m.totalPartial+m.totalFailures) / float64(attempted)
	}
	return s
}

// droppedReason maps a decode error to an events_dropped_total label.
func droppedReason(err error) string {
	var me *lifecycle.MalformedEventError
	if errors.As(err, &me) {
		return me.Reason
	}
	return "unknown"
}
