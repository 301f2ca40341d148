package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lmiller1990/huddle/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Per-topic metrics are labelled with the topic class ("global",
// "activeTasks", "jobUpdate") rather than the full topic name to keep label
// cardinality independent of the job catalog size.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	heartbeatsTotal *prometheus.CounterVec
	evictionsTotal  prometheus.Counter
	onlineUsers     prometheus.Gauge

	claimsTotal   *prometheus.CounterVec
	releasesTotal *prometheus.CounterVec

	publishesTotal *prometheus.CounterVec
	dropsTotal     *prometheus.CounterVec
	subscribers    prometheus.Gauge
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "huddle" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "huddle"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.heartbeatsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "presence",
			Name:      "heartbeats_total",
			Help:      "Total liveness signals received, by user.",
		}, []string{"user"})

		p.evictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "presence",
			Name:      "evictions_total",
			Help:      "Total users force-logged-out by the sweep.",
		})

		p.onlineUsers = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "presence",
			Name:      "online_users",
			Help:      "Current number of present users.",
		})

		p.claimsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "store",
			Name:      "claims_total",
			Help:      "Total task claims, by job.",
		}, []string{"job"})

		p.releasesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "store",
			Name:      "releases_total",
			Help:      "Total task claim releases, by job.",
		}, []string{"job"})

		p.publishesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "bus",
			Name:      "publishes_total",
			Help:      "Total events published, by topic class.",
		}, []string{"topic"})

		p.dropsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "bus",
			Name:      "dropped_events_total",
			Help:      "Total events dropped on full subscriber queues, by topic class.",
		}, []string{"topic"})

		p.subscribers = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "bus",
			Name:      "subscribers",
			Help:      "Current number of attached subscribers.",
		})

		p.reg.MustRegister(p.heartbeatsTotal)
		p.reg.MustRegister(p.evictionsTotal)
		p.reg.MustRegister(p.onlineUsers)
		p.reg.MustRegister(p.claimsTotal)
		p.reg.MustRegister(p.releasesTotal)
		p.reg.MustRegister(p.publishesTotal)
		p.reg.MustRegister(p.dropsTotal)
		p.reg.MustRegister(p.subscribers)
	})
}

// PresenceMetrics implementation

// RecordHeartbeat increments the heartbeat counter for the user.
func (p *PrometheusCollector) RecordHeartbeat(userID string) {
	p.ensureRegistered()
	p.heartbeatsTotal.WithLabelValues(userID).Inc()
}

// RecordEviction adds the number of users evicted by one sweep pass.
func (p *PrometheusCollector) RecordEviction(count int) {
	p.ensureRegistered()
	p.evictionsTotal.Add(float64(count))
}

// SetOnlineUsers sets the present users gauge.
func (p *PrometheusCollector) SetOnlineUsers(count int) {
	p.ensureRegistered()
	p.onlineUsers.Set(float64(count))
}

// StoreMetrics implementation

// RecordClaim increments the claim counter for the job.
func (p *PrometheusCollector) RecordClaim(jobID string) {
	p.ensureRegistered()
	p.claimsTotal.WithLabelValues(jobID).Inc()
}

// RecordRelease increments the release counter for the job.
func (p *PrometheusCollector) RecordRelease(jobID string) {
	p.ensureRegistered()
	p.releasesTotal.WithLabelValues(jobID).Inc()
}

// BusMetrics implementation

// RecordPublish increments the publish counter for the topic's class.
func (p *PrometheusCollector) RecordPublish(topic string) {
	p.ensureRegistered()
	p.publishesTotal.WithLabelValues(topicClass(topic)).Inc()
}

// RecordDroppedEvent increments the drop counter for the topic's class.
func (p *PrometheusCollector) RecordDroppedEvent(topic string) {
	p.ensureRegistered()
	p.dropsTotal.WithLabelValues(topicClass(topic)).Inc()
}

// SetSubscribers sets the subscribers gauge.
func (p *PrometheusCollector) SetSubscribers(count int) {
	p.ensureRegistered()
	p.subscribers.Set(float64(count))
}

// topicClass strips the per-job suffix from scoped topic names.
func topicClass(topic string) string {
	if i := strings.IndexByte(topic, ':'); i >= 0 {
		return topic[:i]
	}

	return topic
}
