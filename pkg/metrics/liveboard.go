package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LiveboardMetrics records live trip feed consumption and board activity.
type LiveboardMetrics struct {
	applied   *prometheus.CounterVec
	dropped   *prometheus.CounterVec
	published *prometheus.CounterVec
	pubErrs   *prometheus.CounterVec
	pubDur    prometheus.Histogram
	snapDur   prometheus.Histogram
	connected prometheus.Gauge
}

// NewLiveboardMetrics registers the liveboard metrics on the provided
// registerer. A nil registerer yields a no-op instance.
func NewLiveboardMetrics(reg prometheus.Registerer) *LiveboardMetrics {
	if reg == nil {
		return &LiveboardMetrics{}
	}
	applied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "liveboard_events_applied",
		Help: "Live trip events merged into the board.",
	}, []string{"kind"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "liveboard_events_dropped",
		Help: "Live trip events dropped without matching board state.",
	}, []string{"kind", "reason"})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "livefeed_published",
		Help: "Live trip events published to the feed.",
	}, []string{"kind"})
	pubErrs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "livefeed_publish_errors",
		Help: "Failed live trip feed publishes.",
	}, []string{"kind"})
	pubDur := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "livefeed_publish_duration_seconds",
		Help:    "Duration of live trip feed publishes in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	snapDur := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "liveboard_snapshot_duration_seconds",
		Help:    "Duration of board snapshot builds in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	connected := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "livefeed_connected",
		Help: "Whether the feed connection is up (1) or down (0).",
	})
	reg.MustRegister(applied, dropped, published, pubErrs, pubDur, snapDur, connected)
	return &LiveboardMetrics{
		applied:   applied,
		dropped:   dropped,
		published: published,
		pubErrs:   pubErrs,
		pubDur:    pubDur,
		snapDur:   snapDur,
		connected: connected,
	}
}

// AppliedInc increments the applied counter for the event kind.
func (m *LiveboardMetrics) AppliedInc(kind string) {
	if m == nil || m.applied == nil {
		return
	}
	m.applied.WithLabelValues(normalizeLabel(kind)).Inc()
}

// DroppedInc increments the dropped counter for the event kind and reason.
func (m *LiveboardMetrics) DroppedInc(kind, reason string) {
	if m == nil || m.dropped == nil {
		return
	}
	m.dropped.WithLabelValues(normalizeLabel(kind), normalizeLabel(reason)).Inc()
}

// SnapshotObserve records the duration of a board snapshot build.
func (m *LiveboardMetrics) SnapshotObserve(d time.Duration) {
	if m == nil || m.snapDur == nil {
		return
	}
	m.snapDur.Observe(d.Seconds())
}

// PublishedInc increments the publish counter for the event kind.
func (m *LiveboardMetrics) PublishedInc(kind string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(kind)).Inc()
}

// PublishErrInc increments the publish error counter for the event kind.
func (m *LiveboardMetrics) PublishErrInc(kind string) {
	if m == nil || m.pubErrs == nil {
		return
	}
	m.pubErrs.WithLabelValues(normalizeLabel(kind)).Inc()
}

// PublishObserve records the duration of a feed publish.
func (m *LiveboardMetrics) PublishObserve(d time.Duration) {
	if m == nil || m.pubDur == nil {
		return
	}
	m.pubDur.Observe(d.Seconds())
}

// SetConnected flags the feed connection state.
func (m *LiveboardMetrics) SetConnected(connected bool) {
	if m == nil || m.connected == nil {
		return
	}
	if connected {
		m.connected.Set(1)
	} else {
		m.connected.Set(0)
	}
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
