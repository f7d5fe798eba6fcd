package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage labels for ItemsFailed.
const (
	StageClassify  = "classify"
	StageFetch     = "fetch_source"
	StageRecord    = "record_stats"
	StageDispatch  = "dispatch"
	StagePublish   = "publish"
	StageBatch     = "batch"
	StagePropagate = "propagate"
	StageReport    = "report"
)

// Metrics holds all Prometheus metrics for the change pipeline.
type Metrics struct {
	EventsReceived         prometheus.Counter
	ChangesClassified      *prometheus.CounterVec
	ItemsFailed            *prometheus.CounterVec
	NotificationsPublished prometheus.Counter
	PublishFailures        prometheus.Counter
	StatsCreated           prometheus.Counter
	ReportsApplied         prometheus.Counter
	PropagationSubmitted   *prometheus.CounterVec
	PropagationDropped     *prometheus.CounterVec
	PropagationFailed      *prometheus.CounterVec
	IngestDuration         prometheus.Histogram
}

// New creates all pipeline metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "authlinks_events_received_total",
			Help: "Total number of authority change events received",
		}),
		ChangesClassified: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "authlinks_changes_classified_total",
			Help: "Total number of processable changes by classified type",
		}, []string{"type"}),
		ItemsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "authlinks_items_failed_total",
			Help: "Total number of items that failed, by pipeline stage",
		}, []string{"stage"}),
		NotificationsPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "authlinks_notifications_published_total",
			Help: "Total number of link-update notifications published",
		}),
		PublishFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "authlinks_publish_failures_total",
			Help: "Total number of failed notification publish calls",
		}),
		StatsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "authlinks_data_stats_created_total",
			Help: "Total number of authority data stats persisted",
		}),
		ReportsApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "authlinks_link_reports_applied_total",
			Help: "Total number of link update reports applied to data stats",
		}),
		PropagationSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "authlinks_propagation_submitted_total",
			Help: "Total number of member tenant propagation tasks submitted",
		}, []string{"kind"}),
		PropagationDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "authlinks_propagation_dropped_total",
			Help: "Total number of propagation tasks rejected by a full queue",
		}, []string{"kind"}),
		PropagationFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "authlinks_propagation_failed_total",
			Help: "Total number of propagation tasks that returned an error",
		}, []string{"kind"}),
		IngestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "authlinks_ingest_duration_seconds",
			Help:    "Duration of one tenant/user sub-batch through the pipeline",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

func (m *Metrics) AddEventsReceived(n int) {
	m.EventsReceived.Add(float64(n))
}

func (m *Metrics) IncrementClassified(changeType string) {
	m.ChangesClassified.WithLabelValues(changeType).Inc()
}

func (m *Metrics) IncrementFailed(stage string) {
	m.ItemsFailed.WithLabelValues(stage).Inc()
}

func (m *Metrics) AddPublished(n int) {
	m.NotificationsPublished.Add(float64(n))
}

func (m *Metrics) IncrementPublishFailures() {
	m.PublishFailures.Inc()
}

func (m *Metrics) AddStatsCreated(n int) {
	m.StatsCreated.Add(float64(n))
}

func (m *Metrics) AddReportsApplied(n int) {
	m.ReportsApplied.Add(float64(n))
}

func (m *Metrics) IncrementPropagationSubmitted(kind string) {
	m.PropagationSubmitted.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementPropagationDropped(kind string) {
	m.PropagationDropped.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementPropagationFailed(kind string) {
	m.PropagationFailed.WithLabelValues(kind).Inc()
}

// ObserveIngest records the duration of one sub-batch.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveIngest(start time.Time) {
	m.IngestDuration.Observe(time.Since(start).Seconds())
}
