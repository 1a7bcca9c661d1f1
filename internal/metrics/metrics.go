package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the watcher. A nil *Metrics
// is valid everywhere: every method is a no-op on nil, so tests and
// partial wiring never need a registry.
type Metrics struct {
	TradesReceived *prometheus.CounterVec // by source
	ParseDrops     prometheus.Counter
	TitleDrops     prometheus.Counter
	Duplicates     prometheus.Counter
	Anomalies      *prometheus.CounterVec // by severity
	FeedReconnects prometheus.Counter
	PollErrors     prometheus.Counter
	SinkErrors     *prometheus.CounterVec // by sink
	IntakeDepth    prometheus.Gauge
	MarketWindows  prometheus.Gauge
}

// New creates and registers all metrics under the given namespace.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "whale_watch"
	}

	return &Metrics{
		TradesReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_received_total",
			Help:      "Trade events received, before deduplication",
		}, []string{"source"}),
		ParseDrops: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_drops_total",
			Help:      "Feed frames dropped as malformed or non-trade",
		}),
		TitleDrops: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "title_drops_total",
			Help:      "Polled trades dropped because no title resolved",
		}),
		Duplicates: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_total",
			Help:      "Trade events rejected by the dedup gate",
		}),
		Anomalies: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anomalies_total",
			Help:      "Anomalous trades emitted to sinks",
		}, []string{"severity"}),
		FeedReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_reconnects_total",
			Help:      "Websocket feed reconnection attempts",
		}),
		PollErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_errors_total",
			Help:      "Failed requests during poll cycles",
		}),
		SinkErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Errors from downstream sinks",
		}, []string{"sink"}),
		IntakeDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "intake_depth",
			Help:      "Events buffered between producers and the pipeline",
		}),
		MarketWindows: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "market_windows",
			Help:      "Per-market statistics windows created",
		}),
	}
}

// IncReceived counts a received trade by source.
func (m *Metrics) IncReceived(source string) {
	if m != nil {
		m.TradesReceived.WithLabelValues(source).Inc()
	}
}

// IncParseDrop counts a dropped feed frame.
func (m *Metrics) IncParseDrop() {
	if m != nil {
		m.ParseDrops.Inc()
	}
}

// IncTitleDrop counts a trade dropped for lack of a title.
func (m *Metrics) IncTitleDrop() {
	if m != nil {
		m.TitleDrops.Inc()
	}
}

// IncDuplicate counts a dedup rejection.
func (m *Metrics) IncDuplicate() {
	if m != nil {
		m.Duplicates.Inc()
	}
}

// IncAnomaly counts an emitted anomaly by severity.
func (m *Metrics) IncAnomaly(severity string) {
	if m != nil {
		m.Anomalies.WithLabelValues(severity).Inc()
	}
}

// IncFeedReconnect counts a reconnection attempt.
func (m *Metrics) IncFeedReconnect() {
	if m != nil {
		m.FeedReconnects.Inc()
	}
}

// IncPollError counts a failed poll request.
func (m *Metrics) IncPollError() {
	if m != nil {
		m.PollErrors.Inc()
	}
}

// IncSinkError counts a sink failure.
func (m *Metrics) IncSinkError(sink string) {
	if m != nil {
		m.SinkErrors.WithLabelValues(sink).Inc()
	}
}

// SetIntakeDepth records the intake buffer depth.
func (m *Metrics) SetIntakeDepth(n int) {
	if m != nil {
		m.IntakeDepth.Set(float64(n))
	}
}

// SetMarketWindows records the per-market window count.
func (m *Metrics) SetMarketWindows(n int) {
	if m != nil {
		m.MarketWindows.Set(float64(n))
	}
}
