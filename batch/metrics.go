package batch

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/qri-io/docdiff"
)

// pair outcomes recorded in the result label of docdiff_pairs_total
const (
	resultCompared    = "compared"
	resultUnavailable = "unavailable"
	resultParseError  = "parse_error"
	resultError       = "error"
)

// Metrics collects batch counters on a private registry, so runs never leak
// into the process-global default registry
type Metrics struct {
	Registry *prometheus.Registry

	pairs       *prometheus.CounterVec
	differences *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewMetrics creates & registers batch metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		pairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docdiff_pairs_total",
			Help: "Document pairs processed, by result.",
		}, []string{"result"}),
		differences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docdiff_differences_total",
			Help: "Differences reported, by kind.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "docdiff_pair_duration_seconds",
			Help:    "Time spent reading & comparing one document pair.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	m.Registry.MustRegister(m.pairs, m.differences, m.duration)

	// pre-populate so every series shows up in reports, even at zero
	for _, r := range []string{resultCompared, resultUnavailable, resultParseError, resultError} {
		m.pairs.WithLabelValues(r)
	}
	for _, k := range docdiff.Kinds {
		m.differences.WithLabelValues(string(k))
	}
	return m
}

func (m *Metrics) observe(result string, diffs docdiff.Differences, took time.Duration) {
	if m == nil {
		return
	}
	m.pairs.WithLabelValues(result).Inc()
	m.duration.Observe(took.Seconds())
	for _, d := range diffs {
		m.differences.WithLabelValues(string(d.Kind)).Inc()
	}
}

// WriteTextfile writes all metrics to path in the text exposition format
// read by the node exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	return errors.Wrapf(prometheus.WriteToTextfile(path, m.Registry), "failed to write metrics to %v", path)
}
