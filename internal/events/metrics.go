package events

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vk/buildparse/internal/schema"
)

// Metrics counts lifecycle events as Prometheus metrics.
type Metrics struct {
	filesStarted  prometheus.Counter
	filesFinished *prometheus.CounterVec
	rules         *prometheus.CounterVec
	parseDuration prometheus.Histogram
}

// NewMetrics registers the parser metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		filesStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "buildparse_files_started_total",
			Help: "Total number of build files whose parsing started",
		}),
		filesFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "buildparse_files_finished_total",
			Help: "Total number of build files whose parsing finished, by result",
		}, []string{"result"}),
		rules: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "buildparse_rules_total",
			Help: "Total number of rule records produced, by rule type",
		}, []string{"rule_type"}),
		parseDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "buildparse_parse_duration_seconds",
			Help:    "Time spent parsing a single build file",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
	}
}

// Subscriber returns the bus subscriber feeding these metrics.
func (m *Metrics) Subscriber() Subscriber {
	return func(e Event) {
		switch e := e.(type) {
		case *Started:
			m.filesStarted.Inc()
		case *Finished:
			m.filesFinished.WithLabelValues(resultLabel(e.Err)).Inc()
			m.parseDuration.Observe(e.Duration().Seconds())
			if e.Err != nil {
				return
			}
			for _, r := range e.Rules {
				m.rules.WithLabelValues(r.RuleType()).Inc()
			}
		}
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case isAttributeError(err):
		return "invalid_attributes"
	default:
		return "error"
	}
}

func isAttributeError(err error) bool {
	var attrErr *schema.AttributeError
	return errors.As(err, &attrErr)
}
