// Package metrics exports Prometheus metrics for parse cycles and rule
// evaluations.
//
// Metrics:
//   - <ns>_parses_total: parse cycles by outcome and last stage reached
//   - <ns>_errors_total: error map entries by kind
//   - <ns>_parse_duration_seconds: parse cycle duration
//   - <ns>_rule_evaluations_total: rule evaluations by engine and outcome
//   - <ns>_rule_evaluation_duration_seconds: rule evaluation duration by engine
package metrics

import (
	cliparser "github.com/capnajax/cli-parser"
	"github.com/prometheus/client_golang/prometheus"
)

// Config controls metric naming and buckets.
type Config struct {
	Namespace       string
	Subsystem       string
	DurationBuckets []float64
	RuleBuckets     []float64
}

// Collector records parse cycles and rule evaluations. It implements both
// cliparser.ParseLogger and cliparser.EvaluatorLogger.
type Collector struct {
	parsesTotal        *prometheus.CounterVec
	errorsTotal        *prometheus.CounterVec
	parseDuration      prometheus.Histogram
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
}

// NewCollector creates the metrics and registers them with registry. A nil
// registry gets a fresh prometheus.Registry.
func NewCollector(cfg Config, registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "cliparser"
	}
	if len(cfg.DurationBuckets) == 0 {
		// parse cycles are in-process and short: 10µs to ~80ms
		cfg.DurationBuckets = prometheus.ExponentialBuckets(0.00001, 2, 14)
	}
	if len(cfg.RuleBuckets) == 0 {
		cfg.RuleBuckets = prometheus.ExponentialBuckets(0.000001, 2, 15)
	}

	c := &Collector{
		parsesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "parses_total",
				Help:      "Total number of parse cycles",
			},
			[]string{"outcome", "stage"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "errors_total",
				Help:      "Total number of error map entries by kind",
			},
			[]string{"kind"},
		),
		parseDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "parse_duration_seconds",
				Help:      "Duration of parse cycles in seconds",
				Buckets:   cfg.DurationBuckets,
			},
		),
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_evaluations_total",
				Help:      "Total number of rule evaluations",
			},
			[]string{"engine", "outcome"},
		),
		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_evaluation_duration_seconds",
				Help:      "Duration of rule evaluations in seconds",
				Buckets:   cfg.RuleBuckets,
			},
			[]string{"engine"},
		),
	}

	registry.MustRegister(
		c.parsesTotal,
		c.errorsTotal,
		c.parseDuration,
		c.evaluationsTotal,
		c.evaluationDuration,
	)
	return c
}

// LogParse implements cliparser.ParseLogger.
func (c *Collector) LogParse(event cliparser.ParseLogEvent) {
	outcome := "ok"
	if !event.Succeeded() {
		outcome = "failed"
	}
	c.parsesTotal.WithLabelValues(outcome, string(event.Stage)).Inc()
	for kind, count := range event.Errors {
		c.errorsTotal.WithLabelValues(kind.String()).Add(float64(count))
	}
	c.parseDuration.Observe(event.Duration.Seconds())
}

// LogEvaluation implements cliparser.EvaluatorLogger.
func (c *Collector) LogEvaluation(event cliparser.EvaluatorLogEvent) {
	outcome := "ok"
	if event.Err != nil {
		outcome = "error"
	}
	c.evaluationsTotal.WithLabelValues(event.Engine, outcome).Inc()
	c.evaluationDuration.WithLabelValues(event.Engine).Observe(event.Duration.Seconds())
}
