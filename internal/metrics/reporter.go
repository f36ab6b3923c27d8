// Package metrics exposes trial diagnostics and trial states as Prometheus
// metrics.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/copyleftdev/trialcore/internal/trial"
)

const namespace = "trial"

// Diagnostic levels used as the "level" label.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// CountingReporter counts every diagnostic by level before handing it to the
// wrapped reporter.
type CountingReporter struct {
	next    trial.Reporter
	counter *prometheus.CounterVec
}

var _ trial.Reporter = (*CountingReporter)(nil)

// NewCountingReporter registers the diagnostics counter on reg and returns a
// reporter forwarding to next. A counter already registered on reg is reused.
// A nil next discards diagnostics after counting them.
func NewCountingReporter(next trial.Reporter, reg prometheus.Registerer) (*CountingReporter, error) {
	if next == nil {
		next = trial.NopReporter{}
	}

	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "diagnostics_total",
		Help:      "Number of diagnostics emitted by trial records, by level.",
	}, []string{"level"})

	if reg != nil {
		if err := reg.Register(counter); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
			existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				return nil, err
			}
			counter = existing
		}
	}

	return &CountingReporter{next: next, counter: counter}, nil
}

// Counter returns the counter for level.
func (r *CountingReporter) Counter(level string) prometheus.Counter {
	return r.counter.WithLabelValues(level)
}

func (r *CountingReporter) Debug(msg string, fields ...map[string]interface{}) {
	r.counter.WithLabelValues(LevelDebug).Inc()
	r.next.Debug(msg, fields...)
}

func (r *CountingReporter) Info(msg string, fields ...map[string]interface{}) {
	r.counter.WithLabelValues(LevelInfo).Inc()
	r.next.Info(msg, fields...)
}

func (r *CountingReporter) Warn(msg string, fields ...map[string]interface{}) {
	r.counter.WithLabelValues(LevelWarn).Inc()
	r.next.Warn(msg, fields...)
}

func (r *CountingReporter) Error(msg string, fields ...map[string]interface{}) {
	r.counter.WithLabelValues(LevelError).Inc()
	r.next.Error(msg, fields...)
}
