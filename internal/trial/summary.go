package trial

import (
	"gonum.org/v1/gonum/stat"
)

// MetricFromSamples returns a Metric holding the sample mean and the unbiased
// sample standard deviation of samples. A single sample has a zero std.
func MetricFromSamples(samples []float64) (Metric, error) {
	const op = "MetricFromSamples"
	switch len(samples) {
	case 0:
		return Metric{}, validationError(op, "at least one sample is required")
	case 1:
		return MetricOf(samples[0]), nil
	}
	mean, std := stat.MeanStdDev(samples, nil)
	return NewMetric(mean, std)
}

// MetricHistory returns the values of the named metric across the
// measurement history, skipping measurements that lack it.
func (t *Trial) MetricHistory(name string) []float64 {
	var values []float64
	for _, m := range t.measurements {
		if metric, ok := m.Metrics().Get(name); ok {
			values = append(values, metric.Value())
		}
	}
	return values
}

// SummarizeMetric aggregates the named metric across measurements into a
// single Metric. It reports false when no measurement carries the metric.
func SummarizeMetric(measurements []*Measurement, name string) (Metric, bool) {
	var samples []float64
	for _, m := range measurements {
		if m == nil {
			continue
		}
		if metric, ok := m.Metrics().Get(name); ok {
			samples = append(samples, metric.Value())
		}
	}
	summary, err := MetricFromSamples(samples)
	if err != nil {
		return NaNMetric, false
	}
	return summary, true
}
