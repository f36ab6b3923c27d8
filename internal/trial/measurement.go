package trial

import (
	"math"
	"reflect"
	"sort"
)

// MetricDict maps metric names to Metrics. Iteration is by sorted name.
//
// The zero value is an empty dict ready to use.
type MetricDict struct {
	items map[string]Metric
}

// NewMetricDict returns an empty MetricDict.
func NewMetricDict() *MetricDict {
	return &MetricDict{items: make(map[string]Metric)}
}

// Set stores m under name.
func (d *MetricDict) Set(name string, m Metric) {
	if d.items == nil {
		d.items = make(map[string]Metric)
	}
	d.items[name] = m
}

// SetValue stores a zero-std Metric holding value under name.
func (d *MetricDict) SetValue(name string, value float64) {
	d.Set(name, MetricOf(value))
}

// Get returns the Metric stored under name.
func (d *MetricDict) Get(name string) (Metric, bool) {
	if d == nil {
		return Metric{}, false
	}
	m, ok := d.items[name]
	return m, ok
}

// Lookup returns the Metric stored under name, or fallback.
func (d *MetricDict) Lookup(name string, fallback Metric) Metric {
	if m, ok := d.Get(name); ok {
		return m
	}
	return fallback
}

// Delete removes name and reports whether it was present.
func (d *MetricDict) Delete(name string) bool {
	if d == nil {
		return false
	}
	if _, ok := d.items[name]; !ok {
		return false
	}
	delete(d.items, name)
	return true
}

// Len returns the number of metrics.
func (d *MetricDict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.items)
}

// Keys returns the metric names in sorted order.
func (d *MetricDict) Keys() []string {
	if d == nil {
		return nil
	}
	keys := make([]string, 0, len(d.items))
	for k := range d.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Range calls fn for each metric in name order until fn returns false.
func (d *MetricDict) Range(fn func(name string, m Metric) bool) {
	for _, k := range d.Keys() {
		if !fn(k, d.items[k]) {
			return
		}
	}
}

// Clone returns an independent copy.
func (d *MetricDict) Clone() *MetricDict {
	out := NewMetricDict()
	d.Range(func(k string, m Metric) bool {
		out.items[k] = m
		return true
	})
	return out
}

// AsMap returns a copy of the metrics keyed by name.
func (d *MetricDict) AsMap() map[string]Metric {
	out := make(map[string]Metric, d.Len())
	d.Range(func(k string, m Metric) bool {
		out[k] = m
		return true
	})
	return out
}

// Measurement is a set of metrics observed after some elapsed time and
// number of steps.
//
// Both counters are finite and non-negative. Every setter re-runs the same
// check used at construction.
type Measurement struct {
	metrics     *MetricDict
	elapsedSecs float64
	steps       int64
}

// MeasurementOption configures a Measurement under construction.
type MeasurementOption func(*Measurement) error

// WithMetrics sets the metric map.
func WithMetrics(metrics map[string]Metric) MeasurementOption {
	return func(m *Measurement) error {
		m.SetMetrics(metrics)
		return nil
	}
}

// WithMetricValues sets zero-std metrics from raw values.
func WithMetricValues(values map[string]float64) MeasurementOption {
	return func(m *Measurement) error {
		for k, v := range values {
			m.metrics.SetValue(k, v)
		}
		return nil
	}
}

// WithElapsedSecs sets the elapsed time in seconds.
func WithElapsedSecs(secs float64) MeasurementOption {
	return func(m *Measurement) error { return m.SetElapsedSecs(secs) }
}

// WithSteps sets the step count from any Go integer or float.
func WithSteps(steps interface{}) MeasurementOption {
	return func(m *Measurement) error { return m.SetSteps(steps) }
}

// NewMeasurement returns a Measurement with no metrics, zero elapsed time and
// zero steps, modified by opts.
func NewMeasurement(opts ...MeasurementOption) (*Measurement, error) {
	m := &Measurement{metrics: NewMetricDict()}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Metrics returns the live metric map.
func (m *Measurement) Metrics() *MetricDict {
	if m.metrics == nil {
		m.metrics = NewMetricDict()
	}
	return m.metrics
}

// SetMetrics replaces the metric map with a copy of metrics.
func (m *Measurement) SetMetrics(metrics map[string]Metric) {
	d := NewMetricDict()
	for k, v := range metrics {
		d.Set(k, v)
	}
	m.metrics = d
}

// ElapsedSecs returns the elapsed time in seconds.
func (m *Measurement) ElapsedSecs() float64 { return m.elapsedSecs }

// SetElapsedSecs sets the elapsed time. It must be finite and non-negative.
func (m *Measurement) SetElapsedSecs(secs float64) error {
	const op = "Measurement.SetElapsedSecs"
	if math.IsNaN(secs) || math.IsInf(secs, 0) || secs < 0 {
		return validationError(op, "elapsed_secs must be finite and non-negative, got %v", secs)
	}
	m.elapsedSecs = secs
	return nil
}

// Steps returns the step count.
func (m *Measurement) Steps() int64 { return m.steps }

// SetSteps stores steps as an integer count. Integer kinds are taken
// exactly; floats must be finite and are truncated toward zero. The resulting
// count must be non-negative and fit in an int64. Non-numeric input is a type
// error.
func (m *Measurement) SetSteps(steps interface{}) error {
	const op = "Measurement.SetSteps"
	const twoTo63 = 1 << 63

	if steps == nil {
		return typeError(op, "steps must be numeric, got nil")
	}
	rv := reflect.ValueOf(steps)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < 0 {
			return validationError(op, "steps must be non-negative, got %d", n)
		}
		m.steps = n
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return validationError(op, "steps %d overflows int64", u)
		}
		m.steps = int64(u)
		return nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return validationError(op, "steps must be finite, got %v", f)
		}
		if f >= twoTo63 {
			return validationError(op, "steps %v overflows int64", f)
		}
		// Truncation toward zero maps (-1, 0) to 0.
		if f <= -1 {
			return validationError(op, "steps must be non-negative, got %v", f)
		}
		m.steps = int64(f)
		return nil
	default:
		return typeError(op, "steps must be numeric, got %T", steps)
	}
}

// Clone returns a deep copy of m. Cloning nil returns nil.
func (m *Measurement) Clone() *Measurement {
	if m == nil {
		return nil
	}
	return &Measurement{
		metrics:     m.metrics.Clone(),
		elapsedSecs: m.elapsedSecs,
		steps:       m.steps,
	}
}
