package trial

import (
	"fmt"
	"math"
	"reflect"
)

// Metric is an immutable observed value with an optional standard deviation.
//
// The standard deviation is internal to this process; external
// representations carry only the value.
type Metric struct {
	value float64
	std   float64
}

// NaNMetric lets callers read a missing metric without branching, e.g.
// m.Metrics().Lookup("auc", NaNMetric).Value().
var NaNMetric = Metric{value: math.NaN()}

// NewMetric returns a Metric or a validation error if std is negative.
func NewMetric(value, std float64) (Metric, error) {
	const op = "Metric.New"
	if std < 0 {
		return Metric{}, validationError(op, "standard deviation must be non-negative, got %v", std)
	}
	return Metric{value: value, std: std}, nil
}

// MetricOf returns a Metric with a zero standard deviation.
func MetricOf(value float64) Metric {
	return Metric{value: value}
}

// CoerceMetric converts a Metric or any Go numeric value into a Metric.
// Other types are rejected with a type error.
func CoerceMetric(v interface{}) (Metric, error) {
	const op = "Metric.Coerce"
	switch m := v.(type) {
	case Metric:
		return m, nil
	case *Metric:
		if m == nil {
			return Metric{}, typeError(op, "nil *Metric")
		}
		return *m, nil
	}
	f, ok := toFloat64(v)
	if !ok {
		return Metric{}, typeError(op, "metric value must be numeric, got %T", v)
	}
	return MetricOf(f), nil
}

// Value returns the observed value.
func (m Metric) Value() float64 { return m.value }

// Std returns the standard deviation.
func (m Metric) Std() float64 { return m.std }

// Compare orders metrics by value, then by std.
func (m Metric) Compare(o Metric) int {
	if c := compareFloat(m.value, o.value); c != 0 {
		return c
	}
	return compareFloat(m.std, o.std)
}

func (m Metric) String() string {
	if m.std == 0 {
		return fmt.Sprintf("%g", m.value)
	}
	return fmt.Sprintf("%g±%g", m.value, m.std)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// toFloat64 converts any Go numeric kind to float64.
func toFloat64(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
