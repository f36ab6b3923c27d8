package trial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/trialcore/internal/errors"
)

func TestNewMetric(t *testing.T) {
	_, err := NewMetric(5, -0.1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	m, err := NewMetric(5, 0)
	require.NoError(t, err)
	assert.Equal(t, 5.0, m.Value())
	assert.Equal(t, 0.0, m.Std())
	assert.Equal(t, MetricOf(5), m)
}

func TestCoerceMetric(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  Metric
	}{
		{"float", 1.5, MetricOf(1.5)},
		{"int", 2, MetricOf(2)},
		{"uint16", uint16(7), MetricOf(7)},
		{"metric", Metric{value: 1, std: 0.5}, Metric{value: 1, std: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceMetric(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []interface{}{"1.0", nil, true, (*Metric)(nil)} {
		_, err := CoerceMetric(bad)
		assert.True(t, errors.Is(err, ErrType), "input %#v", bad)
	}
}

func TestMetricCompare(t *testing.T) {
	a := MetricOf(1)
	b, _ := NewMetric(1, 0.5)
	c := MetricOf(2)

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, -1, b.Compare(c))
	assert.Equal(t, 0, a.Compare(MetricOf(1)))
	assert.True(t, math.IsNaN(NaNMetric.Value()))
	assert.Equal(t, "1±0.5", b.String())
}

func TestNewMeasurement(t *testing.T) {
	m, err := NewMeasurement(WithMetricValues(map[string]float64{"a": 1.0}))
	require.NoError(t, err)

	got, ok := m.Metrics().Get("a")
	require.True(t, ok)
	assert.Equal(t, MetricOf(1.0), got)
	assert.Equal(t, 0.0, m.ElapsedSecs())
	assert.Equal(t, int64(0), m.Steps())
}

func TestMeasurementValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    []MeasurementOption
		wantErr bool
		steps   int64
	}{
		{name: "negative elapsed", opts: []MeasurementOption{WithElapsedSecs(-1)}, wantErr: true},
		{name: "nan elapsed", opts: []MeasurementOption{WithElapsedSecs(math.NaN())}, wantErr: true},
		{name: "infinite elapsed", opts: []MeasurementOption{WithElapsedSecs(math.Inf(1))}, wantErr: true},
		{name: "negative steps", opts: []MeasurementOption{WithSteps(-1)}, wantErr: true},
		{name: "infinite steps", opts: []MeasurementOption{WithSteps(math.Inf(1))}, wantErr: true},
		{name: "fractional steps truncate", opts: []MeasurementOption{WithSteps(3.9)}, steps: 3},
		{name: "small negative truncates to zero", opts: []MeasurementOption{WithSteps(-0.5)}, steps: 0},
		{name: "valid", opts: []MeasurementOption{WithElapsedSecs(2), WithSteps(10)}, steps: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMeasurement(tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.steps, m.Steps())
		})
	}
}

func TestMeasurementSettersRevalidate(t *testing.T) {
	m, err := NewMeasurement(WithElapsedSecs(3), WithSteps(4))
	require.NoError(t, err)

	assert.Error(t, m.SetElapsedSecs(-2))
	assert.Equal(t, 3.0, m.ElapsedSecs(), "failed assignment leaves the field unchanged")

	assert.Error(t, m.SetSteps(math.NaN()))
	assert.Equal(t, int64(4), m.Steps())

	require.NoError(t, m.SetSteps(5))
	assert.Equal(t, int64(5), m.Steps())
}

func TestMeasurementStepsNumericKinds(t *testing.T) {
	const large = int64(1)<<53 + 1

	tests := []struct {
		name  string
		steps interface{}
		want  int64
		kind  error
	}{
		{name: "int64 above float precision stays exact", steps: large, want: large},
		{name: "max int64", steps: int64(math.MaxInt64), want: math.MaxInt64},
		{name: "uint32", steps: uint32(7), want: 7},
		{name: "float32 truncates", steps: float32(2.5), want: 2},
		{name: "negative int", steps: -3, kind: ErrValidation},
		{name: "uint64 overflow", steps: uint64(math.MaxUint64), kind: ErrValidation},
		{name: "float overflow", steps: math.Pow(2, 63), kind: ErrValidation},
		{name: "string", steps: "10", kind: ErrType},
		{name: "nil", steps: nil, kind: ErrType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMeasurement()
			require.NoError(t, err)

			err = m.SetSteps(tt.steps)
			if tt.kind != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.kind), "got %v", err)
				assert.Equal(t, int64(0), m.Steps())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Steps())
		})
	}
}

func TestMetricDict(t *testing.T) {
	m, err := NewMeasurement()
	require.NoError(t, err)

	metrics := m.Metrics()
	metrics.SetValue("loss", 0.3)
	withStd, _ := NewMetric(0.9, 0.01)
	metrics.Set("auc", withStd)

	assert.Equal(t, []string{"auc", "loss"}, metrics.Keys())
	assert.Equal(t, withStd, metrics.Lookup("auc", NaNMetric))
	assert.True(t, math.IsNaN(metrics.Lookup("missing", NaNMetric).Value()))

	assert.True(t, metrics.Delete("loss"))
	assert.Equal(t, 1, m.Metrics().Len())

	m.SetMetrics(map[string]Metric{"x": MetricOf(1)})
	assert.Equal(t, map[string]Metric{"x": MetricOf(1)}, m.Metrics().AsMap())
}

func TestMeasurementClone(t *testing.T) {
	m, err := NewMeasurement(WithElapsedSecs(1), WithMetricValues(map[string]float64{"a": 1}))
	require.NoError(t, err)

	c := m.Clone()
	c.Metrics().SetValue("a", 2)
	require.NoError(t, c.SetElapsedSecs(5))

	assert.Equal(t, 1.0, m.Metrics().Lookup("a", NaNMetric).Value())
	assert.Equal(t, 1.0, m.ElapsedSecs())

	var nilMeasurement *Measurement
	assert.Nil(t, nilMeasurement.Clone())
}
