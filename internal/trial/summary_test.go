package trial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/trialcore/internal/errors"
)

func TestMetricFromSamples(t *testing.T) {
	tests := []struct {
		name     string
		samples  []float64
		wantMean float64
		wantStd  float64
	}{
		{"single", []float64{3}, 3, 0},
		{"constant", []float64{2, 2, 2}, 2, 0},
		{"spread", []float64{1, 2, 3, 4}, 2.5, math.Sqrt(5.0 / 3.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := MetricFromSamples(tt.samples)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantMean, m.Value(), 1e-12)
			assert.InDelta(t, tt.wantStd, m.Std(), 1e-12)
		})
	}

	_, err := MetricFromSamples(nil)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestSummarizeMetric(t *testing.T) {
	var ms []*Measurement
	for _, v := range []float64{0.5, 0.7} {
		m, err := NewMeasurement(WithMetricValues(map[string]float64{"loss": v}))
		require.NoError(t, err)
		ms = append(ms, m)
	}
	other, err := NewMeasurement(WithMetricValues(map[string]float64{"acc": 1}))
	require.NoError(t, err)
	ms = append(ms, other, nil)

	summary, ok := SummarizeMetric(ms, "loss")
	require.True(t, ok)
	assert.InDelta(t, 0.6, summary.Value(), 1e-12)
	assert.InDelta(t, math.Sqrt(0.02), summary.Std(), 1e-12)

	missing, ok := SummarizeMetric(ms, "f1")
	assert.False(t, ok)
	assert.True(t, math.IsNaN(missing.Value()))

	tr, err := New(WithMeasurements(ms[:3]...))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.7}, tr.MetricHistory("loss"))
}
