package trial

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/trialcore/internal/errors"
)

// recordingReporter captures diagnostics for assertions.
type recordingReporter struct {
	warnings []string
}

func (r *recordingReporter) Debug(string, ...map[string]interface{}) {}
func (r *recordingReporter) Info(string, ...map[string]interface{})  {}
func (r *recordingReporter) Error(string, ...map[string]interface{}) {}
func (r *recordingReporter) Warn(msg string, _ ...map[string]interface{}) {
	r.warnings = append(r.warnings, msg)
}

// fixedClock returns a clock that advances by step on every call.
func fixedClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(step)
		return now
	}
}

func newTestTrial(t *testing.T, opts ...Option) *Trial {
	t.Helper()
	tr, err := New(opts...)
	require.NoError(t, err)
	return tr
}

func TestNewDefaults(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tr := newTestTrial(t, WithClock(fixedClock(start, time.Second)))

	assert.Equal(t, int64(0), tr.ID())
	assert.Equal(t, StatusPending, tr.Status())
	assert.Equal(t, 0, tr.Parameters().Len())
	assert.NotNil(t, tr.Metadata())
	assert.Empty(t, tr.RelatedLinks())
	assert.Nil(t, tr.FinalMeasurement())
	assert.Empty(t, tr.Measurements())

	created, ok := tr.CreationTime()
	require.True(t, ok)
	assert.True(t, created.Equal(start))
	assert.Equal(t, time.Local, created.Location())

	_, ok = tr.CompletionTime()
	assert.False(t, ok)
	assert.False(t, tr.IsCompleted())
	assert.False(t, tr.Infeasible())

	_, ok = tr.Duration()
	assert.False(t, ok)
}

func TestSetStatusRejectsUnknownEnumerant(t *testing.T) {
	tr := newTestTrial(t)

	err := tr.SetStatus(Status(3))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValue))
	assert.Equal(t, StatusPending, tr.Status())

	for _, s := range []Status{StatusUnknown, StatusRequested, StatusCompleted, StatusDeleted, StatusStopping} {
		require.NoError(t, tr.SetStatus(s))
		assert.Equal(t, s, tr.Status())
	}

	_, err = New(WithStatus(Status(42)))
	assert.Error(t, err)
}

func TestFieldValidation(t *testing.T) {
	tr := newTestTrial(t)

	assert.True(t, errors.Is(tr.SetParameters(nil), ErrValidation))
	assert.True(t, errors.Is(tr.SetMetadata(nil), ErrValidation))
	assert.True(t, errors.Is(tr.AddMeasurement(nil), ErrValidation))

	m, err := NewMeasurement()
	require.NoError(t, err)
	assert.True(t, errors.Is(tr.SetMeasurements([]*Measurement{m, nil}), ErrValidation))
	assert.Empty(t, tr.Measurements())

	_, err = New(WithParameterValues(map[string]interface{}{"x": []int{1}}))
	assert.True(t, errors.Is(err, ErrType))
}

func TestInfeasible(t *testing.T) {
	tests := []struct {
		name       string
		opts       []Option
		infeasible bool
		reason     string
		hasReason  bool
	}{
		{name: "default"},
		{name: "flag false", opts: []Option{WithInfeasible(false)}},
		{name: "flag true", opts: []Option{WithInfeasible(true)}, infeasible: true},
		{name: "reason only", opts: []Option{WithInfeasibilityReason("oom")}, infeasible: true, reason: "oom", hasReason: true},
		{name: "empty reason counts", opts: []Option{WithInfeasibilityReason("")}, infeasible: true, hasReason: true},
		{
			name:       "flag false with reason",
			opts:       []Option{WithInfeasible(false), WithInfeasibilityReason("nan loss")},
			infeasible: true, reason: "nan loss", hasReason: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestTrial(t, tt.opts...)
			assert.Equal(t, tt.infeasible, tr.Infeasible())
			reason, ok := tr.InfeasibilityReason()
			assert.Equal(t, tt.hasReason, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestIsCompletedConsistencyWarnings(t *testing.T) {
	completedAt := time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		opts      []Option
		completed bool
		warnings  int
	}{
		{name: "pending", completed: false},
		{
			name:      "completed with time",
			opts:      []Option{WithStatus(StatusCompleted), WithCompletionTime(completedAt)},
			completed: true,
		},
		{name: "completed without time", opts: []Option{WithStatus(StatusCompleted)}, completed: true, warnings: 1},
		{name: "time without completed status", opts: []Option{WithCompletionTime(completedAt)}, completed: true, warnings: 1},
		{
			name:      "stopping with time",
			opts:      []Option{WithStatus(StatusStopping), WithCompletionTime(completedAt)},
			completed: true, warnings: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := &recordingReporter{}
			tr := newTestTrial(t, append(tt.opts, WithReporter(rep))...)

			assert.Equal(t, tt.completed, tr.IsCompleted())
			assert.Len(t, rep.warnings, tt.warnings)

			tr.IsCompleted()
			assert.Len(t, rep.warnings, 2*tt.warnings, "one diagnostic per evaluation")
		})
	}
}

func TestCompleteNotInplace(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tr := newTestTrial(t,
		WithID(7),
		WithClock(fixedClock(start, time.Minute)),
		WithParameterValues(map[string]interface{}{"x": 1.0}),
	)
	history, err := NewMeasurement(WithSteps(1), WithMetricValues(map[string]float64{"loss": 0.5}))
	require.NoError(t, err)
	require.NoError(t, tr.AddMeasurement(history))

	m, err := NewMeasurement(WithElapsedSecs(2))
	require.NoError(t, err)

	done := tr.Complete(m, false)

	require.NotSame(t, tr, done)
	assert.Equal(t, StatusCompleted, done.Status())
	_, ok := done.CompletionTime()
	assert.True(t, ok)
	assert.True(t, done.IsCompleted())
	d, ok := done.Duration()
	require.True(t, ok)
	assert.Equal(t, time.Minute, d)

	assert.Equal(t, StatusPending, tr.Status())
	_, ok = tr.CompletionTime()
	assert.False(t, ok)
	assert.Nil(t, tr.FinalMeasurement())

	// The copy is deep.
	require.NoError(t, done.Parameters().Set("x", 2.0))
	assert.Equal(t, 1.0, tr.Parameters().GetValue("x", nil))
	done.Measurements()[0].Metrics().SetValue("loss", 9)
	assert.Equal(t, 0.5, tr.Measurements()[0].Metrics().Lookup("loss", NaNMetric).Value())
	done.Metadata().Set("k", "v")
	_, ok = tr.Metadata().Get("k")
	assert.False(t, ok, "MapMetadata is copied on clone")
}

func TestCompleteInplace(t *testing.T) {
	tr := newTestTrial(t)
	m, err := NewMeasurement(WithMetricValues(map[string]float64{"acc": 0.8}))
	require.NoError(t, err)

	done := tr.Complete(m, true)

	assert.Same(t, tr, done)
	assert.Equal(t, StatusCompleted, tr.Status())
	assert.True(t, tr.IsCompleted())

	require.NotNil(t, tr.FinalMeasurement())
	assert.NotSame(t, m, tr.FinalMeasurement(), "the measurement is deep-copied")
	m.Metrics().SetValue("acc", 0.1)
	assert.Equal(t, 0.8, tr.FinalMeasurement().Metrics().Lookup("acc", NaNMetric).Value())
}

func TestCompleteTwiceOverwrites(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tr := newTestTrial(t, WithClock(fixedClock(start, time.Second)))

	first, _ := NewMeasurement(WithSteps(1))
	second, _ := NewMeasurement(WithSteps(2))

	tr.Complete(first, true)
	firstTime, _ := tr.CompletionTime()
	tr.Complete(second, true)
	secondTime, _ := tr.CompletionTime()

	assert.Equal(t, int64(2), tr.FinalMeasurement().Steps())
	assert.True(t, secondTime.After(firstTime))
}

func TestCompleteWithNilMeasurement(t *testing.T) {
	tr := newTestTrial(t)
	tr.Complete(nil, true)
	assert.Nil(t, tr.FinalMeasurement())
	assert.Equal(t, StatusCompleted, tr.Status())
}

func TestCompleteInfeasible(t *testing.T) {
	tr := newTestTrial(t)
	done := tr.Complete(nil, false, CompleteInfeasible("diverged"))

	assert.True(t, done.Infeasible())
	reason, _ := done.InfeasibilityReason()
	assert.Equal(t, "diverged", reason)
	assert.False(t, tr.Infeasible())
}

func TestTimesNormalizeToLocal(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, loc)

	tr := newTestTrial(t, WithCreationTime(ts), WithCompletionTime(ts.Add(90*time.Second)))

	created, _ := tr.CreationTime()
	assert.Equal(t, time.Local, created.Location())
	assert.True(t, created.Equal(ts))

	d, ok := tr.Duration()
	require.True(t, ok)
	assert.Equal(t, 90*time.Second, d)

	tr.SetCreationTime(nil)
	_, ok = tr.Duration()
	assert.False(t, ok)
}

func TestOptionalStrings(t *testing.T) {
	tr := newTestTrial(t, WithAssignedWorker("w-1"), WithDescription("baseline"), WithStoppingReason("early stop"))

	w, ok := tr.AssignedWorker()
	assert.True(t, ok)
	assert.Equal(t, "w-1", w)

	d, _ := tr.Description()
	assert.Equal(t, "baseline", d)
	r, _ := tr.StoppingReason()
	assert.Equal(t, "early stop", r)

	tr.SetAssignedWorker(nil)
	_, ok = tr.AssignedWorker()
	assert.False(t, ok)
}

func TestRelatedLinksAreCopied(t *testing.T) {
	links := map[string]string{"dashboard": "https://example.com/t/1"}
	tr := newTestTrial(t, WithRelatedLinks(links))

	links["dashboard"] = "changed"
	assert.Equal(t, "https://example.com/t/1", tr.RelatedLinks()["dashboard"])

	tr.RelatedLinks()["other"] = "x"
	assert.Len(t, tr.RelatedLinks(), 1)

	tr.SetRelatedLink("logs", "https://example.com/l/1")
	assert.Len(t, tr.RelatedLinks(), 2)
}

func TestLastMeasurement(t *testing.T) {
	tr := newTestTrial(t)
	_, ok := tr.LastMeasurement()
	assert.False(t, ok)

	for i := 1; i <= 3; i++ {
		m, err := NewMeasurement(WithSteps(float64(i)))
		require.NoError(t, err)
		require.NoError(t, tr.AddMeasurement(m))
	}
	last, ok := tr.LastMeasurement()
	require.True(t, ok)
	assert.Equal(t, int64(3), last.Steps())
}

// sharedMetadata does not implement MetadataCloner.
type sharedMetadata struct{ inner *MapMetadata }

func (m sharedMetadata) Get(key string) (string, bool)         { return m.inner.Get(key) }
func (m sharedMetadata) Set(key, value string)                 { m.inner.Set(key, value) }
func (m sharedMetadata) Delete(key string)                     { m.inner.Delete(key) }
func (m sharedMetadata) Range(fn func(key, value string) bool) { m.inner.Range(fn) }

func TestCloneSharesNonCloneableMetadata(t *testing.T) {
	md := sharedMetadata{inner: NewMetadata()}
	tr := newTestTrial(t, WithMetadata(md))

	c := tr.Clone()
	c.Metadata().Set("k", "v")
	v, ok := tr.Metadata().Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestStatusWireValues(t *testing.T) {
	tests := []struct {
		status Status
		name   string
		want   int32
	}{
		{StatusUnknown, "UNKNOWN", 0},
		{StatusRequested, "REQUESTED", 1},
		{StatusPending, "PENDING", 2},
		{StatusCompleted, "COMPLETED", 4},
		{StatusDeleted, "DELETED", 5},
		{StatusStopping, "STOPPING", 6},
	}

	require.Len(t, Statuses(), len(tests))
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, int32(tt.status))
			assert.Equal(t, tt.name, tt.status.String())
			assert.Equal(t, tt.status, Statuses()[i])
		})
	}
	assert.False(t, Status(3).Valid(), "3 is retired")
	assert.False(t, Status(7).Valid())
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, "COMPLETED", StatusCompleted.String())
	assert.Equal(t, "Status(3)", Status(3).String())
	assert.True(t, StatusDeleted.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())

	s, err := ParseStatus("stopping")
	require.NoError(t, err)
	assert.Equal(t, StatusStopping, s)

	_, err = ParseStatus("running")
	assert.True(t, errors.Is(err, ErrValue))

	assert.Equal(t, "Trial(id=0, status=PENDING, parameters=0, measurements=0)", fmt.Sprint(newTestTrial(t)))

	for _, st := range Statuses() {
		assert.True(t, st.Valid(), st.String())
	}
	assert.Len(t, Statuses(), 6)
}
