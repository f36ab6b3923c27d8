// Package trial holds the in-memory record of a single optimization trial:
// its parameters, measurements, status and completion.
//
// Records are not safe for concurrent use. Callers sharing a Trial,
// Measurement or ParameterDict across goroutines must synchronize access.
package trial

import (
	"fmt"
	"time"
)

// Trial is one proposed and evaluated configuration in an optimization run.
//
// Fields are reached through accessors; every setter re-validates.
type Trial struct {
	id                  int64
	status              Status
	assignedWorker      *string
	stoppingReason      *string
	infeasible          *bool
	infeasibilityReason *string
	description         *string
	parameters          *ParameterDict
	metadata            Metadata
	relatedLinks        map[string]string
	finalMeasurement    *Measurement
	measurements        []*Measurement
	creationTime        *time.Time
	completionTime      *time.Time

	reporter Reporter
	now      func() time.Time
}

// Option configures a Trial under construction.
type Option func(*Trial) error

// WithID sets the trial id.
func WithID(id int64) Option {
	return func(t *Trial) error {
		t.SetID(id)
		return nil
	}
}

// WithStatus sets the status. It must be a defined enumerant.
func WithStatus(s Status) Option {
	return func(t *Trial) error { return t.SetStatus(s) }
}

// WithAssignedWorker sets the worker the trial is assigned to.
func WithAssignedWorker(worker string) Option {
	return func(t *Trial) error {
		t.SetAssignedWorker(&worker)
		return nil
	}
}

// WithStoppingReason sets the reason the trial was asked to stop.
func WithStoppingReason(reason string) Option {
	return func(t *Trial) error {
		t.SetStoppingReason(&reason)
		return nil
	}
}

// WithInfeasible sets the infeasible flag.
func WithInfeasible(infeasible bool) Option {
	return func(t *Trial) error {
		t.SetInfeasible(&infeasible)
		return nil
	}
}

// WithInfeasibilityReason sets the infeasibility reason.
func WithInfeasibilityReason(reason string) Option {
	return func(t *Trial) error {
		t.SetInfeasibilityReason(&reason)
		return nil
	}
}

// WithDescription sets a free-form description.
func WithDescription(description string) Option {
	return func(t *Trial) error {
		t.SetDescription(&description)
		return nil
	}
}

// WithParameters sets the parameter dict. The dict is held by reference.
func WithParameters(params *ParameterDict) Option {
	return func(t *Trial) error { return t.SetParameters(params) }
}

// WithParameterValues builds the parameter dict from raw scalars.
func WithParameterValues(values map[string]interface{}) Option {
	return func(t *Trial) error {
		d, err := ParameterDictOf(values)
		if err != nil {
			return err
		}
		return t.SetParameters(d)
	}
}

// WithMetadata sets the metadata handle. It is held by reference.
func WithMetadata(md Metadata) Option {
	return func(t *Trial) error { return t.SetMetadata(md) }
}

// WithRelatedLinks sets the related links.
func WithRelatedLinks(links map[string]string) Option {
	return func(t *Trial) error {
		t.SetRelatedLinks(links)
		return nil
	}
}

// WithFinalMeasurement sets the final measurement.
func WithFinalMeasurement(m *Measurement) Option {
	return func(t *Trial) error {
		t.SetFinalMeasurement(m)
		return nil
	}
}

// WithMeasurements sets the measurement history.
func WithMeasurements(ms ...*Measurement) Option {
	return func(t *Trial) error { return t.SetMeasurements(ms) }
}

// WithCreationTime overrides the creation time, which defaults to now.
func WithCreationTime(ts time.Time) Option {
	return func(t *Trial) error {
		t.SetCreationTime(&ts)
		return nil
	}
}

// WithCompletionTime sets the completion time.
func WithCompletionTime(ts time.Time) Option {
	return func(t *Trial) error {
		t.SetCompletionTime(&ts)
		return nil
	}
}

// WithReporter sets the sink for consistency diagnostics.
func WithReporter(r Reporter) Option {
	return func(t *Trial) error {
		t.SetReporter(r)
		return nil
	}
}

// WithClock sets the time source used for the default creation time and for
// Complete.
func WithClock(now func() time.Time) Option {
	return func(t *Trial) error {
		if now != nil {
			t.now = now
		}
		return nil
	}
}

// New returns a PENDING trial created now, modified by opts.
func New(opts ...Option) (*Trial, error) {
	t := &Trial{
		status:       StatusPending,
		parameters:   NewParameterDict(),
		metadata:     NewMetadata(),
		relatedLinks: make(map[string]string),
		reporter:     NopReporter{},
		now:          time.Now,
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	if t.creationTime == nil {
		created := t.clock()
		t.SetCreationTime(&created)
	}
	return t, nil
}

// ID returns the caller-assigned identity.
func (t *Trial) ID() int64 { return t.id }

// SetID sets the identity. Uniqueness is the caller's responsibility.
func (t *Trial) SetID(id int64) { t.id = id }

// Status returns the lifecycle status.
func (t *Trial) Status() Status { return t.status }

// SetStatus accepts any defined enumerant. No transition graph is enforced.
func (t *Trial) SetStatus(s Status) error {
	const op = "Trial.SetStatus"
	if !s.Valid() {
		return valueError(op, "invalid trial status %d", int32(s))
	}
	t.status = s
	return nil
}

// AssignedWorker returns the assigned worker, if set.
func (t *Trial) AssignedWorker() (string, bool) { return deref(t.assignedWorker) }

// SetAssignedWorker sets or, given nil, clears the assigned worker.
func (t *Trial) SetAssignedWorker(worker *string) { t.assignedWorker = copyPtr(worker) }

// StoppingReason returns the stopping reason, if set.
func (t *Trial) StoppingReason() (string, bool) { return deref(t.stoppingReason) }

// SetStoppingReason sets or, given nil, clears the stopping reason.
func (t *Trial) SetStoppingReason(reason *string) { t.stoppingReason = copyPtr(reason) }

// Description returns the description, if set.
func (t *Trial) Description() (string, bool) { return deref(t.description) }

// SetDescription sets or, given nil, clears the description.
func (t *Trial) SetDescription(description *string) { t.description = copyPtr(description) }

// Infeasible reports whether the infeasible flag is true or an infeasibility
// reason is present.
func (t *Trial) Infeasible() bool {
	return (t.infeasible != nil && *t.infeasible) || t.infeasibilityReason != nil
}

// InfeasibleFlag returns the stored infeasible flag, if set. Infeasible also
// considers the reason.
func (t *Trial) InfeasibleFlag() (bool, bool) { return deref(t.infeasible) }

// SetInfeasible sets or, given nil, clears the infeasible flag.
func (t *Trial) SetInfeasible(infeasible *bool) { t.infeasible = copyPtr(infeasible) }

// InfeasibilityReason returns the stored reason, if any.
func (t *Trial) InfeasibilityReason() (string, bool) { return deref(t.infeasibilityReason) }

// SetInfeasibilityReason sets or, given nil, clears the infeasibility reason.
func (t *Trial) SetInfeasibilityReason(reason *string) {
	t.infeasibilityReason = copyPtr(reason)
}

// MarkInfeasible sets the infeasible flag and records reason.
func (t *Trial) MarkInfeasible(reason string) {
	infeasible := true
	t.infeasible = &infeasible
	t.infeasibilityReason = &reason
}

// Parameters returns the live parameter dict.
func (t *Trial) Parameters() *ParameterDict { return t.parameters }

// SetParameters replaces the parameter dict. It is held by reference.
func (t *Trial) SetParameters(params *ParameterDict) error {
	const op = "Trial.SetParameters"
	if params == nil {
		return validationError(op, "parameters must not be nil")
	}
	t.parameters = params
	return nil
}

// Metadata returns the metadata handle.
func (t *Trial) Metadata() Metadata { return t.metadata }

// SetMetadata replaces the metadata handle. It is held by reference.
func (t *Trial) SetMetadata(md Metadata) error {
	const op = "Trial.SetMetadata"
	if md == nil {
		return validationError(op, "metadata must not be nil")
	}
	t.metadata = md
	return nil
}

// RelatedLinks returns a copy of the related links.
func (t *Trial) RelatedLinks() map[string]string {
	out := make(map[string]string, len(t.relatedLinks))
	for k, v := range t.relatedLinks {
		out[k] = v
	}
	return out
}

// SetRelatedLinks replaces the related links with a copy of links.
func (t *Trial) SetRelatedLinks(links map[string]string) {
	t.relatedLinks = make(map[string]string, len(links))
	for k, v := range links {
		t.relatedLinks[k] = v
	}
}

// SetRelatedLink adds or replaces a single related link.
func (t *Trial) SetRelatedLink(name, url string) {
	if t.relatedLinks == nil {
		t.relatedLinks = make(map[string]string)
	}
	t.relatedLinks[name] = url
}

// FinalMeasurement returns the final measurement, or nil.
func (t *Trial) FinalMeasurement() *Measurement { return t.finalMeasurement }

// SetFinalMeasurement sets or, given nil, clears the final measurement.
func (t *Trial) SetFinalMeasurement(m *Measurement) { t.finalMeasurement = m }

// Measurements returns the measurement history in order. The slice is a copy;
// the measurements are shared.
func (t *Trial) Measurements() []*Measurement {
	return append([]*Measurement(nil), t.measurements...)
}

// SetMeasurements replaces the measurement history. Nil entries are rejected.
func (t *Trial) SetMeasurements(ms []*Measurement) error {
	const op = "Trial.SetMeasurements"
	for i, m := range ms {
		if m == nil {
			return validationError(op, "measurement %d is nil", i)
		}
	}
	t.measurements = append([]*Measurement(nil), ms...)
	return nil
}

// AddMeasurement appends m to the measurement history.
func (t *Trial) AddMeasurement(m *Measurement) error {
	const op = "Trial.AddMeasurement"
	if m == nil {
		return validationError(op, "measurement must not be nil")
	}
	t.measurements = append(t.measurements, m)
	return nil
}

// LastMeasurement returns the most recent measurement in the history.
func (t *Trial) LastMeasurement() (*Measurement, bool) {
	if len(t.measurements) == 0 {
		return nil, false
	}
	return t.measurements[len(t.measurements)-1], true
}

// CreationTime returns the creation time in the local zone, if set.
func (t *Trial) CreationTime() (time.Time, bool) { return deref(t.creationTime) }

// SetCreationTime sets the creation time, converted to the local zone.
// Nil clears it.
func (t *Trial) SetCreationTime(ts *time.Time) { t.creationTime = toLocal(ts) }

// CompletionTime returns the completion time in the local zone, if set.
func (t *Trial) CompletionTime() (time.Time, bool) { return deref(t.completionTime) }

// SetCompletionTime sets the completion time, converted to the local zone.
// Nil clears it.
func (t *Trial) SetCompletionTime(ts *time.Time) { t.completionTime = toLocal(ts) }

// SetReporter sets the diagnostics sink. Nil discards diagnostics.
func (t *Trial) SetReporter(r Reporter) {
	if r == nil {
		r = NopReporter{}
	}
	t.reporter = r
}

// Duration returns completion time minus creation time. It is undefined
// until both are set.
func (t *Trial) Duration() (time.Duration, bool) {
	if t.completionTime == nil || t.creationTime == nil {
		return 0, false
	}
	return t.completionTime.Sub(*t.creationTime), true
}

// IsCompleted reports whether the status is COMPLETED or a completion time is
// set. When only one of the two holds, the trial still counts as completed and
// a warning goes to the reporter.
func (t *Trial) IsCompleted() bool {
	if t.status == StatusCompleted {
		if t.completionTime == nil {
			t.diagnostics().Warn("Invalid Trial state: status is COMPLETED, but a completion_time was not set",
				map[string]interface{}{"trial_id": t.id})
		}
		return true
	}
	if t.completionTime != nil {
		t.diagnostics().Warn("Invalid Trial state: status is not set to COMPLETED, but a completion_time is set",
			map[string]interface{}{"trial_id": t.id, "status": t.status.String()})
		return true
	}
	return false
}

// CompleteOption adjusts how Complete finalizes a trial.
type CompleteOption func(*Trial)

// CompleteInfeasible marks the trial infeasible with reason while completing it.
func CompleteInfeasible(reason string) CompleteOption {
	return func(t *Trial) { t.MarkInfeasible(reason) }
}

// Complete stores a deep copy of m as the final measurement, stamps the
// completion time and sets the status to COMPLETED.
//
// With inplace the receiver is modified and returned. Otherwise the receiver
// is left untouched and a completed deep copy is returned. Completing twice
// overwrites the previous completion.
func (t *Trial) Complete(m *Measurement, inplace bool, opts ...CompleteOption) *Trial {
	if !inplace {
		return t.Clone().Complete(m, true, opts...)
	}
	t.finalMeasurement = m.Clone()
	completed := t.clock()
	t.SetCompletionTime(&completed)
	t.status = StatusCompleted
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Clone returns a deep copy of t. Metadata implementing MetadataCloner is
// copied; any other Metadata is shared. The reporter and clock are shared.
func (t *Trial) Clone() *Trial {
	out := &Trial{
		id:                  t.id,
		status:              t.status,
		assignedWorker:      copyPtr(t.assignedWorker),
		stoppingReason:      copyPtr(t.stoppingReason),
		infeasible:          copyPtr(t.infeasible),
		infeasibilityReason: copyPtr(t.infeasibilityReason),
		description:         copyPtr(t.description),
		parameters:          t.parameters.Clone(),
		metadata:            cloneMetadata(t.metadata),
		relatedLinks:        t.RelatedLinks(),
		finalMeasurement:    t.finalMeasurement.Clone(),
		creationTime:        copyPtr(t.creationTime),
		completionTime:      copyPtr(t.completionTime),
		reporter:            t.reporter,
		now:                 t.now,
	}
	if t.measurements != nil {
		out.measurements = make([]*Measurement, len(t.measurements))
		for i, m := range t.measurements {
			out.measurements[i] = m.Clone()
		}
	}
	return out
}

func (t *Trial) String() string {
	return fmt.Sprintf("Trial(id=%d, status=%s, parameters=%d, measurements=%d)",
		t.id, t.status, t.parameters.Len(), len(t.measurements))
}

func (t *Trial) diagnostics() Reporter {
	if t.reporter == nil {
		return NopReporter{}
	}
	return t.reporter
}

func (t *Trial) clock() time.Time {
	if t.now == nil {
		return time.Now()
	}
	return t.now()
}

func toLocal(ts *time.Time) *time.Time {
	if ts == nil {
		return nil
	}
	local := ts.Local()
	return &local
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func deref[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}
