// Package codec maps trials to and from JSON and YAML documents.
package codec

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/copyleftdev/trialcore/internal/errors"
	"github.com/copyleftdev/trialcore/internal/trial"
)

const component = "codec"

// TrialDocument is the external form of a trial.
type TrialDocument struct {
	ID                  int64                 `json:"id" yaml:"id"`
	Status              string                `json:"status,omitempty" yaml:"status,omitempty"`
	AssignedWorker      *string               `json:"assigned_worker,omitempty" yaml:"assigned_worker,omitempty"`
	StoppingReason      *string               `json:"stopping_reason,omitempty" yaml:"stopping_reason,omitempty"`
	Infeasible          *bool                 `json:"infeasible,omitempty" yaml:"infeasible,omitempty"`
	InfeasibilityReason *string               `json:"infeasibility_reason,omitempty" yaml:"infeasibility_reason,omitempty"`
	Description         *string               `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters          []ParameterDocument   `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Metadata            map[string]string     `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	RelatedLinks        map[string]string     `json:"related_links,omitempty" yaml:"related_links,omitempty"`
	FinalMeasurement    *MeasurementDocument  `json:"final_measurement,omitempty" yaml:"final_measurement,omitempty"`
	Measurements        []MeasurementDocument `json:"measurements,omitempty" yaml:"measurements,omitempty"`
	CreationTime        *time.Time            `json:"creation_time,omitempty" yaml:"creation_time,omitempty"`
	CompletionTime      *time.Time            `json:"completion_time,omitempty" yaml:"completion_time,omitempty"`
}

// ParameterDocument is one named parameter. Value holds a string, bool,
// integer or float.
type ParameterDocument struct {
	Name  string      `json:"name" yaml:"name"`
	Value interface{} `json:"value" yaml:"value"`
}

// integralFloat returns v rendered with a trailing ".0" when v is a float64
// holding an integer, so decoding does not turn it into an integer.
func integralFloat(v interface{}) (string, bool) {
	f, ok := v.(float64)
	if !ok || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) >= 1e21 {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', 1, 64), true
}

// MarshalJSON implements json.Marshaler. A non-finite float is written as a
// string tagged with type "float".
func (p ParameterDocument) MarshalJSON() ([]byte, error) {
	type plain ParameterDocument
	if f, ok := p.Value.(float64); ok {
		if s, ok := nonFiniteString(f); ok {
			return json.Marshal(struct {
				Name  string `json:"name"`
				Value string `json:"value"`
				Type  string `json:"type"`
			}{p.Name, s, floatType})
		}
	}
	s, ok := integralFloat(p.Value)
	if !ok {
		return json.Marshal(plain(p))
	}
	return json.Marshal(struct {
		Name  string          `json:"name"`
		Value json.RawMessage `json:"value"`
	}{p.Name, json.RawMessage(s)})
}

// MarshalYAML implements yaml.Marshaler.
func (p ParameterDocument) MarshalYAML() (interface{}, error) {
	type plain ParameterDocument
	s, ok := integralFloat(p.Value)
	if !ok {
		return plain(p), nil
	}
	return struct {
		Name  string     `yaml:"name"`
		Value *yaml.Node `yaml:"value"`
	}{p.Name, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}}, nil
}

// MeasurementDocument is the external form of a measurement.
type MeasurementDocument struct {
	ElapsedSecs float64          `json:"elapsed_secs" yaml:"elapsed_secs"`
	Steps       float64          `json:"steps" yaml:"steps"`
	Metrics     []MetricDocument `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// MetricDocument carries a metric value. The standard deviation is not
// part of the external form.
type MetricDocument struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// FromTrial converts t to its document form.
func FromTrial(t *trial.Trial) *TrialDocument {
	doc := &TrialDocument{
		ID:     t.ID(),
		Status: t.Status().String(),
	}
	if v, ok := t.AssignedWorker(); ok {
		doc.AssignedWorker = &v
	}
	if v, ok := t.StoppingReason(); ok {
		doc.StoppingReason = &v
	}
	if v, ok := t.InfeasibleFlag(); ok {
		doc.Infeasible = &v
	}
	if v, ok := t.InfeasibilityReason(); ok {
		doc.InfeasibilityReason = &v
	}
	if v, ok := t.Description(); ok {
		doc.Description = &v
	}

	t.Parameters().Range(func(name string, v trial.ParameterValue) bool {
		doc.Parameters = append(doc.Parameters, ParameterDocument{Name: name, Value: v.Value()})
		return true
	})

	if md := t.Metadata(); md != nil {
		md.Range(func(k, v string) bool {
			if doc.Metadata == nil {
				doc.Metadata = make(map[string]string)
			}
			doc.Metadata[k] = v
			return true
		})
	}
	if links := t.RelatedLinks(); len(links) > 0 {
		doc.RelatedLinks = links
	}

	if m := t.FinalMeasurement(); m != nil {
		md := fromMeasurement(m)
		doc.FinalMeasurement = &md
	}
	for _, m := range t.Measurements() {
		doc.Measurements = append(doc.Measurements, fromMeasurement(m))
	}

	if ts, ok := t.CreationTime(); ok {
		doc.CreationTime = &ts
	}
	if ts, ok := t.CompletionTime(); ok {
		doc.CompletionTime = &ts
	}
	return doc
}

func fromMeasurement(m *trial.Measurement) MeasurementDocument {
	doc := MeasurementDocument{
		ElapsedSecs: m.ElapsedSecs(),
		Steps:       float64(m.Steps()),
	}
	m.Metrics().Range(func(name string, metric trial.Metric) bool {
		doc.Metrics = append(doc.Metrics, MetricDocument{Name: name, Value: metric.Value()})
		return true
	})
	return doc
}

// ToTrial builds a Trial from d. Options in opts are applied after the
// document's own fields, so they may override them.
func (d *TrialDocument) ToTrial(opts ...trial.Option) (*trial.Trial, error) {
	const op = "TrialDocument.ToTrial"

	build := []trial.Option{trial.WithID(d.ID)}
	if d.Status != "" {
		s, err := trial.ParseStatus(d.Status)
		if err != nil {
			return nil, annotate(err, op, "trial %d", d.ID)
		}
		build = append(build, trial.WithStatus(s))
	}
	if d.AssignedWorker != nil {
		build = append(build, trial.WithAssignedWorker(*d.AssignedWorker))
	}
	if d.StoppingReason != nil {
		build = append(build, trial.WithStoppingReason(*d.StoppingReason))
	}
	if d.Infeasible != nil {
		build = append(build, trial.WithInfeasible(*d.Infeasible))
	}
	if d.InfeasibilityReason != nil {
		build = append(build, trial.WithInfeasibilityReason(*d.InfeasibilityReason))
	}
	if d.Description != nil {
		build = append(build, trial.WithDescription(*d.Description))
	}

	params := trial.NewParameterDict()
	for _, p := range d.Parameters {
		v, err := parameterValue(p.Value)
		if err != nil {
			return nil, annotate(err, op, "trial %d: parameter %q", d.ID, p.Name)
		}
		if err := params.SetValue(p.Name, v); err != nil {
			return nil, annotate(err, op, "trial %d: parameter %q", d.ID, p.Name)
		}
	}
	build = append(build, trial.WithParameters(params))

	md := trial.NewMetadata()
	for k, v := range d.Metadata {
		md.Set(k, v)
	}
	build = append(build, trial.WithMetadata(md))

	if len(d.RelatedLinks) > 0 {
		build = append(build, trial.WithRelatedLinks(d.RelatedLinks))
	}

	if d.FinalMeasurement != nil {
		m, err := d.FinalMeasurement.toMeasurement()
		if err != nil {
			return nil, annotate(err, op, "trial %d", d.ID)
		}
		build = append(build, trial.WithFinalMeasurement(m))
	}
	if len(d.Measurements) > 0 {
		ms := make([]*trial.Measurement, 0, len(d.Measurements))
		for i := range d.Measurements {
			m, err := d.Measurements[i].toMeasurement()
			if err != nil {
				return nil, annotate(err, op, "trial %d", d.ID)
			}
			ms = append(ms, m)
		}
		build = append(build, trial.WithMeasurements(ms...))
	}

	if d.CreationTime != nil {
		build = append(build, trial.WithCreationTime(*d.CreationTime))
	}
	if d.CompletionTime != nil {
		build = append(build, trial.WithCompletionTime(*d.CompletionTime))
	}

	t, err := trial.New(append(build, opts...)...)
	if err != nil {
		return nil, annotate(err, op, "trial %d", d.ID)
	}
	return t, nil
}

func (d *MeasurementDocument) toMeasurement() (*trial.Measurement, error) {
	values := make(map[string]float64, len(d.Metrics))
	for _, m := range d.Metrics {
		values[m.Name] = m.Value
	}
	return trial.NewMeasurement(
		trial.WithElapsedSecs(d.ElapsedSecs),
		trial.WithSteps(d.Steps),
		trial.WithMetricValues(values),
	)
}

// parameterValue converts a decoded scalar. JSON numbers arrive as
// json.Number; those written without a fraction or exponent become integers.
func parameterValue(v interface{}) (trial.ParameterValue, error) {
	n, ok := v.(json.Number)
	if !ok {
		return trial.NewParameterValue(v)
	}
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return trial.IntValue(i), nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return trial.ParameterValue{}, errors.Type("parameterValue", "invalid number %q", s).
			WithComponent(component)
	}
	return trial.FloatValue(f), nil
}

// annotate wraps err with the trial it concerns, keeping its Kind.
func annotate(err error, op, format string, args ...interface{}) *errors.Error {
	e := errors.Errorf(format, args...).WithOperation(op).WithComponent(component)
	e.Kind = errors.KindOf(err)
	e.Err = err
	return e
}
