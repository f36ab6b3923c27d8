package codec

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/copyleftdev/trialcore/internal/errors"
)

// floatType marks a JSON parameter whose value is a float written as a
// string because JSON has no literal for it.
const floatType = "float"

// nonFiniteString renders NaN and the infinities, which JSON cannot hold as
// numbers.
func nonFiniteString(f float64) (string, bool) {
	switch {
	case math.IsNaN(f):
		return "NaN", true
	case math.IsInf(f, 1):
		return "+Inf", true
	case math.IsInf(f, -1):
		return "-Inf", true
	}
	return "", false
}

func parseNonFinite(s string) (float64, bool) {
	switch s {
	case "NaN":
		return math.NaN(), true
	case "+Inf", "Inf":
		return math.Inf(1), true
	case "-Inf":
		return math.Inf(-1), true
	}
	return 0, false
}

// MarshalJSON implements json.Marshaler. Non-finite values are written as
// "NaN", "+Inf" or "-Inf".
func (m MetricDocument) MarshalJSON() ([]byte, error) {
	type plain MetricDocument
	s, ok := nonFiniteString(m.Value)
	if !ok {
		return json.Marshal(plain(m))
	}
	return json.Marshal(struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}{m.Name, s})
}

// UnmarshalJSON implements json.Unmarshaler. It accepts a number or one of
// the strings written by MarshalJSON.
func (m *MetricDocument) UnmarshalJSON(data []byte) error {
	const op = "MetricDocument.UnmarshalJSON"
	var raw struct {
		Name  string          `json:"name"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	m.Name = raw.Name
	m.Value = 0
	value := bytes.TrimSpace(raw.Value)
	if len(value) == 0 || bytes.Equal(value, []byte("null")) {
		return nil
	}
	if value[0] != '"' {
		return json.Unmarshal(value, &m.Value)
	}

	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return err
	}
	f, ok := parseNonFinite(s)
	if !ok {
		return errors.Type(op, "metric %q: value %q is not a number", raw.Name, s).WithComponent(component)
	}
	m.Value = f
	return nil
}

// UnmarshalJSON implements json.Unmarshaler. Numbers are kept as
// json.Number. A value tagged with type "float" is always a float, and may
// be one of the non-finite strings.
func (p *ParameterDocument) UnmarshalJSON(data []byte) error {
	const op = "ParameterDocument.UnmarshalJSON"
	var raw struct {
		Name  string          `json:"name"`
		Value json.RawMessage `json:"value"`
		Type  string          `json:"type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.Name = raw.Name
	p.Value = nil
	if len(bytes.TrimSpace(raw.Value)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw.Value))
	dec.UseNumber()
	if err := dec.Decode(&p.Value); err != nil {
		return err
	}
	if raw.Type != floatType {
		return nil
	}

	switch v := p.Value.(type) {
	case string:
		f, ok := parseNonFinite(v)
		if !ok {
			return errors.Type(op, "parameter %q: value %q is not a float", raw.Name, v).WithComponent(component)
		}
		p.Value = f
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return errors.Type(op, "parameter %q: value %q is not a float", raw.Name, v.String()).WithComponent(component)
		}
		p.Value = f
	default:
		return errors.Type(op, "parameter %q: value of type %T is not a float", raw.Name, v).WithComponent(component)
	}
	return nil
}
