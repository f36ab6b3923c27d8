package trial

import (
	"sort"
)

// ParameterDict maps parameter names to values, preserving insertion order
// for iteration. Writes accept raw scalars and wrap them.
//
// The zero value is an empty dict ready to use.
type ParameterDict struct {
	keys  []string
	items map[string]ParameterValue
}

// NewParameterDict returns an empty ParameterDict.
func NewParameterDict() *ParameterDict {
	return &ParameterDict{items: make(map[string]ParameterValue)}
}

// ParameterDictOf builds a dict from raw scalars or ParameterValues. Go maps
// are unordered, so keys are inserted in sorted order.
func ParameterDictOf(values map[string]interface{}) (*ParameterDict, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d := NewParameterDict()
	for _, k := range keys {
		if err := d.Set(k, values[k]); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Set stores value under key, wrapping raw scalars into a ParameterValue.
// An existing key keeps its position.
func (d *ParameterDict) Set(key string, value interface{}) error {
	pv, err := NewParameterValue(value)
	if err != nil {
		return err
	}
	d.store(key, pv)
	return nil
}

// SetValue stores an already-wrapped value under key. The zero ParameterValue
// holds nothing and is a type error.
func (d *ParameterDict) SetValue(key string, value ParameterValue) error {
	const op = "ParameterDict.SetValue"
	if value.typ == TypeInvalid {
		return typeError(op, "parameter %q: value is empty", key)
	}
	d.store(key, value)
	return nil
}

func (d *ParameterDict) store(key string, value ParameterValue) {
	if d.items == nil {
		d.items = make(map[string]ParameterValue)
	}
	if _, exists := d.items[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.items[key] = value
}

// Get returns the wrapped value for key.
func (d *ParameterDict) Get(key string) (ParameterValue, bool) {
	if d == nil {
		return ParameterValue{}, false
	}
	pv, ok := d.items[key]
	return pv, ok
}

// GetValue returns the raw scalar for key, or def when key is absent.
func (d *ParameterDict) GetValue(key string, def interface{}) interface{} {
	pv, ok := d.Get(key)
	if !ok {
		return def
	}
	return pv.Value()
}

// Delete removes key and reports whether it was present.
func (d *ParameterDict) Delete(key string) bool {
	if d == nil {
		return false
	}
	if _, ok := d.items[key]; !ok {
		return false
	}
	delete(d.items, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of parameters.
func (d *ParameterDict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Keys returns the parameter names in insertion order.
func (d *ParameterDict) Keys() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.keys...)
}

// Range calls fn for each parameter in insertion order until fn returns false.
func (d *ParameterDict) Range(fn func(key string, value ParameterValue) bool) {
	if d == nil {
		return
	}
	for _, k := range d.keys {
		if !fn(k, d.items[k]) {
			return
		}
	}
}

// Update copies every entry of other into d.
func (d *ParameterDict) Update(other *ParameterDict) {
	other.Range(func(k string, v ParameterValue) bool {
		d.store(k, v)
		return true
	})
}

// Clone returns an independent copy. ParameterValues are immutable, so a
// shallow copy of the entries suffices.
func (d *ParameterDict) Clone() *ParameterDict {
	out := NewParameterDict()
	out.Update(d)
	return out
}

// AsMap returns the raw scalars keyed by name.
func (d *ParameterDict) AsMap() map[string]interface{} {
	out := make(map[string]interface{}, d.Len())
	d.Range(func(k string, v ParameterValue) bool {
		out[k] = v.Value()
		return true
	})
	return out
}

// Equal reports whether both dicts hold the same entries, ignoring order.
func (d *ParameterDict) Equal(o *ParameterDict) bool {
	if d.Len() != o.Len() {
		return false
	}
	equal := true
	d.Range(func(k string, v ParameterValue) bool {
		ov, ok := o.Get(k)
		equal = ok && v.Equal(ov)
		return equal
	})
	return equal
}
