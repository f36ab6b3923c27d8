package trial

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

// ValueType identifies which scalar a ParameterValue holds.
type ValueType uint8

const (
	// TypeInvalid is the zero ParameterValue, which holds nothing.
	TypeInvalid ValueType = iota
	TypeString
	TypeInt
	TypeFloat
	TypeBool
)

func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	default:
		return "invalid"
	}
}

// ExternalType selects the coercion applied by ParameterValue.Cast.
//
// The numeric values are a wire contract; only append.
type ExternalType int32

const (
	ExternalInternal ExternalType = 0
	ExternalBoolean  ExternalType = 1
	ExternalInteger  ExternalType = 2
	ExternalFloat    ExternalType = 3
	ExternalString   ExternalType = 4
)

// ParameterValue is an immutable string, integer, float or boolean.
//
// The strings "true" and "false" are boolean-compatible literals: every
// coercion special-cases them before falling back to a numeric or string
// cast. Numbers never coerce to strings.
type ParameterValue struct {
	typ ValueType
	s   string
	i   int64
	f   float64
	b   bool
}

// StringValue returns a ParameterValue holding s.
func StringValue(s string) ParameterValue { return ParameterValue{typ: TypeString, s: s} }

// IntValue returns a ParameterValue holding i.
func IntValue(i int64) ParameterValue { return ParameterValue{typ: TypeInt, i: i} }

// FloatValue returns a ParameterValue holding f.
func FloatValue(f float64) ParameterValue { return ParameterValue{typ: TypeFloat, f: f} }

// BoolValue returns a ParameterValue holding b.
func BoolValue(b bool) ParameterValue { return ParameterValue{typ: TypeBool, b: b} }

// NewParameterValue wraps a raw scalar. Strings, booleans and every Go integer
// and float kind are accepted; an existing ParameterValue is returned as is.
// Anything else is a type error.
func NewParameterValue(v interface{}) (ParameterValue, error) {
	const op = "ParameterValue.New"
	switch pv := v.(type) {
	case ParameterValue:
		if pv.typ == TypeInvalid {
			return ParameterValue{}, typeError(op, "parameter value is empty")
		}
		return pv, nil
	case *ParameterValue:
		if pv == nil || pv.typ == TypeInvalid {
			return ParameterValue{}, typeError(op, "parameter value is empty")
		}
		return *pv, nil
	case nil:
		return ParameterValue{}, typeError(op, "parameter value must be a string, integer, float or boolean, got nil")
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return StringValue(rv.String()), nil
	case reflect.Bool:
		return BoolValue(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return IntValue(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return ParameterValue{}, validationError(op, "integer %d overflows int64", u)
		}
		return IntValue(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return FloatValue(rv.Float()), nil
	default:
		return ParameterValue{}, typeError(op, "parameter value must be a string, integer, float or boolean, got %T", v)
	}
}

// Type returns which scalar v holds.
func (v ParameterValue) Type() ValueType { return v.typ }

// Value returns the stored scalar as a string, int64, float64 or bool.
func (v ParameterValue) Value() interface{} {
	switch v.typ {
	case TypeString:
		return v.s
	case TypeInt:
		return v.i
	case TypeFloat:
		return v.f
	case TypeBool:
		return v.b
	default:
		return nil
	}
}

// AsBool returns true for "true" or 1 and false for "false" or 0. String
// matching ignores case. Everything else is undefined and reports ok=false.
func (v ParameterValue) AsBool() (b bool, ok bool) {
	switch v.typ {
	case TypeString:
		switch strings.ToLower(v.s) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	case TypeInt:
		switch v.i {
		case 1:
			return true, true
		case 0:
			return false, true
		}
	case TypeFloat:
		switch v.f {
		case 1.0:
			return true, true
		case 0.0:
			return false, true
		}
	case TypeBool:
		return v.b, true
	}
	return false, false
}

// AsFloat returns the numeric value as a float. The exact strings "true" and
// "false" map to 1 and 0; any other string is undefined.
func (v ParameterValue) AsFloat() (float64, bool) {
	switch v.typ {
	case TypeString:
		return boolLiteral(v.s)
	case TypeInt:
		return float64(v.i), true
	case TypeFloat:
		return v.f, true
	case TypeBool:
		if v.b {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// AsInt follows AsFloat but truncates toward zero. Floats that are NaN,
// infinite or outside the int64 range are undefined.
func (v ParameterValue) AsInt() (int64, bool) {
	switch v.typ {
	case TypeString:
		f, ok := boolLiteral(v.s)
		return int64(f), ok
	case TypeInt:
		return v.i, true
	case TypeFloat:
		const twoTo63 = 1 << 63
		if math.IsNaN(v.f) || v.f >= twoTo63 || v.f < -twoTo63 {
			return 0, false
		}
		return int64(v.f), true
	case TypeBool:
		if v.b {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// AsStr returns strings unchanged and booleans as "true" or "false".
// Numbers are undefined.
func (v ParameterValue) AsStr() (string, bool) {
	switch v.typ {
	case TypeString:
		return v.s, true
	case TypeBool:
		return strconv.FormatBool(v.b), true
	}
	return "", false
}

// Cast applies the coercion selected by t. An undefined coercion returns nil;
// an unrecognized t is a value error.
func (v ParameterValue) Cast(t ExternalType) (interface{}, error) {
	const op = "ParameterValue.Cast"
	var (
		out interface{}
		ok  bool
	)
	switch t {
	case ExternalInternal:
		return v.Value(), nil
	case ExternalBoolean:
		out, ok = v.AsBool()
	case ExternalInteger:
		out, ok = v.AsInt()
	case ExternalFloat:
		out, ok = v.AsFloat()
	case ExternalString:
		out, ok = v.AsStr()
	default:
		return nil, valueError(op, "unknown external type enum value: %d", int32(t))
	}
	if !ok {
		return nil, nil
	}
	return out, nil
}

// Equal reports whether both values hold the same type and scalar.
func (v ParameterValue) Equal(o ParameterValue) bool {
	return v == o
}

func (v ParameterValue) String() string {
	switch v.typ {
	case TypeString:
		return v.s
	case TypeInt:
		return strconv.FormatInt(v.i, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case TypeBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

func boolLiteral(s string) (float64, bool) {
	switch s {
	case "true":
		return 1, true
	case "false":
		return 0, true
	}
	return 0, false
}
