package coltab

import (
	"fmt"
	"strings"
	"time"

	"github.com/formlio/relq/kind"
)

// ValueType discriminates the dynamic type of a cell.
type ValueType int

const (
	TypeNull ValueType = iota
	TypeInt
	TypeFloat
	TypeString
	TypeBool
	TypeTime
)

// Value is a dynamically typed cell.
type Value struct {
	Type  ValueType
	Int   int64
	Float float64
	Str   string
	Bool  bool
	Time  time.Time
}

// Null returns a null value.
func Null() Value {
	return Value{Type: TypeNull}
}

// IntVal creates an integer value.
func IntVal(v int64) Value {
	return Value{Type: TypeInt, Int: v}
}

// FloatVal creates a float value.
func FloatVal(v float64) Value {
	return Value{Type: TypeFloat, Float: v}
}

// StrVal creates a string value.
func StrVal(v string) Value {
	return Value{Type: TypeString, Str: v}
}

// BoolVal creates a boolean value.
func BoolVal(v bool) Value {
	return Value{Type: TypeBool, Bool: v}
}

// TimeVal creates a temporal value.
func TimeVal(v time.Time) Value {
	return Value{Type: TypeTime, Time: v}
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.Type == TypeNull
}

// AsFloat coerces numerics to float64 for arithmetic.
func (v Value) AsFloat() (float64, bool) {
	switch v.Type {
	case TypeInt:
		return float64(v.Int), true
	case TypeFloat:
		return v.Float, true
	}
	return 0, false
}

// AsBool coerces to boolean for logical operations. Null coerces to false.
func (v Value) AsBool() (bool, bool) {
	switch v.Type {
	case TypeBool:
		return v.Bool, true
	case TypeNull:
		return false, true
	}
	return false, false
}

// AsString returns the display representation.
func (v Value) AsString() string {
	switch v.Type {
	case TypeNull:
		return "null"
	case TypeInt:
		return fmt.Sprintf("%d", v.Int)
	case TypeFloat:
		return fmt.Sprintf("%g", v.Float)
	case TypeString:
		return v.Str
	case TypeBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case TypeTime:
		return v.Time.Format(kind.TimestampLayoutFrac)
	}
	return "?"
}

// Key returns a canonical representation usable as a grouping or
// deduplication map key. Distinct values yield distinct keys; an integer
// and a float of equal magnitude yield the same key so numeric grouping
// behaves as SQL does.
func (v Value) Key() string {
	switch v.Type {
	case TypeNull:
		return "\x00"
	case TypeInt:
		return fmt.Sprintf("n:%g", float64(v.Int))
	case TypeFloat:
		return fmt.Sprintf("n:%g", v.Float)
	case TypeString:
		return "s:" + v.Str
	case TypeBool:
		if v.Bool {
			return "b:1"
		}
		return "b:0"
	case TypeTime:
		return "t:" + v.Time.UTC().Format(time.RFC3339Nano)
	}
	return "?"
}

// Compare orders two values: nulls first, then numerics, strings, booleans
// and temporals by natural order. Cross-type comparisons order by type tag.
func (v Value) Compare(other Value) int {
	lf, lok := v.AsFloat()
	rf, rok := other.AsFloat()
	if lok && rok {
		switch {
		case lf < rf:
			return -1
		case lf > rf:
			return 1
		}
		return 0
	}
	if v.Type != other.Type {
		return int(v.Type) - int(other.Type)
	}
	switch v.Type {
	case TypeString:
		return strings.Compare(v.Str, other.Str)
	case TypeBool:
		switch {
		case !v.Bool && other.Bool:
			return -1
		case v.Bool && !other.Bool:
			return 1
		}
		return 0
	case TypeTime:
		switch {
		case v.Time.Before(other.Time):
			return -1
		case v.Time.After(other.Time):
			return 1
		}
		return 0
	}
	return 0
}
