package kind

import (
	"fmt"
	"reflect"
	"sort"
)

// Array is the compound kind of homogeneous sequences.
type Array struct {
	// Element is the kind shared by every element of the sequence.
	Element Kind
}

func (a Array) kindNode() {}

func (a Array) Name() string { return fmt.Sprintf("array<%s>", a.Element.Name()) }

func (a Array) String() string { return a.Name() }

func (a Array) Rank() int { return -1 }

func (a Array) Match(other Kind) bool {
	o, ok := other.(Array)
	return ok && a.Element.Match(o.Element)
}

func (a Array) Cast(value any) (any, error) {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, &CastError{Kind: a, Value: value, Reason: fmt.Sprintf("unsupported source type %T", value)}
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem, err := a.Element.Cast(rv.Index(i).Interface())
		if err != nil {
			return nil, &CastError{Kind: a, Value: value, Reason: fmt.Sprintf("element %d: %v", i, err)}
		}
		out[i] = elem
	}
	return out, nil
}

// Map is the compound kind of homogeneous key-value mappings.
type Map struct {
	Key   Kind
	Value Kind
}

func (m Map) kindNode() {}

func (m Map) Name() string { return fmt.Sprintf("map<%s,%s>", m.Key.Name(), m.Value.Name()) }

func (m Map) String() string { return m.Name() }

func (m Map) Rank() int { return -1 }

func (m Map) Match(other Kind) bool {
	o, ok := other.(Map)
	return ok && m.Key.Match(o.Key) && m.Value.Match(o.Value)
}

func (m Map) Cast(value any) (any, error) {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.Kind() != reflect.Map {
		return nil, &CastError{Kind: m, Value: value, Reason: fmt.Sprintf("unsupported source type %T", value)}
	}
	out := make(map[any]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k, err := m.Key.Cast(iter.Key().Interface())
		if err != nil {
			return nil, &CastError{Kind: m, Value: value, Reason: err.Error()}
		}
		v, err := m.Value.Cast(iter.Value().Interface())
		if err != nil {
			return nil, &CastError{Kind: m, Value: value, Reason: err.Error()}
		}
		out[k] = v
	}
	return out, nil
}

// StructField is a single named member of a Struct kind.
type StructField struct {
	Name string
	Kind Kind
}

// Struct is the compound kind of records with a fixed set of named,
// individually typed members. Field order is part of the structure.
type Struct struct {
	Fields []StructField
}

func (s Struct) kindNode() {}

func (s Struct) Name() string {
	out := "struct<"
	for i, f := range s.Fields {
		if i > 0 {
			out += ","
		}
		out += f.Name + ":" + f.Kind.Name()
	}
	return out + ">"
}

func (s Struct) String() string { return s.Name() }

func (s Struct) Rank() int { return -1 }

func (s Struct) Match(other Kind) bool {
	o, ok := other.(Struct)
	if !ok || len(o.Fields) != len(s.Fields) {
		return false
	}
	for i, f := range s.Fields {
		if o.Fields[i].Name != f.Name || !f.Kind.Match(o.Fields[i].Kind) {
			return false
		}
	}
	return true
}

func (s Struct) Cast(value any) (any, error) {
	src, ok := value.(map[string]any)
	if !ok {
		return nil, &CastError{Kind: s, Value: value, Reason: fmt.Sprintf("unsupported source type %T", value)}
	}
	out := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		raw, ok := src[f.Name]
		if !ok {
			return nil, &CastError{Kind: s, Value: value, Reason: fmt.Sprintf("missing field %q", f.Name)}
		}
		cast, err := f.Kind.Cast(raw)
		if err != nil {
			return nil, &CastError{Kind: s, Value: value, Reason: fmt.Sprintf("field %q: %v", f.Name, err)}
		}
		out[f.Name] = cast
	}
	return out, nil
}

// sortedStructFields builds the deterministic field order of a Struct kind
// reflected from a native mapping. Mappings carry no order of their own so
// the names are sorted.
func sortedStructFields(fields map[string]Kind) []StructField {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]StructField, len(names))
	for i, name := range names {
		out[i] = StructField{Name: name, Kind: fields[name]}
	}
	return out
}
