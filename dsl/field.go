package dsl

import (
	"fmt"

	"github.com/formlio/relq/kind"
)

// Field is a single schema member: a kind with an optional name. Unnamed
// fields get normalized to a positional name during schema construction.
type Field struct {
	Kind kind.Kind
	Name string
}

// NewField builds a field of the given kind and name.
func NewField(k kind.Kind, name string) Field {
	return Field{Kind: k, Name: name}
}

// Renamed returns a copy of the field carrying a different name.
func (f Field) Renamed(name string) Field {
	return Field{Kind: f.Kind, Name: name}
}

// Equal reports structural field equality: same kind and same name.
func (f Field) Equal(other Field) bool {
	return f.Name == other.Name && f.Kind.Match(other.Kind)
}

func (f Field) encode(e *encoder) {
	e.open("field")
	e.atom(f.Name)
	e.atom(f.Kind.Name())
	e.close()
}

// Schema is an ordered, named collection of fields. Schema identity is
// purely structural: two independently built schemas with the same ordered
// field list compare equal.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema builds a schema from the given ordered fields. Unnamed fields
// are normalized to a positional name via Renamed. Two fields resolving to
// the same final name collide and fail with a *GrammarError.
func NewSchema(fields ...Field) (*Schema, error) {
	s := &Schema{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.Kind == nil {
			return nil, &GrammarError{Message: fmt.Sprintf("schema field %d has no kind", i)}
		}
		if f.Name == "" {
			f = f.Renamed(fmt.Sprintf("c%d", i))
		}
		if _, ok := s.index[f.Name]; ok {
			return nil, &GrammarError{Message: fmt.Sprintf("duplicate schema field %q", f.Name)}
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// Extend returns a new schema inheriting this schema's fields followed by
// the extra ones. Collisions across the base fields fail the same way as
// within a single definition.
func (s *Schema) Extend(fields ...Field) (*Schema, error) {
	combined := make([]Field, 0, len(s.fields)+len(fields))
	combined = append(combined, s.fields...)
	combined = append(combined, fields...)
	return NewSchema(combined...)
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Fields returns the ordered field list.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks a field up by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Equal reports structural schema equality: same length and pairwise-equal
// fields in the same order.
func (s *Schema) Equal(other *Schema) bool {
	if other == nil || len(s.fields) != len(other.fields) {
		return false
	}
	for i, f := range s.fields {
		if !f.Equal(other.fields[i]) {
			return false
		}
	}
	return true
}

func (s *Schema) encode(e *encoder) {
	e.open("schema")
	for _, f := range s.fields {
		f.encode(e)
	}
	e.close()
}

// Repr returns the structural form of the schema.
func (s *Schema) Repr() string {
	out := "["
	for i, f := range s.fields {
		if i > 0 {
			out += ", "
		}
		out += f.Name + ":" + f.Kind.Name()
	}
	return out + "]"
}
