package dsl

import (
	"fmt"

	"github.com/formlio/relq/kind"
)

// Column is a field-backed leaf feature whose kind derives from a schema
// lookup on its owning table. Columns are created through Table.Column.
type Column struct {
	table *Table
	name  string
}

func (c *Column) feature()  {}
func (c *Column) operable() {}

// Table returns the owning table.
func (c *Column) Table() *Table { return c.table }

// Name returns the referenced field name.
func (c *Column) Name() string { return c.name }

// Kind returns the kind of the backing schema field.
func (c *Column) Kind() kind.Kind {
	f, _ := c.table.schema.Field(c.name)
	return f.Kind
}

// Repr returns the structural form of the column.
func (c *Column) Repr() string { return c.table.name + "." + c.name }

func (c *Column) encode(e *encoder) {
	e.open("column")
	e.node(c.table)
	e.atom(c.name)
	e.close()
}

// Factors implements single-table predicate decomposition for boolean
// columns used directly as filters.
func (c *Column) Factors() Factors {
	if !c.Kind().Match(kind.Boolean) {
		return Factors{}
	}
	return primitiveFactors(c)
}

// Element re-exposes a named feature of a wrapped source - typically a
// Reference - as a feature bound to that source rather than to the feature's
// original table. NewElement specializes to *Column when the origin is a
// table.
type Element struct {
	origin Source
	name   string
	kind   kind.Kind
}

// NewElement builds the feature addressing origin's feature of the given
// name. An origin without a nameable feature of that name fails with a
// *GrammarError.
func NewElement(origin Source, name string) (Feature, error) {
	if origin == nil {
		return nil, &GrammarError{Message: "element requires an origin"}
	}
	if t, ok := origin.(*Table); ok {
		return t.Column(name)
	}
	for _, f := range origin.Features() {
		if n, ok := FeatureName(f); ok && n == name {
			return &Element{origin: origin, name: name, kind: f.Kind()}, nil
		}
	}
	return nil, grammarf(origin, "no feature named %q", name)
}

func (el *Element) feature()  {}
func (el *Element) operable() {}

// Origin returns the owning source.
func (el *Element) Origin() Source { return el.origin }

// Name returns the addressed feature name.
func (el *Element) Name() string { return el.name }

// Kind returns the kind of the addressed feature.
func (el *Element) Kind() kind.Kind { return el.kind }

// Repr returns the structural form of the element.
func (el *Element) Repr() string {
	if r, ok := el.origin.(*Reference); ok {
		return r.name + "." + el.name
	}
	return el.origin.Repr() + "." + el.name
}

func (el *Element) encode(e *encoder) {
	e.open("element")
	e.node(el.origin)
	e.atom(el.name)
	e.close()
}

// Factors implements single-table decomposition for boolean elements.
func (el *Element) Factors() Factors {
	if !el.kind.Match(kind.Boolean) {
		return Factors{}
	}
	return primitiveFactors(el)
}

// Literal is a constant feature of a known kind.
type Literal struct {
	value any
	kind  kind.Kind
}

// NewLiteral builds a literal whose kind is reflected from the native value.
func NewLiteral(value any) (*Literal, error) {
	k, err := kind.Reflect(value)
	if err != nil {
		return nil, &GrammarError{Message: fmt.Sprintf("literal: %v", err)}
	}
	return NewTypedLiteral(value, k)
}

// NewTypedLiteral builds a literal of an explicit kind, casting the native
// value into the kind's representation.
func NewTypedLiteral(value any, k kind.Kind) (*Literal, error) {
	cast, err := k.Cast(value)
	if err != nil {
		return nil, fmt.Errorf("literal: %w", err)
	}
	return &Literal{value: cast, kind: k}, nil
}

func (l *Literal) feature()  {}
func (l *Literal) operable() {}

// Value returns the literal's native value in its kind's representation.
func (l *Literal) Value() any { return l.value }

// Kind returns the literal's kind.
func (l *Literal) Kind() kind.Kind { return l.kind }

// Repr returns the structural form of the literal.
func (l *Literal) Repr() string {
	if s, ok := l.value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", l.value)
}

func (l *Literal) encode(e *encoder) {
	e.open("literal")
	e.atom(l.kind.Name())
	e.value(l.value)
	e.close()
}

// Aliased names a feature for output purposes. An aliased feature is not
// operable: it cannot appear inside further expressions.
type Aliased struct {
	operable Operable
	name     string
}

// Alias wraps an operable feature under an output name.
func Alias(operable Operable, name string) (*Aliased, error) {
	if operable == nil {
		return nil, &GrammarError{Message: "alias requires a feature"}
	}
	if name == "" {
		return nil, grammarf(operable, "alias requires a name")
	}
	return &Aliased{operable: operable, name: name}, nil
}

func (a *Aliased) feature() {}

// Operable returns the wrapped feature.
func (a *Aliased) Operable() Operable { return a.operable }

// Name returns the output name.
func (a *Aliased) Name() string { return a.name }

// Kind returns the wrapped feature's kind.
func (a *Aliased) Kind() kind.Kind { return a.operable.Kind() }

// Repr returns the structural form of the aliased feature.
func (a *Aliased) Repr() string {
	return fmt.Sprintf("%s AS %s", a.operable.Repr(), a.name)
}

func (a *Aliased) encode(e *encoder) {
	e.open("aliased")
	e.node(a.operable)
	e.atom(a.name)
	e.close()
}

// FeatureName resolves the output name a feature would take in a schema:
// its alias, its column field name or its element name. Anonymous features
// (literals, bare expressions) report false.
func FeatureName(f Feature) (string, bool) {
	switch n := f.(type) {
	case *Aliased:
		return n.name, true
	case *Column:
		return n.name, true
	case *Element:
		return n.name, true
	}
	return "", false
}
