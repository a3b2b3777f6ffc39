package dsl

import (
	"fmt"

	"github.com/google/uuid"
)

// Table is a schema-bound leaf source. Its features are the schema's
// columns.
type Table struct {
	name   string
	schema *Schema
}

// NewTable builds a named table over the given ordered fields.
func NewTable(name string, fields ...Field) (*Table, error) {
	schema, err := NewSchema(fields...)
	if err != nil {
		return nil, err
	}
	return TableFromSchema(name, schema)
}

// TableFromSchema builds a named table over an existing schema value.
func TableFromSchema(name string, schema *Schema) (*Table, error) {
	if name == "" {
		return nil, &GrammarError{Message: "table requires a name"}
	}
	if schema == nil || schema.Len() == 0 {
		return nil, &GrammarError{Message: fmt.Sprintf("table %q requires a non-empty schema", name)}
	}
	return &Table{name: name, schema: schema}, nil
}

func (t *Table) source() {}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Schema returns the table's schema.
func (t *Table) Schema() *Schema { return t.schema }

// Column returns the column feature backing the named schema field.
func (t *Table) Column(name string) (*Column, error) {
	if _, ok := t.schema.Field(name); !ok {
		return nil, grammarf(t, "no field named %q", name)
	}
	return &Column{table: t, name: name}, nil
}

// Features returns the table's columns in schema order.
func (t *Table) Features() []Feature {
	out := make([]Feature, t.schema.Len())
	for i, f := range t.schema.fields {
		out[i] = &Column{table: t, name: f.Name}
	}
	return out
}

// Repr returns the structural form of the table.
func (t *Table) Repr() string { return t.name }

func (t *Table) encode(e *encoder) {
	e.open("table")
	e.atom(t.name)
	t.schema.encode(e)
	e.close()
}

// Reference wraps a source under a name and re-exposes the wrapped
// instance's features as elements bound to the reference itself rather than
// to the original source. Two references over the same instance are distinct
// nodes, which is what makes self-joins and sub-query aliases hashable and
// distinguishable.
type Reference struct {
	instance Source
	name     string
}

// NewReference aliases the instance under the given name, or under an
// auto-generated one when the name is empty. Every instance feature must be
// nameable so the reference can re-expose it.
func NewReference(instance Source, name string) (*Reference, error) {
	if instance == nil {
		return nil, &GrammarError{Message: "reference requires an instance"}
	}
	if name == "" {
		name = "ref_" + uuid.Must(uuid.NewV7()).String()
	}
	for _, f := range instance.Features() {
		if _, ok := FeatureName(f); !ok {
			return nil, grammarf(f, "reference %q requires nameable features", name)
		}
	}
	return &Reference{instance: instance, name: name}, nil
}

func (r *Reference) source() {}

// Name returns the reference name.
func (r *Reference) Name() string { return r.name }

// Instance returns the wrapped source.
func (r *Reference) Instance() Source { return r.instance }

// Features re-exposes the instance's features as elements bound to this
// reference.
func (r *Reference) Features() []Feature {
	features := r.instance.Features()
	out := make([]Feature, len(features))
	for i, f := range features {
		name, _ := FeatureName(f)
		out[i] = &Element{origin: r, name: name, kind: f.Kind()}
	}
	return out
}

// Repr returns the structural form of the reference.
func (r *Reference) Repr() string {
	return fmt.Sprintf("%s=%s", r.name, r.instance.Repr())
}

func (r *Reference) encode(e *encoder) {
	e.open("reference")
	e.node(r.instance)
	e.atom(r.name)
	e.close()
}

// JoinKind enumerates the join flavors.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
	RightJoin
	FullJoin
	CrossJoin
)

func (k JoinKind) String() string {
	return [...]string{"inner", "left", "right", "full", "cross"}[k]
}

// Join combines two sources on an optional row-matching condition.
type Join struct {
	left      Source
	right     Source
	condition Predicate
	kind      JoinKind
}

// NewJoin builds a join of the two sources. Cross joins forbid a condition;
// every other kind requires one. The condition must not contain aggregates
// and every field it references must come from the joined sources.
func NewJoin(left, right Source, condition Predicate, k JoinKind) (*Join, error) {
	if left == nil || right == nil {
		return nil, &GrammarError{Message: "join requires two sources"}
	}
	if k == CrossJoin {
		if condition != nil {
			return nil, grammarf(condition, "cross join does not take a condition")
		}
		return &Join{left: left, right: right, kind: k}, nil
	}
	if condition == nil {
		return nil, &GrammarError{Message: fmt.Sprintf("%s join requires a condition", k)}
	}
	if ContainsCumulative(condition) {
		return nil, grammarf(condition, "join condition must not contain aggregates")
	}
	superset := groundSet(append(left.Features(), right.Features()...)...)
	if missing, ok := subset(superset, condition); !ok {
		return nil, grammarf(missing, "join condition references a feature foreign to the joined sources")
	}
	return &Join{left: left, right: right, condition: condition, kind: k}, nil
}

func (j *Join) source() {}

// Left returns the left source.
func (j *Join) Left() Source { return j.left }

// Right returns the right source.
func (j *Join) Right() Source { return j.right }

// Condition returns the join condition, nil for cross joins.
func (j *Join) Condition() Predicate { return j.condition }

// Kind returns the join flavor.
func (j *Join) Kind() JoinKind { return j.kind }

// Features returns the union of both sources' features, left first.
func (j *Join) Features() []Feature {
	return append(j.left.Features(), j.right.Features()...)
}

// Repr returns the structural form of the join.
func (j *Join) Repr() string {
	out := fmt.Sprintf("%s %s %s", j.left.Repr(), j.kind, j.right.Repr())
	if j.condition != nil {
		out += " on " + j.condition.Repr()
	}
	return out
}

func (j *Join) encode(e *encoder) {
	e.open("join:" + j.kind.String())
	e.node(j.left)
	e.node(j.right)
	e.node(j.condition)
	e.close()
}

// SetKind enumerates the set operations.
type SetKind int

const (
	UnionSet SetKind = iota
	IntersectionSet
	DifferenceSet
)

func (k SetKind) String() string {
	return [...]string{"union", "intersection", "difference"}[k]
}

// Set combines the row sets of two feature-compatible sources.
type Set struct {
	left  Source
	right Source
	kind  SetKind
}

// NewSet builds a set operation over the two sources, requiring equal
// feature arity with pairwise matching kinds.
func NewSet(left, right Source, k SetKind) (*Set, error) {
	if left == nil || right == nil {
		return nil, &GrammarError{Message: "set operation requires two sources"}
	}
	lf, rf := left.Features(), right.Features()
	if len(lf) != len(rf) {
		return nil, grammarf(left, "%s requires equally wide sources, got %d and %d features", k, len(lf), len(rf))
	}
	for i := range lf {
		if !lf[i].Kind().Match(rf[i].Kind()) {
			return nil, grammarf(rf[i], "%s feature %d kind mismatch: %s vs %s",
				k, i, lf[i].Kind().Name(), rf[i].Kind().Name())
		}
	}
	return &Set{left: left, right: right, kind: k}, nil
}

func (s *Set) source() {}

// Left returns the left source.
func (s *Set) Left() Source { return s.left }

// Right returns the right source.
func (s *Set) Right() Source { return s.right }

// Kind returns the set operation.
func (s *Set) Kind() SetKind { return s.kind }

// Features returns the left source's features, which type the combined row
// set.
func (s *Set) Features() []Feature { return s.left.Features() }

// Repr returns the structural form of the set operation.
func (s *Set) Repr() string {
	return fmt.Sprintf("%s %s %s", s.left.Repr(), s.kind, s.right.Repr())
}

func (s *Set) encode(e *encoder) {
	e.open("set:" + s.kind.String())
	e.node(s.left)
	e.node(s.right)
	e.close()
}
