package dsl

import "github.com/formlio/relq/kind"

// Node is implemented by every DSL value: sources, features and ordering
// terms. The unexported encode method seals the interface to this package.
type Node interface {
	// Repr returns the human-readable structural form of the node. Nodes
	// carry no source-location metadata, so compilation failures identify
	// the offending node through this repr.
	Repr() string

	// encode writes the node's canonical byte form used for structural
	// hashing and equality.
	encode(e *encoder)
}

// Source is any table-shaped relational node: a table, a reference, a join,
// a set operation or a sub-query.
type Source interface {
	Node

	// Features returns the column-level features the source exposes, in
	// order.
	Features() []Feature

	source() // Marker method - seals interface to this package
}

// Feature is any typed, named-or-anonymous column-level expression.
type Feature interface {
	Node

	// Kind returns the feature's value kind.
	Kind() kind.Kind

	feature() // Marker method - seals interface to this package
}

// Operable is a Feature usable inside further expressions. Every feature
// except the Aliased wrapper is operable.
type Operable interface {
	Feature

	operable()
}

// Expression is an operator feature over one or more operands: arithmetic,
// comparison, logical composition, casts and the scalar functions.
// Aggregates and windows are Cumulative, not Expression.
type Expression interface {
	Operable

	// Operands returns the expression's direct operands in order.
	Operands() []Operable

	expression()
}

// Cumulative marks features whose value accumulates over multiple rows:
// aggregates and window functions. Cumulative features are disallowed in
// join conditions, prefilters and grouping keys.
type Cumulative interface {
	Operable

	cumulative()
}

// Predicate is a boolean-kinded operable usable as a filter or join
// condition. Its Factors decompose it into per-table sub-predicates for
// filter push-down.
type Predicate interface {
	Operable

	// Factors returns the per-table decomposition of the predicate.
	Factors() Factors
}

var (
	_ Source = (*Table)(nil)
	_ Source = (*Reference)(nil)
	_ Source = (*Join)(nil)
	_ Source = (*Set)(nil)
	_ Source = (*Query)(nil)

	_ Operable = (*Column)(nil)
	_ Operable = (*Element)(nil)
	_ Operable = (*Literal)(nil)
	_ Feature  = (*Aliased)(nil)

	_ Cumulative = (*Aggregate)(nil)
	_ Cumulative = (*Window)(nil)

	_ Expression = (*Arithmetic)(nil)
	_ Expression = (*Cast)(nil)
	_ Expression = (*Year)(nil)
	_ Expression = (*Abs)(nil)
	_ Expression = (*Ceil)(nil)
	_ Expression = (*Floor)(nil)

	_ Predicate = (*Comparison)(nil)
	_ Predicate = (*Logical)(nil)
	_ Predicate = (*Not)(nil)
	_ Predicate = (*Column)(nil)
)
