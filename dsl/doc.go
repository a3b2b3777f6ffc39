// Package dsl implements the typed relational query language: the frame
// algebra describing data sources (tables, references, joins, set operations
// and sub-queries) and the feature algebra describing column-level
// expressions (field references, literals, operators, aggregates and window
// functions).
//
// The two algebras are mutually referential - features carry an owning
// origin source and queries validate features against their source's feature
// set - so they live in a single package.
//
// All nodes are immutable value objects created once at construction time.
// Every "modification" (adding a filter, changing the selection) returns a
// new node. Identity is purely structural: two independently built nodes
// with the same shape compare Equal and share a Hash, which makes nodes
// safely usable as map keys through the parser's symbol maps.
//
// Validation is eager. Every constructor enforces its own argument and kind
// constraints and fails with a *GrammarError at the call site, before any
// compilation happens:
//
//	student, err := dsl.NewTable("student",
//		dsl.NewField(kind.String, "surname"),
//		dsl.NewField(kind.Integer, "score"))
//	...
//	score, err := student.Column("score")
//	filter, err := dsl.Lt(score, literal)
//	query, err := dsl.Where(student, filter)
//
// Source and Feature are sealed interfaces using the marker method pattern.
// Only types in this package implement them, which enables exhaustive type
// switches in backend compilers.
package dsl
