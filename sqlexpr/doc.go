// Package sqlexpr compiles relational DSL trees into typed SQL expression
// trees rendered as parameterized statements.
//
// Unlike sqltext, literal values never appear in the statement text: they
// are collected as bind arguments with ? placeholders, which is the form
// database/sql drivers expect. The sqlite package executes the rendered
// output directly.
package sqlexpr
