// Package sqltext compiles relational DSL trees into ANSI SQL statement
// text.
//
// The backend is stateless string templating: identifiers are double-quoted,
// literals are encoded per kind and sub-queries are parenthesized where the
// grammar requires it. Values are interpolated into the statement, so the
// output is meant for engines and tooling that accept full statement text;
// use the sqlexpr backend when parameter binding is needed.
package sqltext
