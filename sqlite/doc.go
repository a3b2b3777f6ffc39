// Package sqlite executes compiled queries against a SQLite database. It
// renders the typed SQL produced by the sqlexpr backend into parameterized
// statements and materializes result sets as columnar tables, which makes
// it both an execution engine and a fixture loader for round-trip tests.
package sqlite
