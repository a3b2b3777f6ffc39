// Package catalog loads table declarations from YAML documents. A catalog
// maps table names to their typed schemas so query trees can be built
// against externally maintained definitions instead of hand-constructed
// tables.
package catalog
