// Package coltab provides the in-memory columnar tables the closure
// backend evaluates against, together with loaders for common feed
// formats: CSV, JSON, JSON lines, Avro object container files and Parquet.
package coltab
