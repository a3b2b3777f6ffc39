package parser

import "github.com/formlio/relq/dsl"

// SourceMap holds backend symbols pre-registered for whole sources. Lookup
// is by structural identity, so an equivalent source built independently
// still resolves.
type SourceMap[T any] struct {
	entries map[string]T
}

// NewSourceMap builds a source symbol map.
func NewSourceMap[T any](entries map[dsl.Source]T) SourceMap[T] {
	m := SourceMap[T]{entries: make(map[string]T, len(entries))}
	for s, sym := range entries {
		m.entries[dsl.Hash(s)] = sym
	}
	return m
}

func (m SourceMap[T]) get(s dsl.Source) (T, bool) {
	if m.entries == nil {
		var zero T
		return zero, false
	}
	sym, ok := m.entries[dsl.Hash(s)]
	return sym, ok
}

// FeatureMap holds backend symbols pre-registered for individual features.
type FeatureMap[T any] struct {
	entries map[string]T
}

// NewFeatureMap builds a feature symbol map.
func NewFeatureMap[T any](entries map[dsl.Feature]T) FeatureMap[T] {
	m := FeatureMap[T]{entries: make(map[string]T, len(entries))}
	for f, sym := range entries {
		m.entries[dsl.Hash(f)] = sym
	}
	return m
}

func (m FeatureMap[T]) get(f dsl.Feature) (T, bool) {
	if m.entries == nil {
		var zero T
		return zero, false
	}
	sym, ok := m.entries[dsl.Hash(f)]
	return sym, ok
}
