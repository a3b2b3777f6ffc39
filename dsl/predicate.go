package dsl

import "sort"

// Factors is a derived, read-only mapping from a single originating table to
// the sub-predicate that exclusively involves that table. Logical
// compositions combine their operands' factor maps per table, which enables
// later push-down of per-table filters at the parser level.
type Factors struct {
	entries map[string]factorEntry
}

type factorEntry struct {
	table     *Table
	predicate Predicate
}

// NewFactors builds a factor map from explicit per-table predicates.
// Intended mostly for tests; predicates acquire their factors structurally.
func NewFactors(entries map[*Table]Predicate) Factors {
	out := Factors{entries: make(map[string]factorEntry, len(entries))}
	for t, p := range entries {
		out.entries[Hash(t)] = factorEntry{table: t, predicate: p}
	}
	return out
}

// Len returns the number of factored tables.
func (f Factors) Len() int { return len(f.entries) }

// Get returns the factor predicate for the given table.
func (f Factors) Get(t *Table) (Predicate, bool) {
	entry, ok := f.entries[Hash(t)]
	if !ok {
		return nil, false
	}
	return entry.predicate, true
}

// Tables returns the factored tables ordered by structural repr, keeping
// iteration deterministic.
func (f Factors) Tables() []*Table {
	out := make([]*Table, 0, len(f.entries))
	for _, entry := range f.entries {
		out = append(out, entry.table)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Repr() < out[j].Repr() })
	return out
}

// And merges two factor maps combining shared tables with a conjunction.
func (f Factors) And(other Factors) Factors { return f.merge(other, OpAnd) }

// Or merges two factor maps combining shared tables with a disjunction.
func (f Factors) Or(other Factors) Factors { return f.merge(other, OpOr) }

// Equal reports whether two factor maps hold structurally equal predicates
// for the same tables.
func (f Factors) Equal(other Factors) bool {
	if len(f.entries) != len(other.entries) {
		return false
	}
	for key, entry := range f.entries {
		o, ok := other.entries[key]
		if !ok || !Equal(entry.predicate, o.predicate) {
			return false
		}
	}
	return true
}

// merge produces the per-table union of two factor maps. Tables present on
// both sides with differing predicates combine under the operator; equal
// predicates dedupe, which keeps the merge idempotent.
func (f Factors) merge(other Factors, op LogicalOp) Factors {
	out := Factors{entries: make(map[string]factorEntry, len(f.entries)+len(other.entries))}
	for key, entry := range f.entries {
		out.entries[key] = entry
	}
	for key, entry := range other.entries {
		existing, ok := out.entries[key]
		if !ok || Equal(existing.predicate, entry.predicate) {
			out.entries[key] = entry
			continue
		}
		out.entries[key] = factorEntry{
			table:     entry.table,
			predicate: &Logical{op: op, left: existing.predicate, right: entry.predicate},
		}
	}
	return out
}

// primitiveFactors derives the factor map of a non-logical predicate: when
// every column it references originates from exactly one table, the whole
// predicate is that table's factor; otherwise it has none.
func primitiveFactors(p Predicate) Factors {
	tables := OriginTables(p)
	if len(tables) != 1 {
		return Factors{}
	}
	return NewFactors(map[*Table]Predicate{tables[0]: p})
}

// children returns a node's direct children, driving the generic walkers.
func children(n Node) []Node {
	switch t := n.(type) {
	case *Table:
		return nil
	case *Reference:
		return []Node{t.instance}
	case *Join:
		out := []Node{t.left, t.right}
		if t.condition != nil {
			out = append(out, t.condition)
		}
		return out
	case *Set:
		return []Node{t.left, t.right}
	case *Query:
		out := []Node{t.src}
		for _, f := range t.selection {
			out = append(out, f)
		}
		if t.prefilter != nil {
			out = append(out, t.prefilter)
		}
		for _, g := range t.grouping {
			out = append(out, g)
		}
		if t.postfilter != nil {
			out = append(out, t.postfilter)
		}
		for _, o := range t.ordering {
			out = append(out, o.Feature)
		}
		return out
	case *Column:
		return nil
	case *Element:
		return nil
	case *Literal:
		return nil
	case *Aliased:
		return []Node{t.operable}
	case *Aggregate:
		return []Node{t.operand}
	case *Window:
		out := []Node{t.function}
		for _, p := range t.partition {
			out = append(out, p)
		}
		for _, o := range t.ordering {
			out = append(out, o.Feature)
		}
		return out
	case Expression:
		out := make([]Node, 0, len(t.Operands()))
		for _, op := range t.Operands() {
			out = append(out, op)
		}
		return out
	}
	return nil
}

// walkFeatures visits every feature node reachable from the given features
// without descending into sources.
func walkFeatures(visit func(Feature) bool, features ...Feature) {
	var rec func(n Node) bool
	rec = func(n Node) bool {
		if f, ok := n.(Feature); ok {
			if !visit(f) {
				return false
			}
		}
		if _, ok := n.(Source); ok {
			return true
		}
		for _, c := range children(n) {
			if !rec(c) {
				return false
			}
		}
		return true
	}
	for _, f := range features {
		if !rec(f) {
			return
		}
	}
}

// Ground decomposes features into their ground elements - the columns and
// elements they are ultimately built from - deduplicated structurally.
func Ground(features ...Feature) []Feature {
	var out []Feature
	seen := map[string]bool{}
	walkFeatures(func(f Feature) bool {
		switch f.(type) {
		case *Column, *Element:
			if key := Hash(f); !seen[key] {
				seen[key] = true
				out = append(out, f)
			}
		}
		return true
	}, features...)
	return out
}

// OriginTables collects the distinct tables owning the columns referenced by
// the given features. Elements bound to references or sub-queries do not
// contribute - push-down only ever targets concrete tables.
func OriginTables(features ...Feature) []*Table {
	var out []*Table
	seen := map[string]bool{}
	walkFeatures(func(f Feature) bool {
		if c, ok := f.(*Column); ok {
			if key := Hash(c.table); !seen[key] {
				seen[key] = true
				out = append(out, c.table)
			}
		}
		return true
	}, features...)
	sort.Slice(out, func(i, j int) bool { return out[i].Repr() < out[j].Repr() })
	return out
}

// ContainsCumulative reports whether a feature contains any aggregate or
// window sub-expression.
func ContainsCumulative(features ...Feature) bool {
	found := false
	walkFeatures(func(f Feature) bool {
		if _, ok := f.(Cumulative); ok {
			found = true
			return false
		}
		return true
	}, features...)
	return found
}

// ContainsWindow reports whether a feature contains a window sub-expression.
func ContainsWindow(features ...Feature) bool {
	found := false
	walkFeatures(func(f Feature) bool {
		if _, ok := f.(*Window); ok {
			found = true
			return false
		}
		return true
	}, features...)
	return found
}

// subset reports whether the ground decomposition of the given features is
// structurally contained in the superset's ground decomposition.
func subset(superset map[string]bool, features ...Feature) (Feature, bool) {
	for _, g := range Ground(features...) {
		if !superset[Hash(g)] {
			return g, false
		}
	}
	return nil, true
}

// groundSet indexes the ground decomposition of the given features by hash.
func groundSet(features ...Feature) map[string]bool {
	out := map[string]bool{}
	for _, g := range Ground(features...) {
		out[Hash(g)] = true
	}
	return out
}
