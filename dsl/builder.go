package dsl

// The builder operations below work on any source. Applied to an existing
// query they derive a new one, merging filters and replacing the other
// clauses; applied to any other source they wrap it in a fresh query. All
// validation happens eagerly inside NewQuery, so invalid usage fails at the
// call site.

type parts struct {
	source     Source
	selection  []Feature
	prefilter  Predicate
	grouping   []Operable
	postfilter Predicate
	ordering   []Ordering
	rows       *Rows
}

func decompose(source Source) parts {
	if q, ok := source.(*Query); ok {
		return parts{
			source:     q.src,
			selection:  q.Selection(),
			prefilter:  q.prefilter,
			grouping:   q.Grouping(),
			postfilter: q.postfilter,
			ordering:   q.Ordering(),
			rows:       q.Rows(),
		}
	}
	return parts{source: source}
}

func (p parts) build() (*Query, error) {
	return NewQuery(p.source, p.selection, p.prefilter, p.grouping, p.postfilter, p.ordering, p.rows)
}

// Select derives a query projecting the given features.
func Select(source Source, features ...Feature) (*Query, error) {
	if source == nil {
		return nil, &GrammarError{Message: "select requires a source"}
	}
	if len(features) == 0 {
		return nil, grammarf(source, "select requires at least one feature")
	}
	p := decompose(source)
	p.selection = features
	return p.build()
}

// Where derives a query filtering rows before grouping. Filtering an
// already filtered query conjoins the conditions.
func Where(source Source, filter Predicate) (*Query, error) {
	if source == nil {
		return nil, &GrammarError{Message: "where requires a source"}
	}
	if filter == nil {
		return nil, grammarf(source, "where requires a predicate")
	}
	p := decompose(source)
	if p.prefilter != nil {
		merged, err := And(p.prefilter, filter)
		if err != nil {
			return nil, err
		}
		p.prefilter = merged
	} else {
		p.prefilter = filter
	}
	return p.build()
}

// Having derives a query filtering groups after grouping. Filtering an
// already filtered query conjoins the conditions.
func Having(source Source, filter Predicate) (*Query, error) {
	if source == nil {
		return nil, &GrammarError{Message: "having requires a source"}
	}
	if filter == nil {
		return nil, grammarf(source, "having requires a predicate")
	}
	p := decompose(source)
	if p.postfilter != nil {
		merged, err := And(p.postfilter, filter)
		if err != nil {
			return nil, err
		}
		p.postfilter = merged
	} else {
		p.postfilter = filter
	}
	return p.build()
}

// GroupBy derives a query grouping rows by the given keys.
func GroupBy(source Source, keys ...Operable) (*Query, error) {
	if source == nil {
		return nil, &GrammarError{Message: "groupby requires a source"}
	}
	if len(keys) == 0 {
		return nil, grammarf(source, "groupby requires at least one key")
	}
	p := decompose(source)
	p.grouping = keys
	return p.build()
}

// OrderBy derives a query ordering rows by the given terms, normalized via
// MakeOrdering.
func OrderBy(source Source, terms ...any) (*Query, error) {
	if source == nil {
		return nil, &GrammarError{Message: "orderby requires a source"}
	}
	ordering, err := MakeOrdering(terms...)
	if err != nil {
		return nil, err
	}
	if len(ordering) == 0 {
		return nil, grammarf(source, "orderby requires at least one term")
	}
	p := decompose(source)
	p.ordering = ordering
	return p.build()
}

// Limit derives a query returning at most count rows after skipping offset.
func Limit(source Source, count, offset int) (*Query, error) {
	if source == nil {
		return nil, &GrammarError{Message: "limit requires a source"}
	}
	p := decompose(source)
	p.rows = &Rows{Count: count, Offset: offset}
	return p.build()
}

// Union combines the row sets of two sources keeping distinct rows.
func Union(left, right Source) (*Set, error) {
	return NewSet(left, right, UnionSet)
}

// Intersection keeps the rows present in both sources.
func Intersection(left, right Source) (*Set, error) {
	return NewSet(left, right, IntersectionSet)
}

// Difference keeps the left source's rows absent from the right one.
func Difference(left, right Source) (*Set, error) {
	return NewSet(left, right, DifferenceSet)
}
