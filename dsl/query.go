package dsl

import "fmt"

// Rows is an optional row-limit spec: at most Count rows, skipping Offset.
type Rows struct {
	Count  int
	Offset int
}

// Query is the generic statement node: a source with optional selection,
// filters, grouping, ordering and a row limit.
type Query struct {
	src        Source
	selection  []Feature
	prefilter  Predicate
	grouping   []Operable
	postfilter Predicate
	ordering   []Ordering
	rows       *Rows
}

// NewQuery builds a statement over the source, eagerly enforcing the
// structural invariants:
//
//   - selection, grouping, prefilter, postfilter and every ordering target
//     must each decompose into a subset of the source's features;
//   - prefilter and grouping must not contain aggregates, postfilter must
//     not contain window functions;
//   - with a non-empty grouping, every selected feature that is not itself
//     a grouping key must contain an aggregate.
func NewQuery(source Source, selection []Feature, prefilter Predicate, grouping []Operable,
	postfilter Predicate, ordering []Ordering, rows *Rows) (*Query, error) {
	if source == nil {
		return nil, &GrammarError{Message: "query requires a source"}
	}
	superset := groundSet(source.Features()...)

	for _, f := range selection {
		if f == nil {
			return nil, grammarf(source, "query selection contains a nil feature")
		}
		if missing, ok := subset(superset, f); !ok {
			return nil, grammarf(missing, "selected feature is foreign to the query source")
		}
	}
	if prefilter != nil {
		if missing, ok := subset(superset, prefilter); !ok {
			return nil, grammarf(missing, "prefilter references a feature foreign to the query source")
		}
		if ContainsCumulative(prefilter) {
			return nil, grammarf(prefilter, "prefilter must not contain aggregates")
		}
	}
	for _, g := range grouping {
		if g == nil {
			return nil, grammarf(source, "query grouping contains a nil feature")
		}
		if missing, ok := subset(superset, g); !ok {
			return nil, grammarf(missing, "grouping key is foreign to the query source")
		}
		if ContainsCumulative(g) {
			return nil, grammarf(g, "grouping key must not contain aggregates")
		}
	}
	if postfilter != nil {
		if missing, ok := subset(superset, postfilter); !ok {
			return nil, grammarf(missing, "postfilter references a feature foreign to the query source")
		}
		if ContainsWindow(postfilter) {
			return nil, grammarf(postfilter, "postfilter must not contain window functions")
		}
	}
	for _, o := range ordering {
		if o.Feature == nil {
			return nil, grammarf(source, "query ordering contains a nil feature")
		}
		if missing, ok := subset(superset, o.Feature); !ok {
			return nil, grammarf(missing, "ordering target is foreign to the query source")
		}
	}
	if rows != nil {
		if rows.Count <= 0 {
			return nil, grammarf(source, "row limit count must be positive, got %d", rows.Count)
		}
		if rows.Offset < 0 {
			return nil, grammarf(source, "row limit offset must not be negative, got %d", rows.Offset)
		}
	}

	q := &Query{src: source, prefilter: prefilter, postfilter: postfilter}
	q.selection = append(q.selection, selection...)
	q.grouping = append(q.grouping, grouping...)
	q.ordering = append(q.ordering, ordering...)
	if rows != nil {
		r := *rows
		q.rows = &r
	}

	if len(grouping) > 0 {
		for _, f := range q.Features() {
			target := f
			if a, ok := f.(*Aliased); ok {
				target = a.operable
			}
			grouped := false
			for _, g := range grouping {
				if Equal(g, target) {
					grouped = true
					break
				}
			}
			if !grouped && !ContainsCumulative(f) {
				return nil, grammarf(f, "selected feature is neither a grouping key nor an aggregate")
			}
		}
	}
	return q, nil
}

func (q *Query) source() {}

// Source returns the underlying source.
func (q *Query) Source() Source { return q.src }

// Selection returns the selected features.
func (q *Query) Selection() []Feature {
	out := make([]Feature, len(q.selection))
	copy(out, q.selection)
	return out
}

// Prefilter returns the row filter applied before grouping, nil when absent.
func (q *Query) Prefilter() Predicate { return q.prefilter }

// Grouping returns the grouping keys.
func (q *Query) Grouping() []Operable {
	out := make([]Operable, len(q.grouping))
	copy(out, q.grouping)
	return out
}

// Postfilter returns the group filter applied after grouping, nil when
// absent.
func (q *Query) Postfilter() Predicate { return q.postfilter }

// Ordering returns the ordering terms.
func (q *Query) Ordering() []Ordering {
	out := make([]Ordering, len(q.ordering))
	copy(out, q.ordering)
	return out
}

// Rows returns the row limit, nil when absent.
func (q *Query) Rows() *Rows {
	if q.rows == nil {
		return nil
	}
	r := *q.rows
	return &r
}

// Features returns the selection when present, the source's features
// otherwise.
func (q *Query) Features() []Feature {
	if len(q.selection) > 0 {
		return q.Selection()
	}
	return q.src.Features()
}

// Repr returns the structural form of the query.
func (q *Query) Repr() string { return fmt.Sprintf("query(%s)", q.src.Repr()) }

func (q *Query) encode(e *encoder) {
	e.open("query")
	e.node(q.src)
	e.open("select")
	for _, f := range q.selection {
		e.node(f)
	}
	e.close()
	e.node(q.prefilter)
	e.open("groupby")
	for _, g := range q.grouping {
		e.node(g)
	}
	e.close()
	e.node(q.postfilter)
	e.open("orderby")
	for _, o := range q.ordering {
		o.encode(e)
	}
	e.close()
	if q.rows != nil {
		e.open("rows")
		e.int(int64(q.rows.Count))
		e.int(int64(q.rows.Offset))
		e.close()
	} else {
		e.buf.WriteString("()")
	}
	e.close()
}
