package parser

import (
	"fmt"

	"github.com/formlio/relq/dsl"
	"github.com/formlio/relq/kind"
)

// Generator is the backend hook interface. The visitor compiles children
// first and hands the backend their symbols; each hook returns the symbol
// for the parent node.
type Generator[T any] interface {
	// Table produces the symbol for a table scan. The fields are the
	// schema-ordered subset the enclosing scope actually references and
	// the filter is the compiled push-down predicate factored out for
	// this table; backends free to over-deliver may ignore either.
	Table(table *dsl.Table, fields []dsl.Field, filter *T) (T, error)

	// Reference produces the aliased form of an instance symbol together
	// with the bare handle that element lookups resolve against.
	Reference(instance T, name string) (origin T, handle T, err error)

	// Join combines two source symbols. The condition is nil for cross
	// joins.
	Join(left, right T, condition *T, kind dsl.JoinKind) (T, error)

	// Set combines two source symbols under a set operation.
	Set(left, right T, kind dsl.SetKind) (T, error)

	// Query assembles a full query from its compiled clauses. Optional
	// clauses arrive nil and empty slices mean the clause is absent.
	Query(source T, features []T, where *T, groupby []T, having *T,
		orderby []T, rows *dsl.Rows) (T, error)

	// Column produces the symbol for a direct table column.
	Column(table *dsl.Table, name string) (T, error)

	// Element produces the symbol for a named element of a reference
	// handle.
	Element(origin T, name string) (T, error)

	// Literal encodes a constant of the given kind.
	Literal(value any, kind kind.Kind) (T, error)

	// Alias names a compiled feature for output purposes.
	Alias(feature T, name string) (T, error)

	// Expression combines compiled operand symbols under an operator
	// node.
	Expression(expression dsl.Expression, operands []T) (T, error)

	// Aggregate applies an aggregation function to a compiled operand.
	Aggregate(aggregate *dsl.Aggregate, operand T) (T, error)

	// Window applies an aggregation over a window specification.
	Window(window *dsl.Window, function T, partition []T, ordering []T) (T, error)

	// Ordering attaches a sort direction to a compiled feature.
	Ordering(feature T, direction dsl.Direction) (T, error)
}

// Option configures a Visitor.
type Option[T any] func(*Visitor[T])

// WithSources pre-registers backend symbols for whole sources. A mapped
// source is pushed verbatim instead of being translated structurally.
func WithSources[T any](m SourceMap[T]) Option[T] {
	return func(v *Visitor[T]) { v.sources = m }
}

// WithFeatures pre-registers backend symbols for individual features.
func WithFeatures[T any](m FeatureMap[T]) Option[T] {
	return func(v *Visitor[T]) { v.features = m }
}

// Visitor drives a post-order traversal of a source tree, delegating node
// translation to a Generator. A visitor compiles one tree; it is not safe
// for concurrent use.
type Visitor[T any] struct {
	gen      Generator[T]
	sources  SourceMap[T]
	features FeatureMap[T]
	state    container[T]
}

// New builds a visitor around the given backend.
func New[T any](gen Generator[T], opts ...Option[T]) *Visitor[T] {
	v := &Visitor[T]{gen: gen}
	for _, opt := range opts {
		opt(v)
	}
	v.state.open()
	return v
}

// Parse compiles a source tree in one call: visit the root, fetch the
// single resulting symbol.
func Parse[T any](root dsl.Source, gen Generator[T], opts ...Option[T]) (T, error) {
	v := New(gen, opts...)
	if err := v.Visit(root); err != nil {
		var zero T
		return zero, err
	}
	return v.Fetch()
}

// Visit compiles a source tree, leaving its symbol on the visitor's stack.
func (v *Visitor[T]) Visit(root dsl.Source) error {
	return v.visitSource(root)
}

// Fetch removes and returns the compiled symbol. It fails unless exactly
// one symbol remains.
func (v *Visitor[T]) Fetch() (T, error) {
	return v.state.fetch()
}

func (v *Visitor[T]) visitSource(s dsl.Source) error {
	if sym, ok := v.sources.get(s); ok {
		v.state.current().push(sym)
		return nil
	}
	switch n := s.(type) {
	case *dsl.Table:
		return v.visitTable(n)
	case *dsl.Reference:
		return v.visitReference(n)
	case *dsl.Join:
		return v.visitJoin(n)
	case *dsl.Set:
		return v.visitSet(n)
	case *dsl.Query:
		return v.visitQuery(n)
	}
	return fmt.Errorf("unknown source node %s", s.Repr())
}

func (v *Visitor[T]) visitTable(t *dsl.Table) error {
	fields, factor := v.state.current().projection(t)
	var filter *T
	if factor != nil {
		sym, err := v.compile(factor)
		if err != nil {
			return err
		}
		filter = &sym
	}
	sym, err := v.gen.Table(t, fields, filter)
	if err != nil {
		return err
	}
	v.state.current().push(sym)
	return nil
}

// projection resolves which fields of a table the scope references and the
// predicate factor pushed down to it. An unregistered table scans whole.
func (c *context[T]) projection(t *dsl.Table) ([]dsl.Field, dsl.Predicate) {
	u, ok := c.tables[dsl.Hash(t)]
	if !ok || len(u.fields) == 0 {
		return t.Schema().Fields(), nil
	}
	var fields []dsl.Field
	for _, f := range t.Schema().Fields() {
		if u.fields[f.Name] {
			fields = append(fields, f)
		}
	}
	return fields, u.filter
}

func (v *Visitor[T]) visitReference(r *dsl.Reference) error {
	// Elements address the instance through the reference handle, so the
	// instance must expose its full feature set.
	v.register(r.Instance().Features()...)
	if err := v.visitSource(r.Instance()); err != nil {
		return err
	}
	instance, err := v.state.current().pop()
	if err != nil {
		return err
	}
	origin, handle, err := v.gen.Reference(instance, r.Name())
	if err != nil {
		return err
	}
	v.state.current().origins[dsl.Hash(r)] = handle
	v.state.current().push(origin)
	return nil
}

func (v *Visitor[T]) visitJoin(j *dsl.Join) error {
	if cond := j.Condition(); cond != nil {
		v.register(cond)
	}
	if err := v.visitSource(j.Left()); err != nil {
		return err
	}
	if err := v.visitSource(j.Right()); err != nil {
		return err
	}
	right, err := v.state.current().pop()
	if err != nil {
		return err
	}
	left, err := v.state.current().pop()
	if err != nil {
		return err
	}
	var condition *T
	if cond := j.Condition(); cond != nil {
		sym, err := v.compile(cond)
		if err != nil {
			return err
		}
		condition = &sym
	}
	sym, err := v.gen.Join(left, right, condition, j.Kind())
	if err != nil {
		return err
	}
	v.state.current().push(sym)
	return nil
}

func (v *Visitor[T]) visitSet(s *dsl.Set) error {
	if err := v.visitSource(s.Left()); err != nil {
		return err
	}
	if err := v.visitSource(s.Right()); err != nil {
		return err
	}
	right, err := v.state.current().pop()
	if err != nil {
		return err
	}
	left, err := v.state.current().pop()
	if err != nil {
		return err
	}
	sym, err := v.gen.Set(left, right, s.Kind())
	if err != nil {
		return err
	}
	v.state.current().push(sym)
	return nil
}

func (v *Visitor[T]) visitQuery(q *dsl.Query) error {
	v.state.open()

	for _, f := range q.Features() {
		v.register(f)
	}
	for _, g := range q.Grouping() {
		v.register(g)
	}
	for _, o := range q.Ordering() {
		v.register(o.Feature)
	}
	if p := q.Prefilter(); p != nil {
		v.register(p)
		v.pushdown(p)
	}
	if p := q.Postfilter(); p != nil {
		v.register(p)
	}

	sym, err := v.compileQuery(q)
	if err != nil {
		return err
	}
	if err := v.state.close(); err != nil {
		return err
	}
	v.state.current().push(sym)
	return nil
}

func (v *Visitor[T]) compileQuery(q *dsl.Query) (T, error) {
	var zero T
	if err := v.visitSource(q.Source()); err != nil {
		return zero, err
	}
	source, err := v.state.current().pop()
	if err != nil {
		return zero, err
	}

	features := make([]T, 0, len(q.Features()))
	for _, f := range q.Features() {
		sym, err := v.compile(f)
		if err != nil {
			return zero, err
		}
		features = append(features, sym)
	}

	var where *T
	if p := q.Prefilter(); p != nil {
		sym, err := v.compile(p)
		if err != nil {
			return zero, err
		}
		where = &sym
	}

	var groupby []T
	for _, g := range q.Grouping() {
		sym, err := v.compile(g)
		if err != nil {
			return zero, err
		}
		groupby = append(groupby, sym)
	}

	var having *T
	if p := q.Postfilter(); p != nil {
		sym, err := v.compile(p)
		if err != nil {
			return zero, err
		}
		having = &sym
	}

	var orderby []T
	for _, o := range q.Ordering() {
		feature, err := v.compile(o.Feature)
		if err != nil {
			return zero, err
		}
		sym, err := v.gen.Ordering(feature, o.Direction)
		if err != nil {
			return zero, err
		}
		orderby = append(orderby, sym)
	}

	return v.gen.Query(source, features, where, groupby, having, orderby, q.Rows())
}

// register records the table columns a feature grounds to, so the table
// visit can project down to the referenced field set.
func (v *Visitor[T]) register(features ...dsl.Feature) {
	scope := v.state.current()
	for _, g := range dsl.Ground(features...) {
		if c, ok := g.(*dsl.Column); ok {
			scope.use(c.Table()).fields[c.Name()] = true
		}
	}
}

// pushdown records scan-level filters from the prefilter's top-level
// conjuncts. A conjunct is pushed only when its factor map collapses to a
// single table and that factor is the conjunct itself: a disjunction
// spanning tables keeps rows through either side, so neither branch alone
// may filter a scan. The full predicate still runs in the WHERE clause.
func (v *Visitor[T]) pushdown(p dsl.Predicate) {
	scope := v.state.current()
	for _, conjunct := range conjuncts(p) {
		factors := conjunct.Factors()
		if factors.Len() != 1 {
			continue
		}
		t := factors.Tables()[0]
		factor, _ := factors.Get(t)
		if !dsl.Equal(factor, conjunct) {
			continue
		}
		u := scope.use(t)
		if u.filter == nil {
			u.filter = factor
			continue
		}
		merged, err := dsl.And(u.filter, factor)
		if err == nil {
			u.filter = merged
		}
	}
}

// conjuncts flattens a predicate's top-level AND composition.
func conjuncts(p dsl.Predicate) []dsl.Predicate {
	if l, ok := p.(*dsl.Logical); ok && l.Op() == dsl.OpAnd {
		ops := l.Operands()
		left, lok := ops[0].(dsl.Predicate)
		right, rok := ops[1].(dsl.Predicate)
		if lok && rok {
			return append(conjuncts(left), conjuncts(right)...)
		}
	}
	return []dsl.Predicate{p}
}

func (v *Visitor[T]) compile(f dsl.Feature) (T, error) {
	var zero T
	if sym, ok := v.features.get(f); ok {
		return sym, nil
	}
	scope := v.state.current()
	key := dsl.Hash(f)
	if sym, ok := scope.memo[key]; ok {
		return sym, nil
	}

	var sym T
	var err error
	switch n := f.(type) {
	case *dsl.Column:
		sym, err = v.gen.Column(n.Table(), n.Name())
	case *dsl.Element:
		handle, ok := v.state.origin(dsl.Hash(n.Origin()))
		if !ok {
			return zero, &UnprovisionedError{Node: n}
		}
		sym, err = v.gen.Element(handle, n.Name())
	case *dsl.Literal:
		sym, err = v.gen.Literal(n.Value(), n.Kind())
	case *dsl.Aliased:
		var operand T
		operand, err = v.compile(n.Operable())
		if err == nil {
			sym, err = v.gen.Alias(operand, n.Name())
		}
	case *dsl.Aggregate:
		var operand T
		operand, err = v.compile(n.Operand())
		if err == nil {
			sym, err = v.gen.Aggregate(n, operand)
		}
	case *dsl.Window:
		sym, err = v.compileWindow(n)
	case dsl.Expression:
		operands := n.Operands()
		compiled := make([]T, 0, len(operands))
		for _, o := range operands {
			var c T
			c, err = v.compile(o)
			if err != nil {
				return zero, err
			}
			compiled = append(compiled, c)
		}
		sym, err = v.gen.Expression(n, compiled)
	default:
		return zero, fmt.Errorf("unknown feature node %s", f.Repr())
	}
	if err != nil {
		return zero, err
	}
	scope.memo[key] = sym
	return sym, nil
}

func (v *Visitor[T]) compileWindow(w *dsl.Window) (T, error) {
	var zero T
	function, err := v.compile(w.Function())
	if err != nil {
		return zero, err
	}
	var partition []T
	for _, p := range w.Partition() {
		sym, err := v.compile(p)
		if err != nil {
			return zero, err
		}
		partition = append(partition, sym)
	}
	var ordering []T
	for _, o := range w.Ordering() {
		feature, err := v.compile(o.Feature)
		if err != nil {
			return zero, err
		}
		sym, err := v.gen.Ordering(feature, o.Direction)
		if err != nil {
			return zero, err
		}
		ordering = append(ordering, sym)
	}
	return v.gen.Window(w, function, partition, ordering)
}
