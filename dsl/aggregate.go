package dsl

import (
	"fmt"

	"github.com/formlio/relq/kind"
)

// AggregateOp enumerates the aggregate functions.
type AggregateOp int

const (
	OpCount AggregateOp = iota
	OpAvg
	OpMin
	OpMax
	OpSum
)

func (o AggregateOp) String() string {
	return [...]string{"count", "avg", "min", "max", "sum"}[o]
}

// Aggregate reduces an operand feature over a group of rows.
type Aggregate struct {
	op      AggregateOp
	operand Operable
	kind    kind.Kind
}

// NewAggregate builds an aggregate over the operand. Count admits any
// operand kind and yields integer; Avg requires a numeric operand and yields
// float; Sum requires a numeric operand and keeps its kind; Min and Max
// admit any operand kind and keep it.
func NewAggregate(op AggregateOp, operand Operable) (*Aggregate, error) {
	if operand == nil {
		return nil, &GrammarError{Message: fmt.Sprintf("%s requires an operand", op)}
	}
	var out kind.Kind
	switch op {
	case OpCount:
		out = kind.Integer
	case OpAvg:
		if !kind.Numeric(operand.Kind()) {
			return nil, grammarf(operand, "avg requires a numeric operand, got %s", operand.Kind().Name())
		}
		out = kind.Float
	case OpSum:
		if !kind.Numeric(operand.Kind()) {
			return nil, grammarf(operand, "sum requires a numeric operand, got %s", operand.Kind().Name())
		}
		out = operand.Kind()
	case OpMin, OpMax:
		out = operand.Kind()
	default:
		return nil, &GrammarError{Message: fmt.Sprintf("unknown aggregate %d", op)}
	}
	return &Aggregate{op: op, operand: operand, kind: out}, nil
}

// Count builds count(operand).
func Count(operand Operable) (*Aggregate, error) { return NewAggregate(OpCount, operand) }

// Avg builds avg(operand).
func Avg(operand Operable) (*Aggregate, error) { return NewAggregate(OpAvg, operand) }

// Min builds min(operand).
func Min(operand Operable) (*Aggregate, error) { return NewAggregate(OpMin, operand) }

// Max builds max(operand).
func Max(operand Operable) (*Aggregate, error) { return NewAggregate(OpMax, operand) }

// Sum builds sum(operand).
func Sum(operand Operable) (*Aggregate, error) { return NewAggregate(OpSum, operand) }

func (a *Aggregate) feature()    {}
func (a *Aggregate) operable()   {}
func (a *Aggregate) cumulative() {}

// Op returns the aggregate function.
func (a *Aggregate) Op() AggregateOp { return a.op }

// Operand returns the reduced feature.
func (a *Aggregate) Operand() Operable { return a.operand }

// Kind returns the aggregate's result kind.
func (a *Aggregate) Kind() kind.Kind { return a.kind }

// Repr returns the structural form of the aggregate.
func (a *Aggregate) Repr() string {
	return fmt.Sprintf("%s(%s)", a.op, a.operand.Repr())
}

func (a *Aggregate) encode(e *encoder) {
	e.open("agg:" + a.op.String())
	e.node(a.operand)
	e.close()
}

// Window evaluates an aggregate function over a row window defined by a
// partition and an ordering instead of a grouping clause.
type Window struct {
	function  *Aggregate
	partition []Operable
	ordering  []Ordering
}

// NewWindow builds a windowed evaluation of the aggregate function.
func NewWindow(function *Aggregate, partition []Operable, ordering []Ordering) (*Window, error) {
	if function == nil {
		return nil, &GrammarError{Message: "window requires an aggregate function"}
	}
	for _, p := range partition {
		if p == nil {
			return nil, grammarf(function, "window partition term is nil")
		}
		if ContainsCumulative(p) {
			return nil, grammarf(p, "window partition must not contain aggregates")
		}
	}
	for _, o := range ordering {
		if o.Feature == nil {
			return nil, grammarf(function, "window ordering term has no feature")
		}
		if ContainsCumulative(o.Feature) {
			return nil, grammarf(o.Feature, "window ordering must not contain aggregates")
		}
	}
	w := &Window{function: function}
	w.partition = append(w.partition, partition...)
	w.ordering = append(w.ordering, ordering...)
	return w, nil
}

func (w *Window) feature()    {}
func (w *Window) operable()   {}
func (w *Window) cumulative() {}

// Function returns the windowed aggregate.
func (w *Window) Function() *Aggregate { return w.function }

// Partition returns the partition terms.
func (w *Window) Partition() []Operable {
	out := make([]Operable, len(w.partition))
	copy(out, w.partition)
	return out
}

// Ordering returns the in-window ordering terms.
func (w *Window) Ordering() []Ordering {
	out := make([]Ordering, len(w.ordering))
	copy(out, w.ordering)
	return out
}

// Kind returns the function's result kind.
func (w *Window) Kind() kind.Kind { return w.function.Kind() }

// Repr returns the structural form of the window.
func (w *Window) Repr() string {
	out := w.function.Repr() + " OVER ("
	for i, p := range w.partition {
		if i > 0 {
			out += ", "
		}
		out += p.Repr()
	}
	for i, o := range w.ordering {
		if i > 0 || len(w.partition) > 0 {
			out += ", "
		}
		out += o.Repr()
	}
	return out + ")"
}

func (w *Window) encode(e *encoder) {
	e.open("window")
	e.node(w.function)
	e.open("partition")
	for _, p := range w.partition {
		e.node(p)
	}
	e.close()
	e.open("ordering")
	for _, o := range w.ordering {
		o.encode(e)
	}
	e.close()
	e.close()
}
