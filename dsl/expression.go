package dsl

import (
	"fmt"

	"github.com/formlio/relq/kind"
)

// ArithmeticOp enumerates the arithmetic operators.
type ArithmeticOp int

const (
	OpAdd ArithmeticOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
)

// Symbol returns the operator's infix spelling.
func (o ArithmeticOp) Symbol() string {
	return [...]string{"+", "-", "*", "/", "%"}[o]
}

func (o ArithmeticOp) String() string {
	return [...]string{"add", "sub", "mul", "div", "mod"}[o]
}

// Arithmetic is a binary numeric operator feature. Both operands must be
// numeric; the result kind is the widest of the two.
type Arithmetic struct {
	op    ArithmeticOp
	left  Operable
	right Operable
	kind  kind.Kind
}

// NewArithmetic builds an arithmetic expression, enforcing numeric operands.
func NewArithmetic(op ArithmeticOp, left, right Operable) (*Arithmetic, error) {
	if left == nil || right == nil {
		return nil, &GrammarError{Message: fmt.Sprintf("%s requires two operands", op)}
	}
	if !kind.Numeric(left.Kind()) {
		return nil, grammarf(left, "%s requires numeric operands, got %s", op, left.Kind().Name())
	}
	if !kind.Numeric(right.Kind()) {
		return nil, grammarf(right, "%s requires numeric operands, got %s", op, right.Kind().Name())
	}
	widest, err := kind.Widest(left.Kind(), right.Kind())
	if err != nil {
		return nil, grammarf(left, "%s: %v", op, err)
	}
	return &Arithmetic{op: op, left: left, right: right, kind: widest}, nil
}

// Add builds left + right.
func Add(left, right Operable) (*Arithmetic, error) { return NewArithmetic(OpAdd, left, right) }

// Sub builds left - right.
func Sub(left, right Operable) (*Arithmetic, error) { return NewArithmetic(OpSub, left, right) }

// Mul builds left * right.
func Mul(left, right Operable) (*Arithmetic, error) { return NewArithmetic(OpMul, left, right) }

// Div builds left / right.
func Div(left, right Operable) (*Arithmetic, error) { return NewArithmetic(OpDiv, left, right) }

// Mod builds left % right.
func Mod(left, right Operable) (*Arithmetic, error) { return NewArithmetic(OpMod, left, right) }

func (x *Arithmetic) feature()    {}
func (x *Arithmetic) operable()   {}
func (x *Arithmetic) expression() {}

// Op returns the operator.
func (x *Arithmetic) Op() ArithmeticOp { return x.op }

// Operands returns the two operands in order.
func (x *Arithmetic) Operands() []Operable { return []Operable{x.left, x.right} }

// Kind returns the widest operand kind.
func (x *Arithmetic) Kind() kind.Kind { return x.kind }

// Repr returns the structural form of the expression.
func (x *Arithmetic) Repr() string {
	return fmt.Sprintf("(%s %s %s)", x.left.Repr(), x.op.Symbol(), x.right.Repr())
}

func (x *Arithmetic) encode(e *encoder) {
	e.open("arith:" + x.op.String())
	e.node(x.left)
	e.node(x.right)
	e.close()
}

// ComparisonOp enumerates the comparison operators.
type ComparisonOp int

const (
	OpEq ComparisonOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// Symbol returns the operator's infix spelling.
func (o ComparisonOp) Symbol() string {
	return [...]string{"=", "!=", "<", "<=", ">", ">="}[o]
}

func (o ComparisonOp) String() string {
	return [...]string{"eq", "ne", "lt", "le", "gt", "ge"}[o]
}

// Comparison is a binary boolean operator feature. Operands must either be
// all numeric or of identical kinds.
type Comparison struct {
	op    ComparisonOp
	left  Operable
	right Operable
}

// NewComparison builds a comparison, enforcing operand kind compatibility.
func NewComparison(op ComparisonOp, left, right Operable) (*Comparison, error) {
	if left == nil || right == nil {
		return nil, &GrammarError{Message: fmt.Sprintf("%s requires two operands", op)}
	}
	if kind.Numeric(left.Kind()) && kind.Numeric(right.Kind()) {
		return &Comparison{op: op, left: left, right: right}, nil
	}
	if !left.Kind().Match(right.Kind()) {
		return nil, grammarf(left, "%s requires numeric or identical operand kinds, got %s and %s",
			op, left.Kind().Name(), right.Kind().Name())
	}
	return &Comparison{op: op, left: left, right: right}, nil
}

// Eq builds left = right.
func Eq(left, right Operable) (*Comparison, error) { return NewComparison(OpEq, left, right) }

// Ne builds left != right.
func Ne(left, right Operable) (*Comparison, error) { return NewComparison(OpNe, left, right) }

// Lt builds left < right.
func Lt(left, right Operable) (*Comparison, error) { return NewComparison(OpLt, left, right) }

// Le builds left <= right.
func Le(left, right Operable) (*Comparison, error) { return NewComparison(OpLe, left, right) }

// Gt builds left > right.
func Gt(left, right Operable) (*Comparison, error) { return NewComparison(OpGt, left, right) }

// Ge builds left >= right.
func Ge(left, right Operable) (*Comparison, error) { return NewComparison(OpGe, left, right) }

func (x *Comparison) feature()    {}
func (x *Comparison) operable()   {}
func (x *Comparison) expression() {}

// Op returns the operator.
func (x *Comparison) Op() ComparisonOp { return x.op }

// Operands returns the two operands in order.
func (x *Comparison) Operands() []Operable { return []Operable{x.left, x.right} }

// Kind returns boolean.
func (x *Comparison) Kind() kind.Kind { return kind.Boolean }

// Factors returns the single-table decomposition of the comparison.
func (x *Comparison) Factors() Factors { return primitiveFactors(x) }

// Repr returns the structural form of the comparison.
func (x *Comparison) Repr() string {
	return fmt.Sprintf("%s %s %s", x.left.Repr(), x.op.Symbol(), x.right.Repr())
}

func (x *Comparison) encode(e *encoder) {
	e.open("cmp:" + x.op.String())
	e.node(x.left)
	e.node(x.right)
	e.close()
}

// LogicalOp enumerates the binary logical operators.
type LogicalOp int

const (
	OpAnd LogicalOp = iota
	OpOr
)

// Symbol returns the operator's infix spelling.
func (o LogicalOp) Symbol() string {
	return [...]string{"AND", "OR"}[o]
}

func (o LogicalOp) String() string {
	return [...]string{"and", "or"}[o]
}

// Logical conjoins or disjoins two predicates. Operand kinds are boolean by
// construction - the Predicate type admits only boolean-kinded features.
type Logical struct {
	op    LogicalOp
	left  Predicate
	right Predicate
}

// NewLogical builds a logical composition of two predicates.
func NewLogical(op LogicalOp, left, right Predicate) (*Logical, error) {
	if left == nil || right == nil {
		return nil, &GrammarError{Message: fmt.Sprintf("%s requires two predicates", op)}
	}
	return &Logical{op: op, left: left, right: right}, nil
}

// And builds left AND right.
func And(left, right Predicate) (*Logical, error) { return NewLogical(OpAnd, left, right) }

// Or builds left OR right.
func Or(left, right Predicate) (*Logical, error) { return NewLogical(OpOr, left, right) }

func (x *Logical) feature()    {}
func (x *Logical) operable()   {}
func (x *Logical) expression() {}

// Op returns the operator.
func (x *Logical) Op() LogicalOp { return x.op }

// Operands returns the two operands in order.
func (x *Logical) Operands() []Operable { return []Operable{x.left, x.right} }

// Kind returns boolean.
func (x *Logical) Kind() kind.Kind { return kind.Boolean }

// Factors merges the operand factor maps per table: AND combines with And,
// OR with Or.
func (x *Logical) Factors() Factors {
	return x.left.Factors().merge(x.right.Factors(), x.op)
}

// Repr returns the structural form of the composition.
func (x *Logical) Repr() string {
	return fmt.Sprintf("(%s %s %s)", x.left.Repr(), x.op.Symbol(), x.right.Repr())
}

func (x *Logical) encode(e *encoder) {
	e.open("logic:" + x.op.String())
	e.node(x.left)
	e.node(x.right)
	e.close()
}

// Not negates a predicate.
type Not struct {
	operand Predicate
}

// NewNot builds NOT operand.
func NewNot(operand Predicate) (*Not, error) {
	if operand == nil {
		return nil, &GrammarError{Message: "not requires a predicate"}
	}
	return &Not{operand: operand}, nil
}

func (x *Not) feature()    {}
func (x *Not) operable()   {}
func (x *Not) expression() {}

// Operands returns the single operand.
func (x *Not) Operands() []Operable { return []Operable{x.operand} }

// Kind returns boolean.
func (x *Not) Kind() kind.Kind { return kind.Boolean }

// Factors returns the single-table decomposition of the negation.
func (x *Not) Factors() Factors { return primitiveFactors(x) }

// Repr returns the structural form of the negation.
func (x *Not) Repr() string { return "NOT " + x.operand.Repr() }

func (x *Not) encode(e *encoder) {
	e.open("not")
	e.node(x.operand)
	e.close()
}

// Cast converts a feature to an explicit target kind.
type Cast struct {
	operand  Operable
	to       kind.Kind
}

// NewCast builds a kind conversion of the given feature.
func NewCast(operable Operable, to kind.Kind) (*Cast, error) {
	if operable == nil {
		return nil, &GrammarError{Message: "cast requires a feature"}
	}
	if to == nil {
		return nil, grammarf(operable, "cast requires a target kind")
	}
	return &Cast{operand: operable, to: to}, nil
}

func (x *Cast) feature()    {}
func (x *Cast) operable()   {}
func (x *Cast) expression() {}

// To returns the target kind.
func (x *Cast) To() kind.Kind { return x.to }

// Operands returns the single operand.
func (x *Cast) Operands() []Operable { return []Operable{x.operand} }

// Kind returns the target kind.
func (x *Cast) Kind() kind.Kind { return x.to }

// Repr returns the structural form of the cast.
func (x *Cast) Repr() string {
	return fmt.Sprintf("cast(%s AS %s)", x.operand.Repr(), x.to.Name())
}

func (x *Cast) encode(e *encoder) {
	e.open("cast")
	e.node(x.operand)
	e.atom(x.to.Name())
	e.close()
}

// Year extracts the calendar year of a date or timestamp feature.
type Year struct {
	operand  Operable
}

// NewYear builds the year extraction, enforcing a temporal operand.
func NewYear(operable Operable) (*Year, error) {
	if operable == nil {
		return nil, &GrammarError{Message: "year requires a feature"}
	}
	if !operable.Kind().Match(kind.Date) && !operable.Kind().Match(kind.Timestamp) {
		return nil, grammarf(operable, "year requires a date or timestamp operand, got %s", operable.Kind().Name())
	}
	return &Year{operand: operable}, nil
}

func (x *Year) feature()    {}
func (x *Year) operable()   {}
func (x *Year) expression() {}

// Operands returns the single operand.
func (x *Year) Operands() []Operable { return []Operable{x.operand} }

// Kind returns integer.
func (x *Year) Kind() kind.Kind { return kind.Integer }

// Repr returns the structural form of the extraction.
func (x *Year) Repr() string { return fmt.Sprintf("year(%s)", x.operand.Repr()) }

func (x *Year) encode(e *encoder) {
	e.open("year")
	e.node(x.operand)
	e.close()
}

// Abs is the absolute value of a numeric feature, keeping its kind.
type Abs struct {
	operand  Operable
}

// NewAbs builds the absolute value, enforcing a numeric operand.
func NewAbs(operable Operable) (*Abs, error) {
	if operable == nil {
		return nil, &GrammarError{Message: "abs requires a feature"}
	}
	if !kind.Numeric(operable.Kind()) {
		return nil, grammarf(operable, "abs requires a numeric operand, got %s", operable.Kind().Name())
	}
	return &Abs{operand: operable}, nil
}

func (x *Abs) feature()    {}
func (x *Abs) operable()   {}
func (x *Abs) expression() {}

// Operands returns the single operand.
func (x *Abs) Operands() []Operable { return []Operable{x.operand} }

// Kind returns the operand kind.
func (x *Abs) Kind() kind.Kind { return x.operand.Kind() }

// Repr returns the structural form.
func (x *Abs) Repr() string { return fmt.Sprintf("abs(%s)", x.operand.Repr()) }

func (x *Abs) encode(e *encoder) {
	e.open("abs")
	e.node(x.operand)
	e.close()
}

// Ceil rounds a numeric feature up to an integer.
type Ceil struct {
	operand  Operable
}

// NewCeil builds the rounding, enforcing a numeric operand.
func NewCeil(operable Operable) (*Ceil, error) {
	if operable == nil {
		return nil, &GrammarError{Message: "ceil requires a feature"}
	}
	if !kind.Numeric(operable.Kind()) {
		return nil, grammarf(operable, "ceil requires a numeric operand, got %s", operable.Kind().Name())
	}
	return &Ceil{operand: operable}, nil
}

func (x *Ceil) feature()    {}
func (x *Ceil) operable()   {}
func (x *Ceil) expression() {}

// Operands returns the single operand.
func (x *Ceil) Operands() []Operable { return []Operable{x.operand} }

// Kind returns integer.
func (x *Ceil) Kind() kind.Kind { return kind.Integer }

// Repr returns the structural form.
func (x *Ceil) Repr() string { return fmt.Sprintf("ceil(%s)", x.operand.Repr()) }

func (x *Ceil) encode(e *encoder) {
	e.open("ceil")
	e.node(x.operand)
	e.close()
}

// Floor rounds a numeric feature down to an integer.
type Floor struct {
	operand  Operable
}

// NewFloor builds the rounding, enforcing a numeric operand.
func NewFloor(operable Operable) (*Floor, error) {
	if operable == nil {
		return nil, &GrammarError{Message: "floor requires a feature"}
	}
	if !kind.Numeric(operable.Kind()) {
		return nil, grammarf(operable, "floor requires a numeric operand, got %s", operable.Kind().Name())
	}
	return &Floor{operand: operable}, nil
}

func (x *Floor) feature()    {}
func (x *Floor) operable()   {}
func (x *Floor) expression() {}

// Operands returns the single operand.
func (x *Floor) Operands() []Operable { return []Operable{x.operand} }

// Kind returns integer.
func (x *Floor) Kind() kind.Kind { return kind.Integer }

// Repr returns the structural form.
func (x *Floor) Repr() string { return fmt.Sprintf("floor(%s)", x.operand.Repr()) }

func (x *Floor) encode(e *encoder) {
	e.open("floor")
	e.node(x.operand)
	e.close()
}
