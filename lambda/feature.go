package lambda

import (
	"fmt"
	"math"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/formlio/relq/coltab"
	"github.com/formlio/relq/dsl"
	"github.com/formlio/relq/kind"
	"github.com/formlio/relq/parser"
)

func (g Generator) Column(table *dsl.Table, name string) (Symbol, error) {
	key := table.Name() + "." + name
	return &Columnizer{name: name, eval: func(fr *frame, rows []int) (coltab.Value, error) {
		return fr.value(key, rows[0])
	}}, nil
}

func (g Generator) Element(origin Symbol, name string) (Symbol, error) {
	h, ok := origin.(*handle)
	if !ok {
		return nil, fmt.Errorf("expected a reference handle, got %T", origin)
	}
	key := h.name + "." + name
	return &Columnizer{name: name, eval: func(fr *frame, rows []int) (coltab.Value, error) {
		return fr.value(key, rows[0])
	}}, nil
}

func (g Generator) Literal(value any, k kind.Kind) (Symbol, error) {
	v, err := constant(value, k)
	if err != nil {
		return nil, err
	}
	return &Columnizer{eval: func(*frame, []int) (coltab.Value, error) {
		return v, nil
	}}, nil
}

// constant converts a native literal value into an evaluator cell.
func constant(value any, k kind.Kind) (coltab.Value, error) {
	switch v := value.(type) {
	case nil:
		return coltab.Null(), nil
	case bool:
		return coltab.BoolVal(v), nil
	case int64:
		return coltab.IntVal(v), nil
	case float64:
		return coltab.FloatVal(v), nil
	case string:
		return coltab.StrVal(v), nil
	case time.Time:
		return coltab.TimeVal(v), nil
	case *apd.Decimal:
		f, err := v.Float64()
		if err != nil {
			return coltab.Value{}, fmt.Errorf("decimal literal %s overflows the evaluator: %w", v, err)
		}
		return coltab.FloatVal(f), nil
	}
	return coltab.Value{}, &parser.UnsupportedError{
		Construct: fmt.Sprintf("literal of kind %s", k.Name()),
	}
}

func (g Generator) Alias(feature Symbol, name string) (Symbol, error) {
	col, err := asColumnizer(feature)
	if err != nil {
		return nil, err
	}
	return &Columnizer{name: name, cumulative: col.cumulative, eval: col.eval}, nil
}

func (g Generator) Expression(expression dsl.Expression, operands []Symbol) (Symbol, error) {
	cols := make([]*Columnizer, len(operands))
	cumulative := false
	for i, op := range operands {
		col, err := asColumnizer(op)
		if err != nil {
			return nil, err
		}
		cols[i] = col
		cumulative = cumulative || col.cumulative
	}
	eval, err := expressionEval(expression, cols)
	if err != nil {
		return nil, err
	}
	return &Columnizer{cumulative: cumulative, eval: eval}, nil
}

type evalFunc func(fr *frame, rows []int) (coltab.Value, error)

func expressionEval(expression dsl.Expression, cols []*Columnizer) (evalFunc, error) {
	switch x := expression.(type) {
	case *dsl.Arithmetic:
		return arithmeticEval(x, cols[0], cols[1]), nil
	case *dsl.Comparison:
		return comparisonEval(x.Op(), cols[0], cols[1]), nil
	case *dsl.Logical:
		return logicalEval(x.Op(), cols[0], cols[1]), nil
	case *dsl.Not:
		return notEval(cols[0]), nil
	case *dsl.Cast:
		return castEval(x.To(), cols[0]), nil
	case *dsl.Year:
		return yearEval(cols[0]), nil
	case *dsl.Abs:
		return unaryMathEval(cols[0], math.Abs, func(i int64) int64 {
			if i < 0 {
				return -i
			}
			return i
		}), nil
	case *dsl.Ceil:
		return roundingEval(cols[0], math.Ceil), nil
	case *dsl.Floor:
		return roundingEval(cols[0], math.Floor), nil
	}
	return nil, &parser.UnsupportedError{Construct: fmt.Sprintf("expression %T", expression), Node: expression}
}

// arithmeticEval performs integer arithmetic when the expression's kind
// stays integral and float arithmetic otherwise. A null operand yields null.
func arithmeticEval(x *dsl.Arithmetic, left, right *Columnizer) evalFunc {
	integral := x.Kind().Match(kind.Integer)
	op := x.Op()
	return func(fr *frame, rows []int) (coltab.Value, error) {
		lv, rv, err := pair(fr, rows, left, right)
		if err != nil || lv.IsNull() || rv.IsNull() {
			return coltab.Null(), err
		}
		if integral && lv.Type == coltab.TypeInt && rv.Type == coltab.TypeInt {
			return intArithmetic(op, lv.Int, rv.Int)
		}
		lf, lok := lv.AsFloat()
		rf, rok := rv.AsFloat()
		if !lok || !rok {
			return coltab.Value{}, fmt.Errorf("arithmetic over non-numeric operands %v and %v", lv.Type, rv.Type)
		}
		return floatArithmetic(op, lf, rf)
	}
}

func intArithmetic(op dsl.ArithmeticOp, l, r int64) (coltab.Value, error) {
	switch op {
	case dsl.OpAdd:
		return coltab.IntVal(l + r), nil
	case dsl.OpSub:
		return coltab.IntVal(l - r), nil
	case dsl.OpMul:
		return coltab.IntVal(l * r), nil
	case dsl.OpDiv:
		if r == 0 {
			return coltab.Value{}, fmt.Errorf("integer division by zero")
		}
		return coltab.IntVal(l / r), nil
	case dsl.OpMod:
		if r == 0 {
			return coltab.Value{}, fmt.Errorf("integer modulo by zero")
		}
		return coltab.IntVal(l % r), nil
	}
	return coltab.Value{}, fmt.Errorf("unknown arithmetic operator %v", op)
}

func floatArithmetic(op dsl.ArithmeticOp, l, r float64) (coltab.Value, error) {
	switch op {
	case dsl.OpAdd:
		return coltab.FloatVal(l + r), nil
	case dsl.OpSub:
		return coltab.FloatVal(l - r), nil
	case dsl.OpMul:
		return coltab.FloatVal(l * r), nil
	case dsl.OpDiv:
		return coltab.FloatVal(l / r), nil
	case dsl.OpMod:
		return coltab.FloatVal(math.Mod(l, r)), nil
	}
	return coltab.Value{}, fmt.Errorf("unknown arithmetic operator %v", op)
}

func comparisonEval(op dsl.ComparisonOp, left, right *Columnizer) evalFunc {
	return func(fr *frame, rows []int) (coltab.Value, error) {
		lv, rv, err := pair(fr, rows, left, right)
		if err != nil || lv.IsNull() || rv.IsNull() {
			return coltab.Null(), err
		}
		cmp := lv.Compare(rv)
		var out bool
		switch op {
		case dsl.OpEq:
			out = cmp == 0
		case dsl.OpNe:
			out = cmp != 0
		case dsl.OpLt:
			out = cmp < 0
		case dsl.OpLe:
			out = cmp <= 0
		case dsl.OpGt:
			out = cmp > 0
		case dsl.OpGe:
			out = cmp >= 0
		default:
			return coltab.Value{}, fmt.Errorf("unknown comparison operator %v", op)
		}
		return coltab.BoolVal(out), nil
	}
}

func logicalEval(op dsl.LogicalOp, left, right *Columnizer) evalFunc {
	return func(fr *frame, rows []int) (coltab.Value, error) {
		lv, rv, err := pair(fr, rows, left, right)
		if err != nil {
			return coltab.Value{}, err
		}
		lb, lok := lv.AsBool()
		rb, rok := rv.AsBool()
		if !lok || !rok {
			return coltab.Value{}, fmt.Errorf("logical operator over non-boolean operands %v and %v", lv.Type, rv.Type)
		}
		if op == dsl.OpAnd {
			return coltab.BoolVal(lb && rb), nil
		}
		return coltab.BoolVal(lb || rb), nil
	}
}

func notEval(operand *Columnizer) evalFunc {
	return func(fr *frame, rows []int) (coltab.Value, error) {
		v, err := operand.eval(fr, rows)
		if err != nil {
			return coltab.Value{}, err
		}
		b, ok := v.AsBool()
		if !ok {
			return coltab.Value{}, fmt.Errorf("negation of a non-boolean %v", v.Type)
		}
		return coltab.BoolVal(!b), nil
	}
}

// castEval converts through the kind system's native representations so the
// evaluator casts exactly as literals are typed.
func castEval(to kind.Kind, operand *Columnizer) evalFunc {
	return func(fr *frame, rows []int) (coltab.Value, error) {
		v, err := operand.eval(fr, rows)
		if err != nil || v.IsNull() {
			return coltab.Null(), err
		}
		out, err := to.Cast(native(v))
		if err != nil {
			return coltab.Value{}, err
		}
		return constant(out, to)
	}
}

// native unwraps a cell back into the kind system's value space.
func native(v coltab.Value) any {
	switch v.Type {
	case coltab.TypeInt:
		return v.Int
	case coltab.TypeFloat:
		return v.Float
	case coltab.TypeString:
		return v.Str
	case coltab.TypeBool:
		return v.Bool
	case coltab.TypeTime:
		return v.Time
	}
	return nil
}

func yearEval(operand *Columnizer) evalFunc {
	return func(fr *frame, rows []int) (coltab.Value, error) {
		v, err := operand.eval(fr, rows)
		if err != nil || v.IsNull() {
			return coltab.Null(), err
		}
		if v.Type != coltab.TypeTime {
			return coltab.Value{}, fmt.Errorf("year extraction over a non-temporal %v", v.Type)
		}
		return coltab.IntVal(int64(v.Time.Year())), nil
	}
}

// unaryMathEval keeps integers integral and applies the float form
// otherwise.
func unaryMathEval(operand *Columnizer, ffn func(float64) float64, ifn func(int64) int64) evalFunc {
	return func(fr *frame, rows []int) (coltab.Value, error) {
		v, err := operand.eval(fr, rows)
		if err != nil || v.IsNull() {
			return coltab.Null(), err
		}
		if v.Type == coltab.TypeInt {
			return coltab.IntVal(ifn(v.Int)), nil
		}
		f, ok := v.AsFloat()
		if !ok {
			return coltab.Value{}, fmt.Errorf("numeric function over a non-numeric %v", v.Type)
		}
		return coltab.FloatVal(ffn(f)), nil
	}
}

// roundingEval truncates to an integral result.
func roundingEval(operand *Columnizer, fn func(float64) float64) evalFunc {
	return func(fr *frame, rows []int) (coltab.Value, error) {
		v, err := operand.eval(fr, rows)
		if err != nil || v.IsNull() {
			return coltab.Null(), err
		}
		if v.Type == coltab.TypeInt {
			return v, nil
		}
		f, ok := v.AsFloat()
		if !ok {
			return coltab.Value{}, fmt.Errorf("numeric function over a non-numeric %v", v.Type)
		}
		return coltab.IntVal(int64(fn(f))), nil
	}
}

func pair(fr *frame, rows []int, left, right *Columnizer) (coltab.Value, coltab.Value, error) {
	lv, err := left.eval(fr, rows)
	if err != nil {
		return coltab.Value{}, coltab.Value{}, err
	}
	rv, err := right.eval(fr, rows)
	if err != nil {
		return coltab.Value{}, coltab.Value{}, err
	}
	return lv, rv, nil
}

func (g Generator) Aggregate(aggregate *dsl.Aggregate, operand Symbol) (Symbol, error) {
	col, err := asColumnizer(operand)
	if err != nil {
		return nil, err
	}
	op := aggregate.Op()
	integral := aggregate.Kind().Match(kind.Integer)
	return &Columnizer{cumulative: true, eval: func(fr *frame, rows []int) (coltab.Value, error) {
		return accumulate(op, integral, col, fr, rows)
	}}, nil
}

// accumulate folds the operand over a group. Nulls do not contribute; an
// empty fold yields 0 for counts and null otherwise.
func accumulate(op dsl.AggregateOp, integral bool, col *Columnizer, fr *frame, rows []int) (coltab.Value, error) {
	var (
		count    int64
		sumInt   int64
		sumFloat float64
		best     coltab.Value
	)
	for _, r := range rows {
		v, err := col.eval(fr, []int{r})
		if err != nil {
			return coltab.Value{}, err
		}
		if v.IsNull() {
			continue
		}
		count++
		switch op {
		case dsl.OpCount:
		case dsl.OpMin:
			if count == 1 || v.Compare(best) < 0 {
				best = v
			}
		case dsl.OpMax:
			if count == 1 || v.Compare(best) > 0 {
				best = v
			}
		default:
			f, ok := v.AsFloat()
			if !ok {
				return coltab.Value{}, fmt.Errorf("aggregate %s over a non-numeric %v", op, v.Type)
			}
			sumFloat += f
			if v.Type == coltab.TypeInt {
				sumInt += v.Int
			}
		}
	}
	switch op {
	case dsl.OpCount:
		return coltab.IntVal(count), nil
	case dsl.OpMin, dsl.OpMax:
		if count == 0 {
			return coltab.Null(), nil
		}
		return best, nil
	case dsl.OpAvg:
		if count == 0 {
			return coltab.Null(), nil
		}
		return coltab.FloatVal(sumFloat / float64(count)), nil
	case dsl.OpSum:
		if count == 0 {
			return coltab.Null(), nil
		}
		if integral {
			return coltab.IntVal(sumInt), nil
		}
		return coltab.FloatVal(sumFloat), nil
	}
	return coltab.Value{}, fmt.Errorf("unknown aggregate operator %v", op)
}

func (g Generator) Window(window *dsl.Window, function Symbol, partition, ordering []Symbol) (Symbol, error) {
	return nil, &parser.UnsupportedError{Construct: "window function", Node: window}
}

func (g Generator) Ordering(feature Symbol, direction dsl.Direction) (Symbol, error) {
	col, err := asColumnizer(feature)
	if err != nil {
		return nil, err
	}
	return &sorter{col: col, descending: direction == dsl.Descending}, nil
}
