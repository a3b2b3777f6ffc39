package sqlexpr

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"

	"github.com/formlio/relq/dsl"
	"github.com/formlio/relq/kind"
	"github.com/formlio/relq/parser"
)

// Generator builds SQL expression trees from DSL nodes. Stateless.
type Generator struct{}

var _ parser.Generator[Symbol] = Generator{}

// Compile translates a source tree into an expression tree ready for
// rendering.
func Compile(root dsl.Source, opts ...parser.Option[Symbol]) (Symbol, error) {
	return parser.Parse[Symbol](root, Generator{}, opts...)
}

func (Generator) Table(t *dsl.Table, _ []dsl.Field, _ *Symbol) (Symbol, error) {
	return &TableRel{Name: t.Name()}, nil
}

func (Generator) Reference(instance Symbol, name string) (Symbol, Symbol, error) {
	return &AliasRel{Instance: instance, Name: name}, &Handle{Name: name}, nil
}

func (Generator) Join(left, right Symbol, condition *Symbol, k dsl.JoinKind) (Symbol, error) {
	var keyword string
	switch k {
	case dsl.InnerJoin:
		keyword = "JOIN"
	case dsl.LeftJoin:
		keyword = "LEFT JOIN"
	case dsl.RightJoin:
		keyword = "RIGHT JOIN"
	case dsl.FullJoin:
		keyword = "FULL JOIN"
	case dsl.CrossJoin:
		keyword = "CROSS JOIN"
	default:
		return nil, fmt.Errorf("unknown join kind %v", k)
	}
	join := &JoinRel{Keyword: keyword, Left: left, Right: right}
	if condition != nil {
		join.Condition = *condition
	}
	return join, nil
}

func (Generator) Set(left, right Symbol, k dsl.SetKind) (Symbol, error) {
	var keyword string
	switch k {
	case dsl.UnionSet:
		keyword = "UNION"
	case dsl.IntersectionSet:
		keyword = "INTERSECT"
	case dsl.DifferenceSet:
		keyword = "EXCEPT"
	default:
		return nil, fmt.Errorf("unknown set kind %v", k)
	}
	return &CompoundRel{Keyword: keyword, Left: left, Right: right}, nil
}

func (Generator) Query(source Symbol, features []Symbol, where *Symbol, groupby []Symbol,
	having *Symbol, orderby []Symbol, rows *dsl.Rows) (Symbol, error) {
	q := &SelectRel{Source: source, Features: features, GroupBy: groupby,
		OrderBy: orderby, Rows: rows}
	if where != nil {
		q.Where = *where
	}
	if having != nil {
		q.Having = *having
	}
	return q, nil
}

func (Generator) Column(t *dsl.Table, name string) (Symbol, error) {
	return &Ident{Qualifier: t.Name(), Name: name}, nil
}

func (Generator) Element(origin Symbol, name string) (Symbol, error) {
	handle, ok := origin.(*Handle)
	if !ok {
		return nil, fmt.Errorf("element origin is not a reference handle")
	}
	return &Ident{Qualifier: handle.Name, Name: name}, nil
}

// Literal binds the constant as a statement argument, converting values
// database/sql drivers do not accept natively.
func (Generator) Literal(value any, k kind.Kind) (Symbol, error) {
	switch {
	case kind.Decimal.Match(k):
		return &Param{Value: value.(*apd.Decimal).Text('f')}, nil
	case kind.Boolean.Match(k), kind.Integer.Match(k), kind.Float.Match(k),
		kind.String.Match(k), kind.Date.Match(k), kind.Timestamp.Match(k):
		return &Param{Value: value}, nil
	}
	return nil, &parser.UnsupportedError{Construct: "literal kind " + k.Name()}
}

func (Generator) Alias(feature Symbol, name string) (Symbol, error) {
	return &Labeled{Operand: feature, Name: name}, nil
}

func (Generator) Expression(e dsl.Expression, operands []Symbol) (Symbol, error) {
	switch n := e.(type) {
	case *dsl.Arithmetic:
		return &Infix{Op: n.Op().Symbol(), Left: operands[0], Right: operands[1]}, nil
	case *dsl.Comparison:
		return &Infix{Op: n.Op().Symbol(), Left: operands[0], Right: operands[1]}, nil
	case *dsl.Logical:
		return &Infix{Op: n.Op().Symbol(), Left: operands[0], Right: operands[1]}, nil
	case *dsl.Not:
		return &Prefix{Op: "NOT", Operand: operands[0]}, nil
	case *dsl.Cast:
		name, err := castType(n.To())
		if err != nil {
			return nil, err
		}
		return &CastExpr{Operand: operands[0], Type: name}, nil
	case *dsl.Year:
		return &Extract{Part: "YEAR", Operand: operands[0]}, nil
	case *dsl.Abs:
		return &Call{Name: "abs", Args: operands}, nil
	case *dsl.Ceil:
		return &Call{Name: "ceil", Args: operands}, nil
	case *dsl.Floor:
		return &Call{Name: "floor", Args: operands}, nil
	}
	return nil, &parser.UnsupportedError{Construct: "expression", Node: e}
}

func (Generator) Aggregate(a *dsl.Aggregate, operand Symbol) (Symbol, error) {
	return &Call{Name: a.Op().String(), Args: []Symbol{operand}}, nil
}

func (Generator) Window(_ *dsl.Window, function Symbol, partition, ordering []Symbol) (Symbol, error) {
	return &Over{Function: function, Partition: partition, Ordering: ordering}, nil
}

func (Generator) Ordering(feature Symbol, d dsl.Direction) (Symbol, error) {
	return &Sorted{Operand: feature, Descending: d == dsl.Descending}, nil
}

func castType(k kind.Kind) (string, error) {
	switch {
	case kind.Boolean.Match(k):
		return "BOOLEAN", nil
	case kind.Integer.Match(k):
		return "BIGINT", nil
	case kind.Float.Match(k):
		return "DOUBLE", nil
	case kind.Decimal.Match(k):
		return "DECIMAL", nil
	case kind.String.Match(k):
		return "VARCHAR", nil
	case kind.Date.Match(k):
		return "DATE", nil
	case kind.Timestamp.Match(k):
		return "TIMESTAMP", nil
	}
	return "", &parser.UnsupportedError{Construct: "cast target kind " + k.Name()}
}
