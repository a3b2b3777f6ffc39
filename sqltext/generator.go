package sqltext

import (
	"fmt"
	"strings"

	"github.com/formlio/relq/dsl"
	"github.com/formlio/relq/kind"
	"github.com/formlio/relq/parser"
)

// Generator renders DSL nodes as SQL text fragments. It is stateless and
// safe to share between visitors.
type Generator struct{}

// Compile renders a source tree as a single SQL statement.
func Compile(root dsl.Source, opts ...parser.Option[string]) (string, error) {
	return parser.Parse[string](root, Generator{}, opts...)
}

// quote renders a double-quoted identifier.
func quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

// operand parenthesizes multi-token fragments so infix composition keeps
// the intended precedence.
func operand(fragment string) string {
	if strings.ContainsRune(fragment, ' ') {
		return "(" + fragment + ")"
	}
	return fragment
}

// source parenthesizes sub-query fragments used in source position.
func source(fragment string) string {
	if strings.HasPrefix(fragment, "SELECT ") {
		return "(" + fragment + ")"
	}
	return fragment
}

// Table renders a table scan. Projection and push-down are left to the
// engine; the narrowed field set and filter are already expressed by the
// enclosing SELECT and WHERE clauses.
func (Generator) Table(t *dsl.Table, _ []dsl.Field, _ *string) (string, error) {
	return quote(t.Name()), nil
}

func (Generator) Reference(instance, name string) (string, string, error) {
	handle := quote(name)
	return source(instance) + " AS " + handle, handle, nil
}

func (Generator) Join(left, right string, condition *string, k dsl.JoinKind) (string, error) {
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
		return "", fmt.Errorf("unknown join kind %v", k)
	}
	out := source(left) + " " + keyword + " " + source(right)
	if condition != nil {
		out += " ON " + *condition
	}
	return out, nil
}

func (Generator) Set(left, right string, k dsl.SetKind) (string, error) {
	var keyword string
	switch k {
	case dsl.UnionSet:
		keyword = "UNION"
	case dsl.IntersectionSet:
		keyword = "INTERSECT"
	case dsl.DifferenceSet:
		keyword = "EXCEPT"
	default:
		return "", fmt.Errorf("unknown set kind %v", k)
	}
	return source(left) + " " + keyword + " " + source(right), nil
}

func (Generator) Query(src string, features []string, where *string, groupby []string,
	having *string, orderby []string, rows *dsl.Rows) (string, error) {
	var out strings.Builder
	out.WriteString("SELECT ")
	out.WriteString(strings.Join(features, ", "))
	out.WriteString(" FROM ")
	out.WriteString(source(src))
	if where != nil {
		out.WriteString(" WHERE ")
		out.WriteString(*where)
	}
	if len(groupby) > 0 {
		out.WriteString(" GROUP BY ")
		out.WriteString(strings.Join(groupby, ", "))
	}
	if having != nil {
		out.WriteString(" HAVING ")
		out.WriteString(*having)
	}
	if len(orderby) > 0 {
		out.WriteString(" ORDER BY ")
		out.WriteString(strings.Join(orderby, ", "))
	}
	if rows != nil {
		if rows.Offset > 0 {
			fmt.Fprintf(&out, " LIMIT %d, %d", rows.Offset, rows.Count)
		} else {
			fmt.Fprintf(&out, " LIMIT %d", rows.Count)
		}
	}
	return out.String(), nil
}

func (Generator) Column(t *dsl.Table, name string) (string, error) {
	return quote(t.Name()) + "." + quote(name), nil
}

func (Generator) Element(origin, name string) (string, error) {
	return origin + "." + quote(name), nil
}

func (Generator) Alias(feature, name string) (string, error) {
	return feature + " AS " + quote(name), nil
}

func (g Generator) Expression(e dsl.Expression, operands []string) (string, error) {
	switch n := e.(type) {
	case *dsl.Arithmetic:
		return operand(operands[0]) + " " + n.Op().Symbol() + " " + operand(operands[1]), nil
	case *dsl.Comparison:
		return operand(operands[0]) + " " + n.Op().Symbol() + " " + operand(operands[1]), nil
	case *dsl.Logical:
		return operand(operands[0]) + " " + n.Op().Symbol() + " " + operand(operands[1]), nil
	case *dsl.Not:
		return "NOT " + operand(operands[0]), nil
	case *dsl.Cast:
		name, err := sqlType(n.To())
		if err != nil {
			return "", err
		}
		return "CAST(" + operands[0] + " AS " + name + ")", nil
	case *dsl.Year:
		return "EXTRACT(YEAR FROM " + operands[0] + ")", nil
	case *dsl.Abs:
		return "abs(" + operands[0] + ")", nil
	case *dsl.Ceil:
		return "ceil(" + operands[0] + ")", nil
	case *dsl.Floor:
		return "floor(" + operands[0] + ")", nil
	}
	return "", &parser.UnsupportedError{Construct: "expression", Node: e}
}

func (Generator) Aggregate(a *dsl.Aggregate, operand string) (string, error) {
	return fmt.Sprintf("%s(%s)", a.Op(), operand), nil
}

func (Generator) Window(_ *dsl.Window, function string, partition, ordering []string) (string, error) {
	var out strings.Builder
	out.WriteString(function)
	out.WriteString(" OVER (")
	if len(partition) > 0 {
		out.WriteString("PARTITION BY ")
		out.WriteString(strings.Join(partition, ", "))
	}
	if len(ordering) > 0 {
		if len(partition) > 0 {
			out.WriteString(" ")
		}
		out.WriteString("ORDER BY ")
		out.WriteString(strings.Join(ordering, ", "))
	}
	out.WriteString(")")
	return out.String(), nil
}

func (Generator) Ordering(feature string, d dsl.Direction) (string, error) {
	if d == dsl.Descending {
		return feature + " DESC", nil
	}
	return feature + " ASC", nil
}

// sqlType maps a kind to its ANSI type name for CAST targets.
func sqlType(k kind.Kind) (string, error) {
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
