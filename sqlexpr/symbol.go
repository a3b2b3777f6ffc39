package sqlexpr

import (
	"fmt"
	"strings"

	"github.com/formlio/relq/dsl"
)

// Symbol is a node of the compiled SQL expression tree. The unexported
// write method seals the interface to this package.
type Symbol interface {
	write(w *writer)
}

// writer accumulates statement text and bind arguments during rendering.
type writer struct {
	sql  strings.Builder
	args []any
}

func (w *writer) text(s string) {
	w.sql.WriteString(s)
}

func (w *writer) bind(value any) {
	w.sql.WriteString("?")
	w.args = append(w.args, value)
}

// fragment writes a nested symbol, parenthesizing sub-selects in source
// position and infix compositions in operand position.
func (w *writer) fragment(s Symbol, parens bool) {
	if parens {
		w.text("(")
		s.write(w)
		w.text(")")
		return
	}
	s.write(w)
}

// Render serializes a compiled symbol into statement text plus its bind
// arguments in placeholder order.
func Render(s Symbol) (string, []any) {
	w := &writer{}
	s.write(w)
	return w.sql.String(), w.args
}

func quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

// Ident is a possibly qualified identifier.
type Ident struct {
	Qualifier string
	Name      string
}

func (s *Ident) write(w *writer) {
	if s.Qualifier != "" {
		w.text(quote(s.Qualifier))
		w.text(".")
	}
	w.text(quote(s.Name))
}

// Param is a bind-argument placeholder.
type Param struct {
	Value any
}

func (s *Param) write(w *writer) {
	w.bind(s.Value)
}

// Infix is a binary operator application.
type Infix struct {
	Op    string
	Left  Symbol
	Right Symbol
}

func (s *Infix) write(w *writer) {
	w.fragment(s.Left, nested(s.Left))
	w.text(" " + s.Op + " ")
	w.fragment(s.Right, nested(s.Right))
}

// nested reports whether an operand needs parentheses to keep precedence.
func nested(s Symbol) bool {
	_, ok := s.(*Infix)
	return ok
}

// Prefix is a unary operator application.
type Prefix struct {
	Op      string
	Operand Symbol
}

func (s *Prefix) write(w *writer) {
	w.text(s.Op + " ")
	w.fragment(s.Operand, nested(s.Operand))
}

// Call is a function application.
type Call struct {
	Name string
	Args []Symbol
}

func (s *Call) write(w *writer) {
	w.text(s.Name + "(")
	for i, a := range s.Args {
		if i > 0 {
			w.text(", ")
		}
		a.write(w)
	}
	w.text(")")
}

// CastExpr converts an operand to an explicit SQL type.
type CastExpr struct {
	Operand Symbol
	Type    string
}

func (s *CastExpr) write(w *writer) {
	w.text("CAST(")
	s.Operand.write(w)
	w.text(" AS " + s.Type + ")")
}

// Extract pulls a date part out of a temporal operand.
type Extract struct {
	Part    string
	Operand Symbol
}

func (s *Extract) write(w *writer) {
	w.text("EXTRACT(" + s.Part + " FROM ")
	s.Operand.write(w)
	w.text(")")
}

// Over applies an aggregate over a window specification.
type Over struct {
	Function  Symbol
	Partition []Symbol
	Ordering  []Symbol
}

func (s *Over) write(w *writer) {
	s.Function.write(w)
	w.text(" OVER (")
	if len(s.Partition) > 0 {
		w.text("PARTITION BY ")
		for i, p := range s.Partition {
			if i > 0 {
				w.text(", ")
			}
			p.write(w)
		}
	}
	if len(s.Ordering) > 0 {
		if len(s.Partition) > 0 {
			w.text(" ")
		}
		w.text("ORDER BY ")
		for i, o := range s.Ordering {
			if i > 0 {
				w.text(", ")
			}
			o.write(w)
		}
	}
	w.text(")")
}

// Sorted attaches a sort direction to a feature.
type Sorted struct {
	Operand    Symbol
	Descending bool
}

func (s *Sorted) write(w *writer) {
	s.Operand.write(w)
	if s.Descending {
		w.text(" DESC")
	} else {
		w.text(" ASC")
	}
}

// Labeled names a feature for output purposes.
type Labeled struct {
	Operand Symbol
	Name    string
}

func (s *Labeled) write(w *writer) {
	s.Operand.write(w)
	w.text(" AS " + quote(s.Name))
}

// TableRel is a base table in source position.
type TableRel struct {
	Name string
}

func (s *TableRel) write(w *writer) {
	w.text(quote(s.Name))
}

// Handle is the bare alias a reference's elements resolve against.
type Handle struct {
	Name string
}

func (s *Handle) write(w *writer) {
	w.text(quote(s.Name))
}

// AliasRel is an aliased source.
type AliasRel struct {
	Instance Symbol
	Name     string
}

func (s *AliasRel) write(w *writer) {
	w.fragment(s.Instance, subselect(s.Instance))
	w.text(" AS " + quote(s.Name))
}

// subselect reports whether a source symbol must be parenthesized when
// embedded in a FROM clause.
func subselect(s Symbol) bool {
	_, ok := s.(*SelectRel)
	return ok
}

// JoinRel combines two sources under a join keyword.
type JoinRel struct {
	Keyword   string
	Left      Symbol
	Right     Symbol
	Condition Symbol
}

func (s *JoinRel) write(w *writer) {
	w.fragment(s.Left, subselect(s.Left))
	w.text(" " + s.Keyword + " ")
	w.fragment(s.Right, subselect(s.Right))
	if s.Condition != nil {
		w.text(" ON ")
		s.Condition.write(w)
	}
}

// CompoundRel combines two sources under a set-operation keyword.
type CompoundRel struct {
	Keyword string
	Left    Symbol
	Right   Symbol
}

func (s *CompoundRel) write(w *writer) {
	w.fragment(s.Left, subselect(s.Left))
	w.text(" " + s.Keyword + " ")
	w.fragment(s.Right, subselect(s.Right))
}

// SelectRel is a full query.
type SelectRel struct {
	Source   Symbol
	Features []Symbol
	Where    Symbol
	GroupBy  []Symbol
	Having   Symbol
	OrderBy  []Symbol
	Rows     *dsl.Rows
}

func (s *SelectRel) write(w *writer) {
	w.text("SELECT ")
	for i, f := range s.Features {
		if i > 0 {
			w.text(", ")
		}
		f.write(w)
	}
	w.text(" FROM ")
	w.fragment(s.Source, subselect(s.Source))
	if s.Where != nil {
		w.text(" WHERE ")
		s.Where.write(w)
	}
	if len(s.GroupBy) > 0 {
		w.text(" GROUP BY ")
		for i, g := range s.GroupBy {
			if i > 0 {
				w.text(", ")
			}
			g.write(w)
		}
	}
	if s.Having != nil {
		w.text(" HAVING ")
		s.Having.write(w)
	}
	if len(s.OrderBy) > 0 {
		w.text(" ORDER BY ")
		for i, o := range s.OrderBy {
			if i > 0 {
				w.text(", ")
			}
			o.write(w)
		}
	}
	if s.Rows != nil {
		if s.Rows.Offset > 0 {
			w.text(fmt.Sprintf(" LIMIT %d OFFSET %d", s.Rows.Count, s.Rows.Offset))
		} else {
			w.text(fmt.Sprintf(" LIMIT %d", s.Rows.Count))
		}
	}
}
