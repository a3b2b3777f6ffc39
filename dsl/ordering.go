package dsl

import (
	"fmt"
	"strings"
)

// Direction orders rows ascending or descending.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "descending"
	}
	return "ascending"
}

// ParseDirection normalizes a direction token: "asc", "ascending", "desc"
// and "descending" in any case resolve to the two Direction values.
func ParseDirection(token string) (Direction, error) {
	switch strings.ToLower(token) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return Ascending, &GrammarError{Message: fmt.Sprintf("unknown ordering direction %q", token)}
}

// Ordering pairs a feature with a sort direction.
type Ordering struct {
	Feature   Operable
	Direction Direction
}

// Repr returns the structural form of the ordering term.
func (o Ordering) Repr() string {
	return o.Feature.Repr() + " " + o.Direction.String()
}

func (o Ordering) encode(e *encoder) {
	e.open("order:" + o.Direction.String())
	e.node(o.Feature)
	e.close()
}

// MakeOrdering normalizes a flattened sequence of ordering terms. Accepted
// items are bare operable features (defaulting to ascending), Ordering
// values, and Direction values or direction strings applying to the feature
// immediately preceding them:
//
//	MakeOrdering(class, score, "desc")
//
// orders by class ascending, then score descending.
func MakeOrdering(terms ...any) ([]Ordering, error) {
	var out []Ordering
	for _, term := range terms {
		switch t := term.(type) {
		case Ordering:
			if t.Feature == nil {
				return nil, &GrammarError{Message: "ordering term has no feature"}
			}
			out = append(out, t)
		case Operable:
			out = append(out, Ordering{Feature: t, Direction: Ascending})
		case Direction:
			if len(out) == 0 {
				return nil, &GrammarError{Message: "ordering direction without a preceding feature"}
			}
			out[len(out)-1].Direction = t
		case string:
			if len(out) == 0 {
				return nil, &GrammarError{Message: "ordering direction without a preceding feature"}
			}
			d, err := ParseDirection(t)
			if err != nil {
				return nil, err
			}
			out[len(out)-1].Direction = d
		default:
			return nil, &GrammarError{Message: fmt.Sprintf("unexpected ordering term %T", term)}
		}
	}
	return out, nil
}
