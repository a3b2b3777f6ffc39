package lambda

import (
	"github.com/formlio/relq/coltab"
)

// Symbol is a compiled node of the closure backend. The unexported marker
// seals the interface to this package.
type Symbol interface {
	symbol()
}

// Relation is a compiled source: running it produces a frame.
type Relation struct {
	label string
	run   func() (*frame, error)
}

func (*Relation) symbol() {}

// Label identifies the relation for diagnostics.
func (r *Relation) Label() string { return r.label }

// Columnizer is a compiled feature: a closure producing one cell from a
// frame row set. Scalar features read the first row; cumulative features
// consume the whole set.
type Columnizer struct {
	name       string
	cumulative bool
	eval       func(fr *frame, rows []int) (coltab.Value, error)
}

func (*Columnizer) symbol() {}

// Name returns the feature's output name, empty when anonymous.
func (c *Columnizer) Name() string { return c.name }

// handle is the resolvable origin registered for a reference.
type handle struct {
	name string
}

func (*handle) symbol() {}

// sorter pairs a compiled feature with its sort direction.
type sorter struct {
	col        *Columnizer
	descending bool
}

func (*sorter) symbol() {}
