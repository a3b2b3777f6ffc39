package parser

import (
	"fmt"

	"github.com/formlio/relq/dsl"
)

// tableUse accumulates, per table, which fields the enclosing scope needs
// and which predicate factor can be pushed down to the table scan.
type tableUse struct {
	table  *dsl.Table
	fields map[string]bool
	filter dsl.Predicate
}

// context is one scope frame: a post-order symbol stack plus the per-table
// bookkeeping, reference origins and feature memo local to the scope.
type context[T any] struct {
	symbols []T
	tables  map[string]*tableUse
	origins map[string]T
	memo    map[string]T
}

func newContext[T any]() *context[T] {
	return &context[T]{
		tables:  make(map[string]*tableUse),
		origins: make(map[string]T),
		memo:    make(map[string]T),
	}
}

func (c *context[T]) push(sym T) {
	c.symbols = append(c.symbols, sym)
}

func (c *context[T]) pop() (T, error) {
	if len(c.symbols) == 0 {
		var zero T
		return zero, fmt.Errorf("symbol stack underflow")
	}
	sym := c.symbols[len(c.symbols)-1]
	c.symbols = c.symbols[:len(c.symbols)-1]
	return sym, nil
}

// use returns the bookkeeping entry for a table, creating it on first
// registration.
func (c *context[T]) use(t *dsl.Table) *tableUse {
	key := dsl.Hash(t)
	u, ok := c.tables[key]
	if !ok {
		u = &tableUse{table: t, fields: make(map[string]bool)}
		c.tables[key] = u
	}
	return u
}

// container is the scope stack. Every open must be balanced by a close over
// a clean context.
type container[T any] struct {
	stack []*context[T]
}

func (c *container[T]) open() {
	c.stack = append(c.stack, newContext[T]())
}

func (c *container[T]) close() error {
	if len(c.stack) == 0 {
		return fmt.Errorf("scope stack underflow")
	}
	top := c.stack[len(c.stack)-1]
	if len(top.symbols) != 0 {
		return fmt.Errorf("%w: %d left", ErrDirtyContext, len(top.symbols))
	}
	c.stack = c.stack[:len(c.stack)-1]
	return nil
}

func (c *container[T]) current() *context[T] {
	return c.stack[len(c.stack)-1]
}

// origin resolves a reference handle, searching enclosing scopes from the
// innermost outwards.
func (c *container[T]) origin(key string) (T, bool) {
	for i := len(c.stack) - 1; i >= 0; i-- {
		if sym, ok := c.stack[i].origins[key]; ok {
			return sym, true
		}
	}
	var zero T
	return zero, false
}

// fetch removes and returns the single symbol remaining in the current
// scope. Anything other than exactly one symbol is a traversal bug.
func (c *container[T]) fetch() (T, error) {
	top := c.current()
	if len(top.symbols) != 1 {
		var zero T
		return zero, fmt.Errorf("expected a single compiled symbol, got %d", len(top.symbols))
	}
	return top.pop()
}
