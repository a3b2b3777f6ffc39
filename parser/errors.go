package parser

import (
	"errors"
	"fmt"

	"github.com/formlio/relq/dsl"
)

// ErrDirtyContext reports a scope closed while compiled symbols remained
// unconsumed on its stack. It indicates a traversal bug, not bad input.
var ErrDirtyContext = errors.New("context closed with unconsumed symbols")

// UnprovisionedError reports a node for which no backend symbol exists and
// no structural translation is possible.
type UnprovisionedError struct {
	Node dsl.Node
}

func (e *UnprovisionedError) Error() string {
	return fmt.Sprintf("no symbol provisioned for %s", e.Node.Repr())
}

// IsUnprovisioned reports whether err is an UnprovisionedError.
func IsUnprovisioned(err error) bool {
	var target *UnprovisionedError
	return errors.As(err, &target)
}

// UnsupportedError reports a node shape the backend recognizes but cannot
// encode.
type UnsupportedError struct {
	Construct string
	Node      dsl.Node
}

func (e *UnsupportedError) Error() string {
	if e.Node != nil {
		return fmt.Sprintf("unsupported %s: %s", e.Construct, e.Node.Repr())
	}
	return "unsupported " + e.Construct
}

// IsUnsupported reports whether err is an UnsupportedError.
func IsUnsupported(err error) bool {
	var target *UnsupportedError
	return errors.As(err, &target)
}
