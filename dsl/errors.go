package dsl

import (
	"errors"
	"fmt"
)

// GrammarError reports a structurally invalid DSL construction: a feature
// that is not a subset of its source, a wrong operand kind, a name
// collision. It is always raised at construction time, before any parsing
// happens, and is never recovered - it indicates a programming error in DSL
// usage.
type GrammarError struct {
	// Node is the structural repr of the offending node, when one exists.
	Node string

	// Message describes the violated rule.
	Message string
}

// Error implements the error interface.
func (e *GrammarError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("dsl: %s: %s", e.Node, e.Message)
	}
	return fmt.Sprintf("dsl: %s", e.Message)
}

// IsGrammar reports whether err is a grammar error. Uses errors.As to handle
// wrapped errors.
func IsGrammar(err error) bool {
	var ge *GrammarError
	return errors.As(err, &ge)
}

// grammarf builds a GrammarError tagged with the node's structural repr.
func grammarf(node Node, format string, args ...any) *GrammarError {
	repr := ""
	if node != nil {
		repr = node.Repr()
	}
	return &GrammarError{Node: repr, Message: fmt.Sprintf(format, args...)}
}
