// Package kind implements the DSL's own value type model, distinct from any
// Go runtime type.
//
// Kinds split into two families:
//
//   - Primitives: Boolean, Integer, Float, Decimal, String, Date, Timestamp.
//     Each primitive is a process-wide singleton ordered by a numeric rank.
//     The rank picks the widest type when mixed numeric operands meet in an
//     arithmetic expression.
//   - Compounds: Array (element kind), Map (key and value kinds) and Struct
//     (ordered named fields). Compounds are equal structurally, by their
//     parameters, never by instance identity.
//
// Every kind can Cast an arbitrary native value into its own native
// representation, failing with a *CastError on conversion failure. Reflect
// runs the rules in reverse and infers the kind of a native value.
//
// The frame and feature layers compare kinds pervasively while type checking
// expressions, so Match must hold for two kinds obtained at different call
// sites: primitives are interned and compounds compare structurally.
package kind
