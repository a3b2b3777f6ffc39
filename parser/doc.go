// Package parser walks relational DSL trees and drives a pluggable backend
// generator through a post-order traversal.
//
// A Visitor is parameterized over the backend's symbol type. The backend
// implements the Generator hook interface; the visitor owns the traversal
// order, the per-scope symbol stack and the per-table bookkeeping used for
// column projection and filter push-down. Pre-registered symbol maps let a
// backend bypass structural translation for whole sources or individual
// features.
//
// Visitors are single-use and not safe for concurrent use. Independent
// visitors over shared immutable symbol maps may run concurrently.
package parser
