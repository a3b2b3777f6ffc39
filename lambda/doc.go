// Package lambda compiles relational DSL trees into chains of closures
// that evaluate directly against in-memory columnar tables, with no
// external execution engine.
//
// Each compiled node captures its children: sources become relations (a
// closure producing a frame of columns), features become columnizers (a
// closure producing one cell from a frame row set). Running the root
// relation replays scan, filter, join, group, project, order and limit
// steps over the feed tables supplied at construction.
//
// Window functions are not supported by this backend.
package lambda
