// Package lifecycle decides what an actor may do next in a campaign and how
// participation and submission records move between states.
//
// Everything here is pure: callers pass in record snapshots and the current
// time, and get back a Decision or a transformed copy of a record. Nothing in
// this package performs I/O, reads the wall clock, or mutates its arguments.
package lifecycle
