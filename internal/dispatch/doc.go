// Package dispatch owns the consumer side of the command queue.
//
// Ownership boundary:
// - command id -> handler registry
// - polling drain loop over one fifo handle
// - per-message outcome accounting
//
// The loop is the only reader of its handle. It never blocks on an empty
// queue; it sleeps until the next poll tick.
package dispatch
