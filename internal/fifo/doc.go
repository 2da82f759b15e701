// Package fifo owns the fixed-capacity command queue and its lifecycle.
//
// Ownership boundary:
// - command message layout and codec
// - single-producer/single-consumer ring and its split views
// - initialize/teardown state machine and handle validation
// - fatal invariant escalation
//
// Lifecycle order:
// - init -> write/read -> teardown
//
// - teardown releases the producer/consumer split; the next init starts a
// fresh generation with an empty ring.
//
// Capacity and payload size are fixed for the lifetime of the process.
package fifo
