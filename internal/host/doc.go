// Package host owns the simulated host application around the fifo.
//
// Ownership boundary:
// - generation cycles: init -> produce/consume -> drain -> teardown
// - simulated interrupt source (the single producer)
// - admin HTTP surface
//
// Host never reaches into fifo internals; it holds handles only.
package host
