// Package pollengine implements the poll lifecycle inside the polling
// context.
//
// The module owns poll definitions, voting-type classification, vote
// recording with supersede semantics, threshold-triggered auto-closure, and
// per-chat decision numbers. Vote writes and closure evaluation run as one
// atomic unit per poll so concurrent votes can never both close a poll or
// double-assign a decision number.
package pollengine
