// Package conversation implements the per-user dialogue state machine that
// drives multi-step poll and template creation.
//
// A user has at most one active dialogue. Each dialogue follows one of a
// closed set of wizard shapes (poll creation, template creation, template
// instantiation) and advances one validated step per user message. Invalid
// input rejects the step without losing collected data; expiry or explicit
// cancellation discards the draft and nothing else.
package conversation
