// Package ratelimit implements the sliding-window rate limiter inside the
// identity-access context.
//
// The module owns per-(user, action) event windows and the allow/deny policy
// that gates state-mutating actions. Check-and-record is atomic per key so a
// concurrent burst can never admit more events than the configured cap.
// Storage concerns stay behind ports: a mutex-guarded memory window for unit
// wiring and a redis sorted-set window for shared deployments.
package ratelimit
