// Package permission implements user permission tiers inside the
// identity-access context.
//
// The module owns user records and the ordered tier ladder use < create <
// admin, where a higher tier implies every lower one. Unknown users are
// registered with the default tier on first touch; tier changes require an
// admin actor.
package permission
