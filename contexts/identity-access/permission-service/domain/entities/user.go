package entities

import "time"

// Tier is one rung of the permission ladder. Ordering is use < create <
// admin; a higher tier grants everything the lower ones do.
type Tier string

const (
	TierUse    Tier = "use"
	TierCreate Tier = "create"
	TierAdmin  Tier = "admin"
)

var tierRank = map[Tier]int{
	TierUse:    0,
	TierCreate: 1,
	TierAdmin:  2,
}

// Known reports whether the tier is part of the ladder.
func (t Tier) Known() bool {
	_, ok := tierRank[t]
	return ok
}

// AtLeast reports whether t sits at or above min on the ladder.
func (t Tier) AtLeast(min Tier) bool {
	return tierRank[t] >= tierRank[min]
}

// User is a chat-platform identity known to the poll system. Users are
// created on first interaction and never deleted while polls or votes
// reference them.
type User struct {
	UserID       string
	Username     string
	Tier         Tier
	LastActivity time.Time
	CreatedAt    time.Time
}
