package httptransport

import "time"

type GrantTierRequest struct {
	UserID string `json:"user_id"`
	Tier   string `json:"tier"`
}

type TouchUserRequest struct {
	Username string `json:"username,omitempty"`
}

type TierResponse struct {
	UserID string `json:"user_id"`
	Tier   string `json:"tier"`
}

type UserResponse struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Tier         string    `json:"tier"`
	LastActivity time.Time `json:"last_activity"`
	CreatedAt    time.Time `json:"created_at"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
