package httptransport

type CheckRequest struct {
	Action string `json:"action"`
}

type DecisionResponse struct {
	Allowed           bool `json:"allowed"`
	Remaining         int  `json:"remaining"`
	RetryAfterSeconds int  `json:"retry_after_seconds"`
}

type FloodStatusResponse struct {
	Flooding bool `json:"flooding"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
