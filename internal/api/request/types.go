package request

// CreateSessionRequest is the request body for starting a quiz session. A
// missing user id issues a new identity.
type CreateSessionRequest struct {
	UserID      string `json:"userId,omitempty"`
	DisplayName string `json:"displayName"`
}

// GuessRequest is the request body for guessing in a quiz session
type GuessRequest struct {
	Guess string `json:"guess"`
}

// SubmitScoreRequest documents the leaderboard submission body. It is parsed
// by ParseSubmitScore rather than decoded directly so that wrong JSON types can
// be rejected.
type SubmitScoreRequest struct {
	UserID      string `json:"userId"`
	TotalTime   int64  `json:"totalTime"`
	Penalties   int64  `json:"penalties"`
	DisplayName string `json:"displayName,omitempty"`
}
