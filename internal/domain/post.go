package domain

// PostTextRequest is the body of POST /api/x/post-text. Handle and Subject are
// optional; when both are present the daily ledger applies.
type PostTextRequest struct {
	Text    string `json:"text" validate:"max=2000"`
	Handle  string `json:"handle,omitempty" validate:"omitempty,max=16"`
	Subject string `json:"subject,omitempty" validate:"omitempty,max=100"`
}

// MentionRequest is the body of POST /api/x/on-this-day-mention.
type MentionRequest struct {
	Handle string `json:"handle" validate:"required,max=16"`
	Name   string `json:"name" validate:"required,max=100"`
}

type PostResult struct {
	OK      bool   `json:"ok"`
	TweetID string `json:"tweet_id"`
	Text    string `json:"text"`
}

// XUser is the subset of an X user object the proxy returns.
type XUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}
