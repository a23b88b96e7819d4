package core

import "time"

// Content is one stored exchange with the generative collaborator: the
// user's prompt and the text produced for it.
type Content struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Query     string    `json:"query"`
	Body      string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
