package domain

import "time"

// Rating bounds accepted on review submission.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a single review submission. Users may review the same book more
// than once; each submission is its own row.
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ISBN      string    `json:"isbn"`
	Rating    int       `json:"rating"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// NewReview builds a review stamped with the current time.
func NewReview(id, userID, isbn string, rating int, body string) *Review {
	return &Review{
		ID:        id,
		UserID:    userID,
		ISBN:      isbn,
		Rating:    rating,
		Body:      body,
		CreatedAt: time.Now(),
	}
}

// ReviewWithUser is a review joined with the reviewer's username for display.
type ReviewWithUser struct {
	Review
	Username string `json:"username"`
}

// RatingSummary holds per-book aggregate statistics.
type RatingSummary struct {
	Count   int     `json:"review_count"`
	Average float64 `json:"average_score"`
}
