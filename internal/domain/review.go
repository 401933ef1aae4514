package domain

import "time"

const (
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = 5
)

type Review struct {
	ID        int64     `json:"id"`
	TourID    int64     `json:"tour_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// NewReview is the insert payload for a visitor review.
type NewReview struct {
	TourID   int64  `json:"tour_id"`
	UserName string `json:"user_name"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}
