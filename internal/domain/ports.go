package domain

import "context"

// TourStore is the external store holding tours and reviews.
// GetTour returns ErrNotFound when no tour has the given id.
type TourStore interface {
	ListTours(ctx context.Context) ([]Tour, error)
	GetTour(ctx context.Context, id int64) (Tour, error)
	CreateTour(ctx context.Context, t NewTour) (Tour, error)
	ListReviewsForTour(ctx context.Context, tourID int64) ([]Review, error)
	CreateReview(ctx context.Context, r NewReview) (Review, error)
}

// SubmissionLimiter throttles review submissions per client key.
type SubmissionLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
