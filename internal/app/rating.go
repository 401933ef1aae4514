package app

import (
	"math"

	"puntacana_tours/internal/domain"
)

// AverageRating is the mean rating rounded to one decimal; 0 for no reviews.
func AverageRating(rs []domain.Review) float64 {
	if len(rs) == 0 {
		return 0
	}
	sum := 0
	for _, r := range rs {
		sum += r.Rating
	}
	return math.Round(float64(sum)/float64(len(rs))*10) / 10
}

// StarCount rounds a rating to the number of filled stars, within 0..5.
func StarCount(avg float64) int {
	n := int(math.Round(avg))
	if n < 0 {
		return 0
	}
	if n > domain.MaxRating {
		return domain.MaxRating
	}
	return n
}
