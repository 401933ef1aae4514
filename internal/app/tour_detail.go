package app

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"puntacana_tours/internal/domain"
)

// ReviewForm is the visitor's review input as typed.
type ReviewForm struct {
	UserName string
	Rating   int
	Comment  string
}

// EmptyReviewForm is the form after a reset.
func EmptyReviewForm() ReviewForm { return ReviewForm{Rating: domain.DefaultRating} }

// TourDetail holds the detail page state for one tour. Create one per page view.
type TourDetail struct {
	catalog *Catalog
	tourID  int64

	State      ViewState
	Submitting bool
	Tour       domain.Tour
	Reviews    []domain.Review
	Form       ReviewForm
	FormErr    *domain.ValidationError
	ImageIndex int
	Notice     *Notice
}

func NewTourDetail(c *Catalog, tourID int64) *TourDetail {
	return &TourDetail{catalog: c, tourID: tourID, State: StateLoading, Form: EmptyReviewForm()}
}

// Load fetches the tour and its reviews concurrently and waits for both.
// A missing tour wins over any reviews outcome. Results are dropped when ctx
// is done before both calls return.
func (d *TourDetail) Load(ctx context.Context) error {
	d.State = StateLoading

	var (
		tour       domain.Tour
		reviews    []domain.Review
		tourErr    error
		reviewsErr error
	)
	// plain Group: one failing fetch must not cancel the other
	var g errgroup.Group
	g.Go(func() error {
		tour, tourErr = d.catalog.GetTour(ctx, d.tourID)
		return nil
	})
	g.Go(func() error {
		reviews, reviewsErr = d.catalog.ListReviewsForTour(ctx, d.tourID)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	switch {
	case errors.Is(tourErr, domain.ErrNotFound):
		d.State = StateNotFound
		d.Reviews = nil
		return domain.ErrNotFound
	case tourErr != nil:
		d.fail()
		return tourErr
	case reviewsErr != nil:
		d.fail()
		return reviewsErr
	}

	d.Tour = tour
	d.Reviews = reviews
	d.ImageIndex = 0
	d.State = StateReady
	return nil
}

func (d *TourDetail) fail() {
	d.State = StateFailed
	d.Reviews = nil
	d.Notice = errorNotice(KeyTourLoadFailed)
}

// SubmitReview validates the form and writes the review. On success the
// stored review is put at the head of Reviews and the form is reset; on any
// failure the form keeps what the visitor typed.
func (d *TourDetail) SubmitReview(ctx context.Context, f ReviewForm) error {
	d.Form = f
	d.FormErr = nil

	in, err := ValidateReview(d.tourID, f)
	if err != nil {
		_ = errors.As(err, &d.FormErr)
		d.Notice = errorNotice(KeyReviewInvalid)
		return err
	}

	d.Submitting = true
	created, err := d.catalog.CreateReview(ctx, in)
	d.Submitting = false
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		d.Notice = errorNotice(KeyReviewFailed)
		return err
	}

	d.Reviews = append([]domain.Review{created}, d.Reviews...)
	d.Form = EmptyReviewForm()
	d.Notice = successNotice(KeyReviewSubmitted)
	return nil
}

// Throttled records a submission refused before reaching the store.
func (d *TourDetail) Throttled(f ReviewForm) {
	d.Form = f
	d.Notice = errorNotice(KeyReviewThrottled)
}

// ValidateReview trims the form and checks it. It returns a
// *domain.ValidationError naming every rejected field.
func ValidateReview(tourID int64, f ReviewForm) (domain.NewReview, error) {
	in := domain.NewReview{
		TourID:   tourID,
		UserName: strings.TrimSpace(f.UserName),
		Rating:   f.Rating,
		Comment:  strings.TrimSpace(f.Comment),
	}
	v := &domain.ValidationError{}
	if in.UserName == "" {
		v.Add("user_name", "required")
	}
	if in.Comment == "" {
		v.Add("comment", "required")
	}
	if in.Rating < domain.MinRating || in.Rating > domain.MaxRating {
		v.Add("rating", "must be between 1 and 5")
	}
	if err := v.OrNil(); err != nil {
		return domain.NewReview{}, err
	}
	return in, nil
}

// SelectImage moves the gallery to image i, clamped to the available images.
func (d *TourDetail) SelectImage(i int) {
	n := len(d.Tour.ImageURLs)
	if n == 0 || i < 0 {
		d.ImageIndex = 0
		return
	}
	d.ImageIndex = min(i, n-1)
}

func (d *TourDetail) Average() float64 { return AverageRating(d.Reviews) }

func (d *TourDetail) AverageStars() int { return StarCount(d.Average()) }
