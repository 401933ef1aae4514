package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"puntacana_tours/internal/adapters/observability"
	"puntacana_tours/internal/domain"
)

// Catalog is the data access layer used by controllers and handlers. Each
// call is one round trip to the store. ErrNotFound is passed through as is;
// any other failure is logged and wrapped in *domain.DataAccessError.
type Catalog struct {
	store domain.TourStore
	log   zerolog.Logger
}

func NewCatalog(s domain.TourStore) *Catalog {
	return &Catalog{store: s, log: log.Logger.With().Str("component", "catalog").Logger()}
}

func (c *Catalog) ListTours(ctx context.Context) ([]domain.Tour, error) {
	ts, err := c.store.ListTours(ctx)
	if err != nil {
		return nil, c.fail(ctx, "list tours", err)
	}
	return ts, nil
}

func (c *Catalog) GetTour(ctx context.Context, id int64) (domain.Tour, error) {
	t, err := c.store.GetTour(ctx, id)
	if err != nil {
		return domain.Tour{}, c.fail(ctx, "get tour", err)
	}
	return t, nil
}

func (c *Catalog) CreateTour(ctx context.Context, in domain.NewTour) (domain.Tour, error) {
	t, err := c.store.CreateTour(ctx, in)
	if err != nil {
		return domain.Tour{}, c.fail(ctx, "create tour", err)
	}
	return t, nil
}

func (c *Catalog) ListReviewsForTour(ctx context.Context, tourID int64) ([]domain.Review, error) {
	rs, err := c.store.ListReviewsForTour(ctx, tourID)
	if err != nil {
		return nil, c.fail(ctx, "list reviews", err)
	}
	if rs == nil {
		rs = []domain.Review{}
	}
	return rs, nil
}

func (c *Catalog) CreateReview(ctx context.Context, in domain.NewReview) (domain.Review, error) {
	r, err := c.store.CreateReview(ctx, in)
	if err != nil {
		return domain.Review{}, c.fail(ctx, "create review", err)
	}
	return r, nil
}

func (c *Catalog) fail(ctx context.Context, op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFound
	}
	// a view that went away is not a store failure worth an error line
	if ctx.Err() != nil {
		c.log.Debug().Str("op", op).Err(err).Msg("store call abandoned")
	} else {
		c.log.Error().Str("op", op).Str("err_type", observability.LabelErr(err)).Err(err).Msg("store call failed")
	}
	return &domain.DataAccessError{Op: op, Err: err}
}
