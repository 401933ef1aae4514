package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"puntacana_tours/internal/adapters/observability"
	"puntacana_tours/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func valJSON(v []string) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Repo implements domain.TourStore on database/sql.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) ListTours(ctx context.Context) (_ []domain.Tour, err error) {
	defer observe("list_tours", time.Now(), &err)

	rows, err := r.db.QueryContext(ctx, listToursSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Tour{}
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetTour(ctx context.Context, id int64) (_ domain.Tour, err error) {
	defer observe("get_tour", time.Now(), &err)
	return r.getTour(ctx, id)
}

func (r *Repo) getTour(ctx context.Context, id int64) (domain.Tour, error) {
	t, err := scanTour(r.db.QueryRowContext(ctx, getTourSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Tour{}, domain.ErrNotFound
	}
	return t, err
}

func (r *Repo) CreateTour(ctx context.Context, in domain.NewTour) (_ domain.Tour, err error) {
	defer observe("create_tour", time.Now(), &err)

	images := in.ImageURLs
	if images == nil {
		images = []string{}
	}
	imgs, err := valJSON(images)
	if err != nil {
		return domain.Tour{}, err
	}
	incl, err := valJSON(in.Includes)
	if err != nil {
		return domain.Tour{}, err
	}
	res, err := r.db.ExecContext(ctx, insertTourSQL,
		in.Name,
		in.Description,
		in.Price,
		in.Location,
		imgs,
		valStr(in.Duration),
		incl,
	)
	if err != nil {
		return domain.Tour{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Tour{}, err
	}
	// read back to pick up the store-assigned timestamp
	t, err := r.getTour(ctx, id)
	if err != nil {
		return domain.Tour{}, fmt.Errorf("read back tour %d: %w", id, err)
	}
	return t, nil
}

func (r *Repo) ListReviewsForTour(ctx context.Context, tourID int64) (_ []domain.Review, err error) {
	defer observe("list_reviews", time.Now(), &err)

	rows, err := r.db.QueryContext(ctx, listReviewsSQL, tourID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) CreateReview(ctx context.Context, in domain.NewReview) (_ domain.Review, err error) {
	defer observe("create_review", time.Now(), &err)

	res, err := r.db.ExecContext(ctx, insertReviewSQL, in.TourID, in.UserName, in.Rating, in.Comment)
	if err != nil {
		return domain.Review{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Review{}, err
	}
	rv, err := scanReview(r.db.QueryRowContext(ctx, getReviewSQL, id))
	if err != nil {
		return domain.Review{}, fmt.Errorf("read back review %d: %w", id, err)
	}
	return rv, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTour(s scanner) (domain.Tour, error) {
	var (
		t            domain.Tour
		imagesJSON   []byte
		includesJSON []byte
		duration     sql.NullString
	)
	if err := s.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.Price,
		&t.Location,
		&imagesJSON,
		&duration,
		&includesJSON,
		&t.CreatedAt,
	); err != nil {
		return domain.Tour{}, err
	}
	if duration.Valid {
		d := duration.String
		t.Duration = &d
	}
	t.ImageURLs = []string{}
	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &t.ImageURLs); err != nil {
			return domain.Tour{}, fmt.Errorf("tour %d image_urls: %w", t.ID, err)
		}
	}
	if len(includesJSON) > 0 {
		if err := json.Unmarshal(includesJSON, &t.Includes); err != nil {
			return domain.Tour{}, fmt.Errorf("tour %d includes: %w", t.ID, err)
		}
	}
	return t, nil
}

func scanReview(s scanner) (domain.Review, error) {
	var rv domain.Review
	err := s.Scan(&rv.ID, &rv.TourID, &rv.UserName, &rv.Rating, &rv.Comment, &rv.CreatedAt)
	return rv, err
}

func observe(op string, start time.Time, errp *error) {
	status := "ok"
	switch {
	case *errp == nil:
	case errors.Is(*errp, domain.ErrNotFound):
		status = "not_found"
	default:
		status = "error"
	}
	observability.ObserveStore("sql", op, status, time.Since(start))
}
