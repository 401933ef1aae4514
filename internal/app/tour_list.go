package app

import (
	"context"
	"strings"

	"puntacana_tours/internal/domain"
)

// ViewState is the lifecycle of a page's data.
type ViewState int

const (
	StateLoading ViewState = iota
	StateReady
	StateNotFound
	StateFailed
)

func (s ViewState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateNotFound:
		return "not_found"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

const (
	FeaturedCount = 3
	PageSize      = 9
)

// TourList holds the home page state. Create one per page view.
type TourList struct {
	catalog *Catalog

	State    ViewState
	Tours    []domain.Tour
	Featured []domain.Tour
	Notice   *Notice
}

func NewTourList(c *Catalog) *TourList {
	return &TourList{catalog: c, State: StateLoading}
}

// Load fetches all tours once. If ctx is done by the time the store answers
// the result is dropped and the list stays loading.
func (l *TourList) Load(ctx context.Context) error {
	l.State = StateLoading
	tours, err := l.catalog.ListTours(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		l.State = StateFailed
		l.Tours, l.Featured = nil, nil
		l.Notice = errorNotice(KeyToursLoadFailed)
		return err
	}
	l.Tours = tours
	l.Featured = Featured(tours)
	l.State = StateReady
	return nil
}

// Featured is the first FeaturedCount tours in store order.
func Featured(tours []domain.Tour) []domain.Tour {
	n := min(len(tours), FeaturedCount)
	out := make([]domain.Tour, n)
	copy(out, tours[:n])
	return out
}

// TourPage is one page of the filtered "all tours" list.
type TourPage struct {
	Items      []domain.Tour
	Query      string
	Page       int
	TotalPages int
	Total      int
}

func (p TourPage) HasPrev() bool { return p.Page > 1 }
func (p TourPage) HasNext() bool { return p.Page < p.TotalPages }

// Filter narrows the held tours to those whose name or location contains
// query (case-insensitive) and returns the requested 1-based page. Pages
// outside the range are clamped.
func (l *TourList) Filter(query string, page int) TourPage {
	q := strings.ToLower(strings.TrimSpace(query))
	matched := l.Tours
	if q != "" {
		matched = make([]domain.Tour, 0, len(l.Tours))
		for _, t := range l.Tours {
			if strings.Contains(strings.ToLower(t.Name), q) || strings.Contains(strings.ToLower(t.Location), q) {
				matched = append(matched, t)
			}
		}
	}

	total := len(matched)
	pages := max((total+PageSize-1)/PageSize, 1)
	page = min(max(page, 1), pages)
	start := (page - 1) * PageSize
	end := min(start+PageSize, total)

	return TourPage{
		Items:      matched[start:end],
		Query:      strings.TrimSpace(query),
		Page:       page,
		TotalPages: pages,
		Total:      total,
	}
}
