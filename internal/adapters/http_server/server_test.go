package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"puntacana_tours/internal/app"
	"puntacana_tours/internal/domain"
)

// ---- fakes ----

type memStore struct {
	mu      sync.Mutex
	tours   []domain.Tour
	reviews map[int64][]domain.Review
	fail    error
	writes  int
	nextID  int64
}

func newMemStore(ts ...domain.Tour) *memStore {
	return &memStore{tours: ts, reviews: map[int64][]domain.Review{}, nextID: 1000}
}

func (m *memStore) ListTours(ctx context.Context) ([]domain.Tour, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	return append([]domain.Tour(nil), m.tours...), nil
}

func (m *memStore) GetTour(ctx context.Context, id int64) (domain.Tour, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return domain.Tour{}, m.fail
	}
	for _, t := range m.tours {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Tour{}, domain.ErrNotFound
}

func (m *memStore) CreateTour(ctx context.Context, in domain.NewTour) (domain.Tour, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.fail != nil {
		return domain.Tour{}, m.fail
	}
	m.nextID++
	t := domain.Tour{ID: m.nextID, Name: in.Name, Location: in.Location, Price: in.Price, Description: in.Description,
		ImageURLs: in.ImageURLs, Duration: in.Duration, Includes: in.Includes, CreatedAt: time.Now()}
	m.tours = append([]domain.Tour{t}, m.tours...)
	return t, nil
}

func (m *memStore) ListReviewsForTour(ctx context.Context, tourID int64) ([]domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	return append([]domain.Review(nil), m.reviews[tourID]...), nil
}

func (m *memStore) CreateReview(ctx context.Context, in domain.NewReview) (domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.fail != nil {
		return domain.Review{}, m.fail
	}
	m.nextID++
	r := domain.Review{ID: m.nextID, TourID: in.TourID, UserName: in.UserName, Rating: in.Rating, Comment: in.Comment,
		CreatedAt: time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)}
	m.reviews[in.TourID] = append([]domain.Review{r}, m.reviews[in.TourID]...)
	return r, nil
}

type stubLimiter struct {
	allow bool
	err   error
}

func (s stubLimiter) Allow(ctx context.Context, key string) (bool, error) { return s.allow, s.err }

// ---- helpers ----

func saona() domain.Tour {
	return domain.Tour{ID: 7, Name: "Saona Island", Location: "Bayahibe", Price: 89, Description: "Catamaran and natural pool.",
		Includes: []string{"Buffet lunch"}}
}

func newTestServer(t *testing.T, store *memStore, lim domain.SubmissionLimiter, adminPass string) http.Handler {
	t.Helper()
	catalog := app.NewCatalog(store)
	srv := New(zerolog.Nop(), 0)
	pages, err := NewPages(PagesConfig{Catalog: catalog, Limiter: lim, AdminUser: "admin", AdminPassword: adminPass})
	require.NoError(t, err)
	srv.MountHandlers(&Handlers{Catalog: catalog, Limiter: lim})
	require.NoError(t, srv.MountPages(pages))
	return srv.Mux()
}

func do(t *testing.T, h http.Handler, r *http.Request) (*http.Response, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	res := rec.Result()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(b)
}

func postForm(path string, v url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(v.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, newMemStore(), nil, "")
	res, body := do(t, h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "ok", body)
}

func TestStaticAssets(t *testing.T) {
	h := newTestServer(t, newMemStore(), nil, "")
	res, body := do(t, h, httptest.NewRequest(http.MethodGet, "/static/site.css", nil))
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, body, ".navbar")
}

func TestRemoteIP_TrustedProxyOnly(t *testing.T) {
	var got string
	requestFrom := func(opts ...Option) {
		srv := New(zerolog.Nop(), 0, opts...)
		srv.mux.Get("/ip", func(w http.ResponseWriter, r *http.Request) { got = remoteIP(r) })
		r := httptest.NewRequest(http.MethodGet, "/ip", nil)
		r.Header.Set("X-Forwarded-For", "198.51.100.9")
		srv.Mux().ServeHTTP(httptest.NewRecorder(), r)
	}

	requestFrom()
	require.Equal(t, "192.0.2.1", got, "httptest default RemoteAddr")

	requestFrom(WithTrustedProxy())
	require.Equal(t, "198.51.100.9", got)
}

var errStoreDown = errors.New("store unavailable")
