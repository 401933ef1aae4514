package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	server "puntacana_tours/internal/adapters/http_server"
	"puntacana_tours/internal/adapters/store"
	"puntacana_tours/internal/app"
	"puntacana_tours/internal/domain"
)

const apiKey = "anon-test-key"

// ---------- a minimal PostgREST stand-in ----------

type fakeRest struct {
	mu      sync.Mutex
	tours   []domain.Tour
	reviews []domain.Review
	nextID  int64
	posts   []domain.NewReview
}

func (f *fakeRest) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("apikey") != apiKey || r.Header.Get("Authorization") != "Bearer "+apiKey {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid API key"}`))
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	single := r.Header.Get("Accept") == "application/vnd.pgrst.object+json"
	q := r.URL.Query()
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/rest/v1/tours":
		if id := q.Get("id"); id != "" {
			want, _ := strconv.ParseInt(strings.TrimPrefix(id, "eq."), 10, 64)
			for _, t := range f.tours {
				if t.ID == want {
					writeJSON(w, http.StatusOK, t)
					return
				}
			}
			if single {
				writeJSON(w, http.StatusNotAcceptable, map[string]string{
					"code": "PGRST116", "message": "JSON object requested, multiple (or no) rows returned",
				})
				return
			}
			writeJSON(w, http.StatusOK, []domain.Tour{})
			return
		}
		writeJSON(w, http.StatusOK, f.tours)

	case r.Method == http.MethodGet && r.URL.Path == "/rest/v1/reviews":
		want, _ := strconv.ParseInt(strings.TrimPrefix(q.Get("tour_id"), "eq."), 10, 64)
		out := []domain.Review{}
		for _, rv := range f.reviews {
			if rv.TourID == want {
				out = append(out, rv)
			}
		}
		writeJSON(w, http.StatusOK, out)

	case r.Method == http.MethodPost && r.URL.Path == "/rest/v1/reviews":
		if r.Header.Get("Prefer") != "return=representation" {
			w.WriteHeader(http.StatusCreated)
			return
		}
		var in domain.NewReview
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"code": "PGRST102", "message": err.Error()})
			return
		}
		f.posts = append(f.posts, in)
		f.nextID++
		rv := domain.Review{ID: f.nextID, TourID: in.TourID, UserName: in.UserName, Rating: in.Rating,
			Comment: in.Comment, CreatedAt: time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)}
		// newest first, matching order=created_at.desc
		f.reviews = append([]domain.Review{rv}, f.reviews...)
		writeJSON(w, http.StatusCreated, rv)

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"code": "PGRST125", "message": "Invalid path"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ---------- the stack under test ----------

func newStack(t *testing.T, rest *fakeRest) *httptest.Server {
	t.Helper()
	backend := httptest.NewServer(rest)
	t.Cleanup(backend.Close)

	client, err := store.New(backend.URL, apiKey, 50, 5*time.Second)
	require.NoError(t, err)
	catalog := app.NewCatalog(client)

	srv := server.New(zerolog.Nop(), 0)
	srv.MountHandlers(&server.Handlers{Catalog: catalog})
	pages, err := server.NewPages(server.PagesConfig{Catalog: catalog})
	require.NoError(t, err)
	require.NoError(t, srv.MountPages(pages))

	front := httptest.NewServer(srv.Mux())
	t.Cleanup(front.Close)
	return front
}

func get(t *testing.T, u string) (int, string) {
	t.Helper()
	res, err := http.Get(u)
	require.NoError(t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(b)
}

func TestEndToEnd_BrowseAndReview(t *testing.T) {
	dur := "Full day"
	rest := &fakeRest{nextID: 100, tours: []domain.Tour{
		{ID: 7, Name: "Saona Island", Location: "Bayahibe", Price: 89, Duration: &dur,
			Description: "Catamaran, natural pool and beach.", Includes: []string{"Lunch"}},
		{ID: 3, Name: "Hoyo Azul", Location: "Cap Cana", Price: 65, ImageURLs: []string{"https://cdn.example/hoyo.jpg"}},
	}}
	front := newStack(t, rest)

	status, body := get(t, front.URL+"/")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "Saona Island")
	require.Contains(t, body, "Hoyo Azul")

	status, body = get(t, front.URL+"/tours/7")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "$89")
	require.Contains(t, body, "pexels-photo-1450353.jpeg")
	require.Contains(t, body, "0.0 (0 reviews)")

	status, body = get(t, front.URL+"/tours/999")
	require.Equal(t, http.StatusNotFound, status)
	require.Contains(t, body, "Tour Not Found")

	res, err := http.PostForm(front.URL+"/tours/7/reviews", url.Values{
		"user_name": {"Ana"}, "rating": {"4"}, "comment": {"Crystal clear water"},
	})
	require.NoError(t, err)
	b, _ := io.ReadAll(res.Body)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, string(b), "Crystal clear water")
	require.Contains(t, string(b), "4.0 (1 review)")
	rest.mu.Lock()
	require.Equal(t, []domain.NewReview{{TourID: 7, UserName: "Ana", Rating: 4, Comment: "Crystal clear water"}}, rest.posts)
	rest.mu.Unlock()

	status, body = get(t, front.URL+"/v1/tours/7/reviews")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `"user_name":"Ana"`)
}

func TestEndToEnd_RatingSummary(t *testing.T) {
	rest := &fakeRest{tours: []domain.Tour{{ID: 3, Name: "Hoyo Azul", Location: "Cap Cana", Price: 65}}}
	for i, r := range []int{5, 5, 4, 3, 5} {
		rest.reviews = append(rest.reviews, domain.Review{ID: int64(i + 1), TourID: 3, UserName: "guest", Rating: r, Comment: "ok"})
	}
	front := newStack(t, rest)

	status, body := get(t, front.URL+"/tours/3")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "4.4 (5 reviews)")

	status, body = get(t, front.URL+"/tours/3?lang=es")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "4.4 (5 reseñas)")
}

func TestEndToEnd_BadKeySurfacesAsFailure(t *testing.T) {
	rest := &fakeRest{}
	backend := httptest.NewServer(rest)
	t.Cleanup(backend.Close)

	client, err := store.New(backend.URL, "wrong-key", 50, 5*time.Second)
	require.NoError(t, err)
	srv := server.New(zerolog.Nop(), 0)
	srv.MountHandlers(&server.Handlers{Catalog: app.NewCatalog(client)})
	front := httptest.NewServer(srv.Mux())
	t.Cleanup(front.Close)

	status, body := get(t, front.URL+"/v1/tours")
	require.Equal(t, http.StatusBadGateway, status)
	require.Contains(t, body, "list tours")
}
