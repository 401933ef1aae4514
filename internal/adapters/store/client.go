// internal/adapters/store/client.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"puntacana_tours/internal/adapters/observability"
	"puntacana_tours/internal/domain"
)

// Client talks to a PostgREST-compatible backend (Supabase and friends).
// Every public method is exactly one HTTP round trip; there are no retries.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int, timeout time.Duration) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("store API key is required")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid store URL %q", base)
	}
	if rps <= 0 {
		rps = 10
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base: strings.TrimRight(base, "/") + "/rest/v1",
		hc:   &http.Client{Timeout: timeout},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Tours ----

func (c *Client) ListTours(ctx context.Context) ([]domain.Tour, error) {
	q := url.Values{"select": {"*"}, "order": {"created_at.desc,id.desc"}}
	var out []domain.Tour
	if err := c.do(ctx, request{op: "list_tours", method: http.MethodGet, table: "tours", query: q}, &out); err != nil {
		return nil, err
	}
	for i := range out {
		normalizeTour(&out[i])
	}
	return out, nil
}

func (c *Client) GetTour(ctx context.Context, id int64) (domain.Tour, error) {
	q := url.Values{"select": {"*"}, "id": {"eq." + strconv.FormatInt(id, 10)}}
	var out domain.Tour
	if err := c.do(ctx, request{op: "get_tour", method: http.MethodGet, table: "tours", query: q, single: true}, &out); err != nil {
		return domain.Tour{}, err
	}
	normalizeTour(&out)
	return out, nil
}

func (c *Client) CreateTour(ctx context.Context, t domain.NewTour) (domain.Tour, error) {
	if t.ImageURLs == nil {
		t.ImageURLs = []string{}
	}
	q := url.Values{"select": {"*"}}
	var out domain.Tour
	if err := c.do(ctx, request{op: "create_tour", method: http.MethodPost, table: "tours", query: q, body: t, single: true}, &out); err != nil {
		return domain.Tour{}, err
	}
	normalizeTour(&out)
	return out, nil
}

// ---- Reviews ----

func (c *Client) ListReviewsForTour(ctx context.Context, tourID int64) ([]domain.Review, error) {
	q := url.Values{
		"select":  {"*"},
		"tour_id": {"eq." + strconv.FormatInt(tourID, 10)},
		"order":   {"created_at.desc,id.desc"},
	}
	out := []domain.Review{}
	if err := c.do(ctx, request{op: "list_reviews", method: http.MethodGet, table: "reviews", query: q}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateReview(ctx context.Context, r domain.NewReview) (domain.Review, error) {
	q := url.Values{"select": {"*"}}
	var out domain.Review
	if err := c.do(ctx, request{op: "create_review", method: http.MethodPost, table: "reviews", query: q, body: r, single: true}, &out); err != nil {
		return domain.Review{}, err
	}
	return out, nil
}

// ---- Internals ----

var (
	ErrUnauthorized = errors.New("store: unauthorized")
	ErrForbidden    = errors.New("store: forbidden")
)

// codeNoRows is what PostgREST answers when a single object was requested
// and zero rows matched.
const codeNoRows = "PGRST116"

// APIError is a PostgREST error body plus the HTTP status it came with.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("store: %d %s: %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("store: %d: %s", e.Status, msg)
}

type request struct {
	op     string
	method string
	table  string
	query  url.Values
	body   any
	single bool
}

// do performs one request with client-side rate limiting and decodes the
// response into out.
func (c *Client) do(ctx context.Context, r request, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", r.op, err)
		}
		body = bytes.NewReader(b)
	}

	u := c.base + "/" + r.table
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("User-Agent", "puntacana-tours/1.0")
	if r.single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	} else {
		req.Header.Set("Accept", "application/json")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveStore("rest", r.op, "network_error", time.Since(start))
		// context canceled or deadline exceeded wins over the transport error
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s: %w", r.op, err)
	}
	defer resp.Body.Close()
	observability.ObserveStore("rest", r.op, strconv.Itoa(resp.StatusCode), time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: decode response: %w", r.op, err)
		}
		return nil

	case http.StatusNoContent:
		return nil

	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return domain.ErrNotFound

	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %v", ErrUnauthorized, readAPIError(resp))

	case http.StatusForbidden:
		return fmt.Errorf("%w: %v", ErrForbidden, readAPIError(resp))

	default:
		apiErr := readAPIError(resp)
		if resp.StatusCode == http.StatusNotAcceptable && apiErr.Code == codeNoRows {
			return domain.ErrNotFound
		}
		return apiErr
	}
}

// readAPIError reads a small error body for diagnostics.
func readAPIError(resp *http.Response) *APIError {
	e := &APIError{Status: resp.StatusCode}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(b, e); err != nil || (e.Code == "" && e.Message == "") {
		e.Message = strings.TrimSpace(string(b))
	}
	return e
}

func normalizeTour(t *domain.Tour) {
	if t.ImageURLs == nil {
		t.ImageURLs = []string{}
	}
}
