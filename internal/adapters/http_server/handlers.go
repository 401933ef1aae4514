// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"puntacana_tours/internal/app"
	"puntacana_tours/internal/domain"
)

// Handlers serves the JSON API under /v1.
type Handlers struct {
	Catalog *app.Catalog
	Limiter domain.SubmissionLimiter
}

type problem struct {
	Type   string              `json:"type"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors []domain.FieldError `json:"errors,omitempty"`
}

type reviewsResponse struct {
	Items   []domain.Review `json:"items"`
	Count   int             `json:"count"`
	Average float64         `json:"average"`
}

type reviewRequest struct {
	UserName string `json:"user_name"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/tours", h.listTours)
	s.mux.Get("/v1/tours/{id}", h.getTour)
	s.mux.Get("/v1/tours/{id}/reviews", h.listReviews)
	s.mux.Post("/v1/tours/{id}/reviews", h.createReview)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps the domain error taxonomy onto problem responses.
func writeError(w http.ResponseWriter, err error, what string) {
	var ve *domain.ValidationError
	var dae *domain.DataAccessError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", what+" not found")
	case errors.As(err, &ve):
		writeProblemBody(w, problem{Type: "about:blank", Title: "Invalid input", Status: http.StatusUnprocessableEntity,
			Detail: ve.Error(), Errors: ve.Fields})
	case errors.Is(err, domain.ErrThrottled):
		writeProblem(w, http.StatusTooManyRequests, "Too Many Requests", "review submissions are limited, try again later")
	case errors.As(err, &dae):
		writeProblem(w, http.StatusBadGateway, "Bad Gateway", "the tour store could not complete "+dae.Op)
	default:
		log.Error().Err(err).Msg("unexpected API error")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func etagOf(body []byte) string {
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	return etagOf(body), body
}

// writeJSON sends v with a weak ETag, answering 304 when the client has it.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	if status == http.StatusOK {
		if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
			w.Header().Set("ETag", etag)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write JSON body")
	}
}

func (h *Handlers) listTours(w http.ResponseWriter, r *http.Request) {
	ts, err := h.Catalog.ListTours(r.Context())
	if r.Context().Err() != nil {
		return
	}
	if err != nil {
		writeError(w, err, "tours")
		return
	}
	writeJSON(w, r, http.StatusOK, ts)
}

func (h *Handlers) getTour(w http.ResponseWriter, r *http.Request) {
	id, ok := tourID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	t, err := h.Catalog.GetTour(r.Context(), id)
	if r.Context().Err() != nil {
		return
	}
	if err != nil {
		writeError(w, err, "tour")
		return
	}
	writeJSON(w, r, http.StatusOK, t)
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := tourID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	rs, err := h.Catalog.ListReviewsForTour(r.Context(), id)
	if r.Context().Err() != nil {
		return
	}
	if err != nil {
		writeError(w, err, "reviews")
		return
	}
	writeJSON(w, r, http.StatusOK, reviewsResponse{Items: rs, Count: len(rs), Average: app.AverageRating(rs)})
}

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := tourID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	var req reviewRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "body must be a JSON review object")
		return
	}

	in, err := app.ValidateReview(id, app.ReviewForm{UserName: req.UserName, Rating: req.Rating, Comment: req.Comment})
	if err != nil {
		writeError(w, err, "review")
		return
	}
	if !allowSubmission(ctx, h.Limiter, remoteIP(r)) {
		writeError(w, domain.ErrThrottled, "review")
		return
	}

	created, err := h.Catalog.CreateReview(ctx, in)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		writeError(w, err, "tour")
		return
	}
	writeJSON(w, r, http.StatusCreated, created)
}
