package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"puntacana_tours/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record samples so every vector exports at least one series
	observability.ObserveHTTP("/tours/{id}", "GET", 200, 12*time.Millisecond)
	observability.ObserveStore("rest", "list_tours", "200", 40*time.Millisecond)
	observability.ObserveLimiter("allow")

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, name := range []string{
		"tours_http_requests_total",
		"tours_store_requests_total",
		"tours_review_limiter_events_total",
	} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
}

func TestNewLogger_LevelFallback(t *testing.T) {
	if l := observability.NewLogger("prod", "bogus"); l.GetLevel().String() != "info" {
		t.Fatalf("level: %s", l.GetLevel())
	}
	if l := observability.NewLogger("dev", "debug"); l.GetLevel().String() != "debug" {
		t.Fatalf("level: %s", l.GetLevel())
	}
}
