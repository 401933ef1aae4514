package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const DefaultTimeout = 15 * time.Second

type Server struct{ mux *chi.Mux }

type options struct{ trustProxy bool }

type Option func(*options)

// WithTrustedProxy takes the client address from X-Forwarded-For / X-Real-IP.
// Only use it behind a proxy that overwrites those headers; otherwise a
// client can pick its own address and dodge review throttling.
func WithTrustedProxy() Option { return func(o *options) { o.trustProxy = true } }

// New builds the router with the shared middleware stack. A zero timeout
// means DefaultTimeout.
func New(l zerolog.Logger, timeout time.Duration, opts ...Option) *Server {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	m := chi.NewRouter()

	// middlewares must be registered before any route
	if o.trustProxy {
		m.Use(chimw.RealIP)
	}
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer) // chi's built-in recover
	m.Use(chimw.CleanPath)
	m.Use(Timeout(timeout))
	m.Use(Metrics)
	m.Use(Logger(l))

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches an extra handler such as /metrics to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
