package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "puntacana_tours/internal/adapters/http_server"
	"puntacana_tours/internal/adapters/observability"
	redisad "puntacana_tours/internal/adapters/redis"
	"puntacana_tours/internal/adapters/store"
	"puntacana_tours/internal/app"
	"puntacana_tours/internal/domain"
	"puntacana_tours/internal/shared"
	"puntacana_tours/internal/storage/sqlstore"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ts, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("store init failed")
	}
	defer closeStore()

	var limiter domain.SubmissionLimiter
	if cfg.RedisAddr != "" {
		l := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.ReviewLimit, cfg.ReviewWindow)
		defer l.Close()
		limiter = l
		log.Info().Str("addr", cfg.RedisAddr).Int("limit", cfg.ReviewLimit).Dur("window", cfg.ReviewWindow).Msg("review limiter enabled")
	}

	catalog := app.NewCatalog(ts)

	// http
	var srvOpts []server.Option
	if cfg.TrustProxy {
		srvOpts = append(srvOpts, server.WithTrustedProxy())
	}
	srv := server.New(log.Logger, server.DefaultTimeout, srvOpts...)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Catalog: catalog, Limiter: limiter})
	pages, err := server.NewPages(server.PagesConfig{
		Catalog:       catalog,
		Limiter:       limiter,
		AdminUser:     cfg.AdminUser,
		AdminPassword: cfg.AdminPass,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("page setup failed")
	}
	if err := srv.MountPages(pages); err != nil {
		log.Fatal().Err(err).Msg("page setup failed")
	}
	if cfg.AdminPass == "" {
		log.Warn().Msg("ADMIN_PASSWORD not set, admin page is read-only")
	}

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("driver", cfg.StoreDriver).Msg("web listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("web stopped")
}

// openStore builds the TourStore selected by STORE_DRIVER.
func openStore(cfg shared.Config) (domain.TourStore, func(), error) {
	switch cfg.StoreDriver {
	case shared.DriverMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info().Msg("database connection ok")
		return sqlstore.New(db), func() { _ = db.Close() }, nil
	default:
		c, err := store.New(cfg.StoreURL, cfg.StoreKey, cfg.StoreRPS, cfg.StoreTimeout)
		if err != nil {
			return nil, nil, err
		}
		return c, func() {}, nil
	}
}
