package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"sync/atomic"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"puntacana_tours/internal/adapters/observability"
	"puntacana_tours/internal/adapters/store"
	"puntacana_tours/internal/app"
	"puntacana_tours/internal/domain"
	"puntacana_tours/internal/shared"
	"puntacana_tours/internal/storage/sqlstore"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	path := cfg.SeedFile
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	tours, err := app.LoadSeedFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("seed file")
	}
	log.Info().
		Str("file", path).
		Str("driver", cfg.StoreDriver).
		Int("workers", cfg.SeedWorkers).
		Int("tours", len(tours)).
		Msg("seed starting")

	ts, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer closeStore()

	seeder := app.NewSeedService(app.NewCatalog(ts))
	workers := max(cfg.SeedWorkers, 1)
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var failed atomic.Int64

	for _, t := range tours {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(in domain.NewTour) {
			defer wg.Done()
			defer sem.Release(1)

			created, err := seeder.SeedTour(ctx, in)
			if err != nil {
				failed.Add(1)
				var ve *domain.ValidationError
				if errors.As(err, &ve) {
					log.Warn().Str("name", in.Name).Err(err).Msg("tour skipped")
					return
				}
				log.Error().Str("name", in.Name).Err(err).Msg("tour insert failed")
				return
			}
			log.Info().Int64("id", created.ID).Str("name", created.Name).Msg("tour inserted")
		}(t)
	}

	wg.Wait()
	if n := failed.Load(); n > 0 {
		log.Error().Int64("failed", n).Int("total", len(tours)).Msg("seed finished with failures")
		closeStore()
		os.Exit(1)
	}
	log.Info().Int("total", len(tours)).Msg("seed completed")
}

func openStore(cfg shared.Config) (domain.TourStore, func(), error) {
	if cfg.StoreDriver == shared.DriverMySQL {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return sqlstore.New(db), func() { _ = db.Close() }, nil
	}
	c, err := store.New(cfg.StoreURL, cfg.StoreKey, cfg.StoreRPS, cfg.StoreTimeout)
	if err != nil {
		return nil, nil, err
	}
	return c, func() {}, nil
}
