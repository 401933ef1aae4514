package shared

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DriverREST  = "rest"
	DriverMySQL = "mysql"
)

type Config struct {
	AppEnv       string
	LogLevel     string
	HTTPAddr     string
	StoreDriver  string
	StoreURL     string
	StoreKey     string
	StoreRPS     int
	StoreTimeout time.Duration
	MySQLDSN     string
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	ReviewLimit  int
	ReviewWindow time.Duration
	AdminUser    string
	AdminPass    string
	TrustProxy   bool
	SeedFile     string
	SeedWorkers  int
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg(".env could not be parsed")
	}
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	flag := func(k string) bool {
		b, _ := strconv.ParseBool(os.Getenv(k))
		return b
	}
	return Config{
		AppEnv:       env("APP_ENV", "prod"),
		LogLevel:     env("LOG_LEVEL", "info"),
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		StoreDriver:  env("STORE_DRIVER", DriverREST),
		StoreURL:     env("STORE_URL", ""),
		StoreKey:     env("STORE_KEY", ""),
		StoreRPS:     atoi("STORE_RPS", 10),
		StoreTimeout: time.Duration(atoi("STORE_TIMEOUT_SECONDS", 10)) * time.Second,
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/tours?parseTime=true&charset=utf8mb4&loc=UTC"),
		RedisAddr:    env("REDIS_ADDR", ""),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		ReviewLimit:  atoi("REVIEW_LIMIT", 5),
		ReviewWindow: time.Duration(atoi("REVIEW_WINDOW_SECONDS", 600)) * time.Second,
		AdminUser:    env("ADMIN_USER", "admin"),
		AdminPass:    env("ADMIN_PASSWORD", ""),
		TrustProxy:   flag("TRUST_PROXY"),
		SeedFile:     env("SEED_FILE", "seed/tours.yaml"),
		SeedWorkers:  atoi("SEED_WORKERS", 4),
	}
}

// Validate reports settings the selected store cannot run without.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverREST:
		if c.StoreURL == "" || c.StoreKey == "" {
			return errors.New("STORE_URL and STORE_KEY are required for the rest store")
		}
	case DriverMySQL:
		if c.MySQLDSN == "" {
			return errors.New("MYSQL_DSN is required for the mysql store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.ReviewLimit <= 0 || c.ReviewWindow <= 0 {
		return errors.New("REVIEW_LIMIT and REVIEW_WINDOW_SECONDS must be positive")
	}
	return nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
