// Package config loads per-service configuration from environment
// variables, adapted from Iksolot21-URL-Shortener's cleanenv-based
// config loader but reading env-only (no YAML file), matching spec.md
// §6's "Configuration (environment)" contract exactly.
package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
)

// SlugFiller is slug-filler's configuration (spec.md §4.1, §6).
type SlugFiller struct {
	DatabaseURL    string        `env:"DATABASE_URL" env-required:"true"`
	RedisURL       string        `env:"REDIS_URL" env-required:"true"`
	QueueSize      int           `env:"QUEUE_SIZE" env-default:"50000"`
	SlugLen        int           `env:"SLUG_LEN" env-default:"6"`
	RefillInterval time.Duration `env:"REFILL_INTERVAL" env-default:"250ms"`
	BatchSize      int           `env:"BATCH_SIZE" env-default:"1000"`
	BloomPreFilter bool          `env:"BLOOM_PREFILTER" env-default:"true"`
	MetricsAddr    string        `env:"METRICS_ADDR" env-default:":9101"`
}

// WriteService is write-svc's configuration (spec.md §4.2, §6).
type WriteService struct {
	DatabaseURL     string        `env:"DATABASE_URL" env-required:"true"`
	RedisURL        string        `env:"REDIS_URL" env-required:"true"`
	ListenAddr      string        `env:"LISTEN_ADDR" env-default:":8081"`
	PoolDrawRetries int           `env:"POOL_DRAW_RETRIES" env-default:"3"`
	MaxURLBytes     int           `env:"MAX_URL_BYTES" env-default:"2048"`
	AliasMinLen     int           `env:"ALIAS_MIN_LEN" env-default:"3"`
	AliasMaxLen     int           `env:"ALIAS_MAX_LEN" env-default:"64"`
	StoreTimeout    time.Duration `env:"STORE_TIMEOUT" env-default:"2s"`
	CacheTimeout    time.Duration `env:"CACHE_TIMEOUT" env-default:"200ms"`
}

// RedirectService is redirect-svc's configuration (spec.md §4.3, §6).
type RedirectService struct {
	DatabaseURL  string        `env:"DATABASE_URL" env-required:"true"`
	RedisURL     string        `env:"REDIS_URL" env-required:"true"`
	SelfDomain   string        `env:"SELF_DOMAIN" env-required:"true"`
	ListenAddr   string        `env:"LISTEN_ADDR" env-default:":8080"`
	CacheSize    int           `env:"CACHE_SIZE" env-default:"100"`
	SlugLen      int           `env:"SLUG_LEN" env-default:"6"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" env-default:"2s"`
	CacheTimeout time.Duration `env:"CACHE_TIMEOUT" env-default:"200ms"`
}

// Load reads environment variables into cfg, which must be a pointer to
// one of the structs above.
func Load(cfg interface{}) error {
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return errors.Wrap(err, "read config from environment failed")
	}
	return nil
}
