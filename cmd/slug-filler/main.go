// slug-filler keeps the shared slug_pool queue at or above its target
// depth (spec.md §4.1), wiring adapted from the teacher's
// url-shorter/main.go shape: load config, open store/cache, run the
// service loop until terminated.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log/level"

	cacheredis "github.com/shortnr/urlshort/internal/cache/redis"
	"github.com/shortnr/urlshort/internal/config"
	"github.com/shortnr/urlshort/internal/logging"
	"github.com/shortnr/urlshort/internal/metrics"
	"github.com/shortnr/urlshort/internal/slugfiller"
	storepostgres "github.com/shortnr/urlshort/internal/store/postgres"
)

func main() {
	logger := logging.New("slug-filler")

	var cfg config.SlugFiller
	if err := config.Load(&cfg); err != nil {
		level.Error(logger).Log("msg", "load config failed", "err", err)
		os.Exit(1)
	}

	store, err := storepostgres.Open(cfg.DatabaseURL)
	if err != nil {
		level.Error(logger).Log("msg", "open store failed", "err", err)
		os.Exit(1)
	}
	cache, err := cacheredis.Open(cfg.RedisURL)
	if err != nil {
		level.Error(logger).Log("msg", "open cache failed", "err", err)
		os.Exit(1)
	}

	domainMetrics := metrics.NewDomain("slugfiller")
	filler := slugfiller.New(slugfiller.Config{
		TargetDepth:    cfg.QueueSize,
		SlugLen:        cfg.SlugLen,
		BatchSize:      cfg.BatchSize,
		RefillInterval: cfg.RefillInterval,
		BloomPreFilter: cfg.BloomPreFilter,
	}, store, cache, logger, domainMetrics)

	level.Info(logger).Log("msg", "starting", "target_depth", cfg.QueueSize, "slug_len", cfg.SlugLen, "refill_interval", cfg.RefillInterval)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go serveMetrics(cfg.MetricsAddr, logger)

	filler.Run(ctx)
	level.Info(logger).Log("msg", "shutting down")
}
