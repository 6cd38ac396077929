// write-svc serves POST /shorten (spec.md §4.2, §6), wiring adapted
// from the teacher's url-shorter/main.go: mux.Router, go-kit
// transport/http servers, shared ServerBefore/ServerErrorEncoder
// options, a rate-limit middleware ahead of the endpoint.
package main

import (
	"context"
	"net/http"
	"os"

	"github.com/go-kit/log/level"

	cacheredis "github.com/shortnr/urlshort/internal/cache/redis"
	"github.com/shortnr/urlshort/internal/config"
	"github.com/shortnr/urlshort/internal/logging"
	"github.com/shortnr/urlshort/internal/metrics"
	"github.com/shortnr/urlshort/internal/ratelimit"
	storepostgres "github.com/shortnr/urlshort/internal/store/postgres"
	"github.com/shortnr/urlshort/internal/tracing"
	"github.com/shortnr/urlshort/internal/transport"
	"github.com/shortnr/urlshort/internal/writesvc"
)

func main() {
	logger := logging.New("write-svc")

	var cfg config.WriteService
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

	domainMetrics := metrics.NewDomain("writesvc")
	httpMetrics := metrics.NewHTTP("urlshort", "writesvc")

	svc := writesvc.New(writesvc.Config{
		PoolDrawRetries: cfg.PoolDrawRetries,
		MaxURLBytes:     cfg.MaxURLBytes,
		AliasMinLen:     cfg.AliasMinLen,
		AliasMaxLen:     cfg.AliasMaxLen,
		StoreTimeout:    cfg.StoreTimeout,
		CacheTimeout:    cfg.CacheTimeout,
	}, store, cache, logger, domainMetrics)

	// Rate limit ahead of the endpoint protects the process itself from
	// abusive callers (SPEC_FULL.md §10); it is not the "global
	// rate-limiting" feature spec.md §1 excludes as a Non-goal.
	limiter := ratelimit.New(cache, 30, 60)

	tracer, err := tracing.New(context.Background(), "write-svc")
	if err != nil {
		level.Warn(logger).Log("msg", "tracing disabled, exporter setup failed", "err", err)
		tracer = tracing.NoOp()
	}

	router := transport.NewWriteRouter(svc, logger, httpMetrics, limiter, tracer)

	level.Info(logger).Log("msg", "starting", "listen_addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, router); err != nil {
		level.Error(logger).Log("msg", "listener stopped", "err", err)
		os.Exit(1)
	}
}
