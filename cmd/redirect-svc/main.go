// redirect-svc serves GET /{slug} and GET /{slug}/qr (spec.md §4.3,
// §6), wiring adapted from the teacher's url-shorter/main.go shape.
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
	"github.com/shortnr/urlshort/internal/qr"
	"github.com/shortnr/urlshort/internal/redirectsvc"
	storepostgres "github.com/shortnr/urlshort/internal/store/postgres"
	"github.com/shortnr/urlshort/internal/tracing"
	"github.com/shortnr/urlshort/internal/transport"
)

func main() {
	logger := logging.New("redirect-svc")

	var cfg config.RedirectService
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

	domainMetrics := metrics.NewDomain("redirectsvc")
	httpMetrics := metrics.NewHTTP("urlshort", "redirectsvc")

	svc, err := redirectsvc.New(redirectsvc.Config{
		CacheSize:    cfg.CacheSize,
		SlugLen:      cfg.SlugLen,
		StoreTimeout: cfg.StoreTimeout,
		CacheTimeout: cfg.CacheTimeout,
	}, store, cache, logger, domainMetrics)
	if err != nil {
		level.Error(logger).Log("msg", "build redirect service failed", "err", err)
		os.Exit(1)
	}

	qrSvc := qr.New(svc, cfg.SelfDomain)

	tracer, err := tracing.New(context.Background(), "redirect-svc")
	if err != nil {
		level.Warn(logger).Log("msg", "tracing disabled, exporter setup failed", "err", err)
		tracer = tracing.NoOp()
	}

	router := transport.NewRedirectRouter(svc, qrSvc, logger, httpMetrics, tracer)

	level.Info(logger).Log("msg", "starting", "listen_addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, router); err != nil {
		level.Error(logger).Log("msg", "listener stopped", "err", err)
		os.Exit(1)
	}
}
