package main

import (
	"net/http"

	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shortnr/urlshort/internal/logging"
)

// serveMetrics exposes Prometheus exposition on its own listener, since
// slug-filler has no other HTTP surface (spec.md §4.1 is a background
// loop, not a request-serving component).
func serveMetrics(addr string, logger logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if err := http.ListenAndServe(addr, mux); err != nil {
		level.Error(logger).Log("msg", "metrics listener stopped", "err", err)
	}
}
