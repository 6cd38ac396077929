package transport

import (
	"net/http"

	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/shortnr/urlshort/internal/httpctx"
	"github.com/shortnr/urlshort/internal/logging"
	"github.com/shortnr/urlshort/internal/metrics"
	"github.com/shortnr/urlshort/internal/ratelimit"
)

func serverOptions(logger logging.Logger) []httptransport.ServerOption {
	return []httptransport.ServerOption{
		httptransport.ServerBefore(httpctx.Before),
		httptransport.ServerErrorEncoder(EncodeError(logger)),
	}
}

// NewWriteRouter wires write-svc's routes (spec.md §6 "HTTP —
// write-svc"), mirroring the teacher's url-shorter/main.go wiring shape:
// a mux.Router, per-route httptransport.NewServer, shared
// ServerBefore/ServerErrorEncoder options.
func NewWriteRouter(svc shortener, logger logging.Logger, httpMetrics *metrics.HTTP, limiter *ratelimit.Limiter, tracer trace.Tracer) http.Handler {
	r := mux.NewRouter()
	options := serverOptions(logger)

	endpoint := MakeShortenEndpoint(svc)
	endpoint = LoggingMiddleware(logger)(endpoint)
	if limiter != nil {
		endpoint = RateLimitMiddleware(limiter)(endpoint)
	}
	if httpMetrics != nil {
		endpoint = httpMetrics.WrapEndpoint("/shorten", endpoint)
	}
	if tracer != nil {
		endpoint = TracingMiddleware(tracer)(endpoint)
	}

	r.Methods("POST").Path("/shorten").Handler(httptransport.NewServer(
		endpoint, DecodeShortenRequest, EncodeShortenResponse, options...,
	))
	r.Methods("GET").Path("/healthz").HandlerFunc(healthz)
	r.Methods("GET").Path("/metrics").Handler(promhttp.Handler())
	return r
}

// NewRedirectRouter wires redirect-svc's routes (spec.md §6 "HTTP —
// redirect-svc"), including the optional QR derivation endpoint
// (spec.md §4.3).
func NewRedirectRouter(svc resolver, qrSvc qrRenderer, logger logging.Logger, httpMetrics *metrics.HTTP, tracer trace.Tracer) http.Handler {
	r := mux.NewRouter()
	options := serverOptions(logger)

	redirectEndpoint := MakeRedirectEndpoint(svc)
	redirectEndpoint = LoggingMiddleware(logger)(redirectEndpoint)
	if httpMetrics != nil {
		redirectEndpoint = httpMetrics.WrapEndpoint("/{slug}", redirectEndpoint)
	}
	if tracer != nil {
		redirectEndpoint = TracingMiddleware(tracer)(redirectEndpoint)
	}

	qrEndpoint := MakeQREndpoint(qrSvc)
	qrEndpoint = LoggingMiddleware(logger)(qrEndpoint)
	if httpMetrics != nil {
		qrEndpoint = httpMetrics.WrapEndpoint("/{slug}/qr", qrEndpoint)
	}
	if tracer != nil {
		qrEndpoint = TracingMiddleware(tracer)(qrEndpoint)
	}

	// /healthz and /metrics are registered ahead of the /{slug}
	// catch-all so they are matched as literal paths rather than as
	// slugs.
	r.Methods("GET").Path("/healthz").HandlerFunc(healthz)
	r.Methods("GET").Path("/metrics").Handler(promhttp.Handler())
	r.Methods("GET").Path("/{slug}/qr").Handler(httptransport.NewServer(
		qrEndpoint, DecodeQRRequest, EncodeQRResponse, options...,
	))
	r.Methods("GET").Path("/{slug}").Handler(httptransport.NewServer(
		redirectEndpoint, DecodeRedirectRequest, EncodeRedirectResponse, options...,
	))
	return r
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
