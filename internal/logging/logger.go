// Package logging wraps go-kit's logger fronting a logrus JSON
// formatter, adapted from the teacher's kit/logger package. Every
// service logs one structured "starting" line at startup (write-svc and
// redirect-svc with their listen address, slug-filler with its target
// depth, slug length and refill interval); write-svc and redirect-svc
// also log one line per request via the endpoint middleware in
// internal/transport.
package logging

import (
	"os"

	gokitlogrus "github.com/go-kit/kit/log/logrus"
	kitlog "github.com/go-kit/log"
	"github.com/sirupsen/logrus"
)

// Logger is the shared structured-logging interface; go-kit's Logger
// already has the right shape (variadic key/value pairs).
type Logger = kitlog.Logger

// New builds a logger for service, JSON-formatted to stderr, annotated
// with the service name and a timestamp on every line. gokitlogrus.NewLogger
// maps go-kit keyvals into logrus.Fields, so every field (route, ip,
// status, latency_ms, ...) lands as its own top-level JSON key instead
// of being flattened into a single logfmt-encoded message string.
func New(service string) Logger {
	logrusLogger := logrus.New()
	logrusLogger.Out = os.Stderr
	logrusLogger.Formatter = &logrus.JSONFormatter{}

	base := gokitlogrus.NewLogger(logrusLogger)
	base = kitlog.With(base, "ts", kitlog.DefaultTimestampUTC, "service", service)
	return base
}

// WithError returns a logger decorated with an "err" field, the
// shape every layer in this codebase logs failures with.
func WithError(logger Logger, err error) Logger {
	return kitlog.With(logger, "err", err.Error())
}
