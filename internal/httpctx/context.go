// Package httpctx carries per-request metadata (client IP, request ID,
// trace ID, request path) through context.Context, adapted from the
// teacher's kit/http package. It is consumed by the logging and rate
// limit middleware in internal/transport.
package httpctx

import (
	"context"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
)

type ctxKey int

const (
	keyIP ctxKey = iota
	keyRoute
	keyRequestID
	keyTraceID
)

var requestIDNode *snowflake.Node

func init() {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	requestIDNode = node
}

// ReadClientIP extracts the caller's address, preferring proxy headers
// the way the teacher's ReadUserIP does.
func ReadClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-Ip"); ip != "" {
		return strings.Split(ip, ":")[0]
	}
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.Split(ip, ",")[0]
	}
	return strings.Split(r.RemoteAddr, ":")[0]
}

// Before is the go-kit transport/http ServerBefore hook: it stamps the
// context with the caller IP, the request path (r.URL.Path, not the
// route template), and a fresh request ID before the endpoint runs.
func Before(ctx context.Context, r *http.Request) context.Context {
	ctx = context.WithValue(ctx, keyIP, ReadClientIP(r))
	ctx = context.WithValue(ctx, keyRoute, r.URL.Path)
	ctx = context.WithValue(ctx, keyRequestID, requestIDNode.Generate().Int64())
	return ctx
}

// WithTraceID attaches a trace ID obtained from the tracing layer.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, keyTraceID, traceID)
}

func IP(ctx context.Context) string {
	ip, _ := ctx.Value(keyIP).(string)
	return ip
}

func Route(ctx context.Context) string {
	route, _ := ctx.Value(keyRoute).(string)
	return route
}

func RequestID(ctx context.Context) int64 {
	id, _ := ctx.Value(keyRequestID).(int64)
	return id
}

func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(keyTraceID).(string)
	return id
}
