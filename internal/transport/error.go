// Package transport wires the go-kit endpoint/HTTP layer for write-svc
// and redirect-svc, adapted from the teacher's
// url-shorter/url/delivery/http package: the decode/encode/endpoint
// split is unchanged, generalized from a single URLService to this
// spec's write and redirect operations, and the error-to-status
// mapping is adapted from kit/http/errorCode.go's
// ErrorCode/DecodeErrorCode pair onto domain.CodedError/domain.HTTPStatus
// instead of that file's fixed status-keyed message table.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-kit/log/level"

	"github.com/shortnr/urlshort/internal/domain"
	"github.com/shortnr/urlshort/internal/logging"
)

// errorBody is the JSON shape every error response carries, mirroring
// the teacher's ErrorCode wire shape but keyed to this spec's Kind set
// instead of a numeric code table.
type errorBody struct {
	Status  int    `json:"status"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func kindName(k domain.Kind) string {
	switch k {
	case domain.KindValidation:
		return "validation"
	case domain.KindNotFound:
		return "not_found"
	case domain.KindConflict:
		return "conflict"
	case domain.KindUnavailable:
		return "unavailable"
	case domain.KindExhausted:
		return "exhausted"
	case domain.KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// EncodeError is the go-kit transport/http.ServerErrorEncoder every
// route in this package is wired with. Internal errors are logged with
// their full cause chain (spec.md §7: validation/not-found/conflict are
// normal outcomes and are never logged as errors).
func EncodeError(logger logging.Logger) func(ctx context.Context, err error, w http.ResponseWriter) {
	return func(ctx context.Context, err error, w http.ResponseWriter) {
		if err == nil {
			panic("EncodeError called with nil error")
		}

		kind := domain.KindOf(err)
		status := domain.HTTPStatus(kind)
		if status == http.StatusInternalServerError {
			level.Error(logger).Log("msg", "internal error", "err", fmt.Sprintf("%+v", err))
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(errorBody{Status: status, Kind: kindName(kind), Message: err.Error()})
	}
}
