package transport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-kit/kit/endpoint"

	"github.com/shortnr/urlshort/internal/domain"
	"github.com/shortnr/urlshort/internal/writesvc"
)

// shortener is the subset of writesvc.Service the HTTP layer depends
// on, kept narrow so tests can substitute a fake.
type shortener interface {
	Shorten(ctx context.Context, rawURL, alias, owner string) (writesvc.Result, error)
}

type shortenRequest struct {
	URL   string `json:"url"`
	Alias string `json:"alias"`
	Owner string `json:"owner"`
}

// shortenResponse uses "alias" on the wire per spec.md §6's literal
// schema; the redirect path (see redirectsvc.go) uses "slug", the
// resolved ambiguity documented in DESIGN.md "Open Questions resolved".
type shortenResponse struct {
	Alias string `json:"alias"`
	URL   string `json:"url"`
}

// MakeShortenEndpoint implements spec.md §4.2's shorten operation as a
// go-kit endpoint.
func MakeShortenEndpoint(svc shortener) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(shortenRequest)
		result, err := svc.Shorten(ctx, req.URL, req.Alias, req.Owner)
		if err != nil {
			return nil, err
		}
		return shortenResponse{Alias: result.Slug, URL: result.URL}, nil
	}
}

func DecodeShortenRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req shortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, domain.Wrap(domain.KindValidation, "malformed request body", err)
	}
	return req, nil
}

func EncodeShortenResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(response)
}
