package transport

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-kit/kit/endpoint"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/shortnr/urlshort/internal/domain"
	"github.com/shortnr/urlshort/internal/qr"
)

// resolver is the subset of redirectsvc.Service the HTTP layer
// depends on.
type resolver interface {
	Resolve(ctx context.Context, slug string) (string, error)
}

// qrRenderer is the subset of qr.Service the HTTP layer depends on.
type qrRenderer interface {
	Render(ctx context.Context, slug string, format qr.Format, size int) ([]byte, error)
}

type redirectRequest struct {
	Slug string
}

type redirectResponse struct {
	URL string
}

// MakeRedirectEndpoint implements spec.md §4.3's lookup(slug) -> url
// operation.
func MakeRedirectEndpoint(svc resolver) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(redirectRequest)
		url, err := svc.Resolve(ctx, req.Slug)
		if err != nil {
			return nil, err
		}
		return redirectResponse{URL: url}, nil
	}
}

func DecodeRedirectRequest(_ context.Context, r *http.Request) (interface{}, error) {
	slug, ok := mux.Vars(r)["slug"]
	if !ok {
		return nil, errors.New("route matched without a slug variable")
	}
	return redirectRequest{Slug: slug}, nil
}

func EncodeRedirectResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	res := response.(redirectResponse)
	w.Header().Set("Location", res.URL)
	w.WriteHeader(http.StatusFound)
	return nil
}

type qrRequest struct {
	Slug   string
	Format qr.Format
	Size   int
}

type qrResponse struct {
	Format qr.Format
	Bytes  []byte
}

// MakeQREndpoint implements spec.md §4.3's optional qr(slug, format,
// size) -> image_bytes operation.
func MakeQREndpoint(svc qrRenderer) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(qrRequest)
		bytes, err := svc.Render(ctx, req.Slug, req.Format, req.Size)
		if err != nil {
			return nil, err
		}
		return qrResponse{Format: req.Format, Bytes: bytes}, nil
	}
}

func DecodeQRRequest(_ context.Context, r *http.Request) (interface{}, error) {
	slug, ok := mux.Vars(r)["slug"]
	if !ok {
		return nil, errors.New("route matched without a slug variable")
	}

	format := qr.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = qr.FormatPNG
	}

	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, domain.New(domain.KindValidation, "size must be an integer")
		}
		size = parsed
	}

	return qrRequest{Slug: slug, Format: format, Size: size}, nil
}

func EncodeQRResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	res := response.(qrResponse)
	switch res.Format {
	case qr.FormatSVG:
		w.Header().Set("Content-Type", "image/svg+xml")
	default:
		w.Header().Set("Content-Type", "image/png")
	}
	_, err := w.Write(res.Bytes)
	return err
}
