package slogx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/hireflow/pkg/idx"
)

// Transport is an http.RoundTripper that stamps a request id on outgoing
// requests and logs each call at debug level (warn on transport failure).
// The id comes from the request context when one was set with
// WithRequestID.
type Transport struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

// NewTransport wraps base (http.DefaultTransport when nil).
func NewTransport(base http.RoundTripper, logger *slog.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{Base: base, Logger: logger}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	if req.Header.Get(RequestIDHeader) == "" {
		// RoundTrippers must not mutate the caller's request.
		id := RequestID(req.Context())
		if id == "" {
			id = idx.New().String()
		}
		req = req.Clone(req.Context())
		req.Header.Set(RequestIDHeader, id)
	}

	log := t.Logger.With(
		"req_id", req.Header.Get(RequestIDHeader),
		"method", req.Method,
		"url", req.URL.Redacted(),
	)

	resp, err := t.Base.RoundTrip(req)
	if err != nil {
		log.Warn("outbound request failed",
			"duration_ms", time.Since(start).Milliseconds(),
			"err", err,
		)
		return nil, err
	}

	log.Debug("outbound request",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}
