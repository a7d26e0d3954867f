package usecase

import (
	"log/slog"
	"net/http"

	"github.com/m-mizutani/ctxlog"
)

type loggingTransport struct {
	base http.RoundTripper
}

// NewLoggingTransport logs every request URL at debug level before and after it
// is sent.
func NewLoggingTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &loggingTransport{base: base}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	logger := ctxlog.From(req.Context())
	logger.Debug("Requesting", slog.String("url", req.URL.String()))

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		logger.Debug("Request failed",
			slog.String("url", req.URL.String()),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	logger.Debug("Requested",
		slog.String("url", req.URL.String()),
		slog.Int("status", resp.StatusCode),
	)
	return resp, nil
}
