package usecase_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/octastat/pkg/usecase"
)

func TestLoggingTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.With(t.Context(), logger)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/repos/owner/repo", nil)
	gt.NoError(t, err)

	client := &http.Client{Transport: usecase.NewLoggingTransport(nil)}
	resp, err := client.Do(req)
	gt.NoError(t, err)
	defer resp.Body.Close()
	gt.Equal(t, resp.StatusCode, http.StatusTeapot)

	logs := buf.String()
	gt.True(t, strings.Contains(logs, "msg=Requesting"))
	gt.True(t, strings.Contains(logs, "msg=Requested"))
	gt.True(t, strings.Contains(logs, "status=418"))
	gt.True(t, strings.Contains(logs, "/repos/owner/repo"))
}
