package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server/guard"
	"github.com/dmitrijs2005/gophaccounts/internal/server/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newServer(t *testing.T, addr string, graphql http.Handler) *HTTPServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics.RegisterMetrics(reg)
	return NewHTTPServer(addr, logging.Discard(), graphql, reg)
}

func TestHandler_Health(t *testing.T) {
	s := newServer(t, "", http.NotFoundHandler())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, HealthPath, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestHandler_GraphQLGetsBearerToken(t *testing.T) {
	var token string
	s := newServer(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _ = guard.TokenFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodPost, GraphQLPath, strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "tok-1", token)
}

func TestHandler_Metrics(t *testing.T) {
	s := newServer(t, "", http.NotFoundHandler())
	h := s.Handler()

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, HealthPath, nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, MetricsPath, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `gophaccounts_http_request_duration_seconds_count{code="200",path="/healthz"}`)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s := newServer(t, "127.0.0.1:0", http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	s := newServer(t, "127.0.0.1:99999", http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.Error(t, s.Run(ctx))
}
