// Package httpapi serves the GraphQL endpoint together with the metrics and
// health endpoints.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server/guard"
	"github.com/dmitrijs2005/gophaccounts/internal/server/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	GraphQLPath = "/graphql"
	MetricsPath = "/metrics"
	HealthPath  = "/healthz"

	shutdownTimeout = 5 * time.Second
)

type HTTPServer struct {
	address  string
	graphql  http.Handler
	registry *prometheus.Registry
	logger   logging.Logger
}

func NewHTTPServer(a string, l logging.Logger, graphql http.Handler, reg *prometheus.Registry) *HTTPServer {
	return &HTTPServer{
		address:  a,
		graphql:  graphql,
		registry: reg,
		logger:   l.With("module", "http_server"),
	}
}

// Handler returns the routed and instrumented handler.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle(GraphQLPath, s.instrument(GraphQLPath, guard.BearerMiddleware(s.graphql)))
	mux.Handle(MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.Handle(HealthPath, s.instrument(HealthPath, http.HandlerFunc(handleHealth)))

	return mux
}

func (s *HTTPServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *HTTPServer) instrument(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		metrics.RecordHTTPRequest(path, strconv.Itoa(rec.status), elapsed)
		s.logger.Debug(r.Context(), "request served",
			"method", r.Method, "path", path, "status", rec.status, "duration", elapsed)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}
