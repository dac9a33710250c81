// Package server initializes and runs the account server: it opens the
// account store, wires services, the access guard and the GraphQL API, and
// runs the HTTP and gRPC endpoints until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server/auth"
	"github.com/dmitrijs2005/gophaccounts/internal/server/config"
	"github.com/dmitrijs2005/gophaccounts/internal/server/graphql"
	"github.com/dmitrijs2005/gophaccounts/internal/server/guard"
	"github.com/dmitrijs2005/gophaccounts/internal/server/httpapi"
	"github.com/dmitrijs2005/gophaccounts/internal/server/metrics"
	"github.com/dmitrijs2005/gophaccounts/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophaccounts/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sethvargo/go-retry"

	gs "github.com/dmitrijs2005/gophaccounts/internal/server/grpc"
)

const pingAttempts = 5

var pingBackoff = 500 * time.Millisecond

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *httpapi.HTTPServer
	grpcServer *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(os.Stdout, c.LogFormat, c.LogLevel)

	db, m, err := OpenStore(ctx, c.DatabaseDSN, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterMetrics(registry)

	codec := auth.NewTokenCodec(c.SecretKey, c.AccessTokenValidityDuration)
	hasher := auth.NewBcryptHasher(c.PasswordHashCost)

	accounts := services.NewAccountService(db, m, hasher, codec, c, logger)
	g := guard.NewGuard(codec, accounts, logger)
	resolver := graphql.NewResolver(accounts, g, logger)

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		httpServer: httpapi.NewHTTPServer(c.EndpointAddrHTTP, logger, graphql.NewHandler(resolver), registry),
		grpcServer: gs.NewGRPCServer(c.EndpointAddrGRPC, logger),
	}, nil
}

// OpenStore connects to the account store named by dsn and migrates it.
// The in-memory DSN returns a nil *sql.DB.
func OpenStore(ctx context.Context, dsn string, logger logging.Logger) (*sql.DB, repomanager.RepositoryManager, error) {
	if dsn == config.InMemoryDSN {
		logger.Warn(ctx, "using in-memory account store, data will not survive a restart")
		return nil, repomanager.NewMemoryRepositoryManager(), nil
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, err
	}

	if err := ping(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrations failed: %w", err)
	}

	return db, m, nil
}

// ping waits for the database to accept connections, backing off
// exponentially between attempts.
func ping(ctx context.Context, db *sql.DB, logger logging.Logger) error {
	b := retry.WithMaxRetries(pingAttempts-1, retry.NewExponential(pingBackoff))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			logger.Warn(ctx, "database not ready", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startServer(ctx context.Context, cancelFunc context.CancelFunc, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a shutdown signal arrives or one of
// the servers fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startServer(ctx, cancelFunc, "http", app.httpServer.Run)
	}()
	go func() {
		defer wg.Done()
		app.startServer(ctx, cancelFunc, "grpc", app.grpcServer.Run)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "error closing database", "error", err)
		}
	}

	app.logger.Info(ctx, "App stopped")
}
