package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server/config"
	"github.com/dmitrijs2005/gophaccounts/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		EndpointAddrHTTP:            "127.0.0.1:0",
		EndpointAddrGRPC:            "127.0.0.1:0",
		DatabaseDSN:                 config.InMemoryDSN,
		SecretKey:                   "app-secret",
		AccessTokenValidityDuration: time.Hour,
		PasswordHashCost:            bcrypt.MinCost,
		AllowBiometricOverwrite:     true,
		LogLevel:                    "error",
		LogFormat:                   "text",
	}
}

func TestOpenStore_Memory(t *testing.T) {
	db, m, err := OpenStore(context.Background(), config.InMemoryDSN, logging.Discard())
	require.NoError(t, err)
	assert.Nil(t, db)
	assert.IsType(t, &repomanager.MemoryRepositoryManager{}, m)
}

func fastBackoff(t *testing.T) {
	t.Helper()
	orig := pingBackoff
	pingBackoff = time.Millisecond
	t.Cleanup(func() { pingBackoff = orig })
}

func TestPing_RetriesUntilReady(t *testing.T) {
	fastBackoff(t)
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("starting up"))
	mock.ExpectPing()

	require.NoError(t, ping(context.Background(), db, logging.Discard()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPing_GivesUp(t *testing.T) {
	fastBackoff(t)
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < pingAttempts; i++ {
		mock.ExpectPing().WillReturnError(errors.New("down"))
	}

	err = ping(context.Background(), db, logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
}
