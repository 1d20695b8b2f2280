package sql

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kodemon/sats/settings"
	"github.com/kodemon/sats/stores/ranges"
	"github.com/kodemon/sats/stores/ranges/tests"
	"github.com/kodemon/sats/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func testSettings(t *testing.T) *settings.Settings {
	return &settings.Settings{
		DataFolder: t.TempDir(),
		Postgres: settings.PostgresSettings{
			MaxIdleConns: 2,
			MaxOpenConns: 4,
		},
	}
}

func newStore(t *testing.T, tSettings *settings.Settings, rawURL string) *Store {
	storeURL, err := url.Parse(rawURL)
	require.NoError(t, err)

	s, err := New(context.Background(), ulogger.TestLogger{}, tSettings, storeURL)
	require.NoError(t, err)

	return s
}

func TestSqliteMemory(t *testing.T) {
	tests.All(t, func(t *testing.T) ranges.Store {
		return newStore(t, testSettings(t), "sqlitememory:///ranges")
	})
}

func TestSqlite(t *testing.T) {
	tests.All(t, func(t *testing.T) ranges.Store {
		return newStore(t, testSettings(t), "sqlite:///ranges")
	})
}

func TestSqliteReopen(t *testing.T) {
	tSettings := testSettings(t)

	tests.Reopen(t, func(t *testing.T) ranges.Store {
		return newStore(t, tSettings, "sqlite:///sats")
	})

	_, err := os.Stat(filepath.Join(tSettings.DataFolder, "sats.db"))
	require.NoError(t, err)
}

func TestUnknownEngine(t *testing.T) {
	storeURL, err := url.Parse("mysql://localhost/sats")
	require.NoError(t, err)

	_, err = New(context.Background(), ulogger.TestLogger{}, testSettings(t), storeURL)
	require.Error(t, err)
}

func TestCommitRollsBackOnCancel(t *testing.T) {
	s := newStore(t, testSettings(t), "sqlitememory:///ranges")
	defer func() {
		_ = s.Close(context.Background())
	}()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := ranges.NewBatch(7, 0, 0)
	require.Error(t, s.Commit(ctx, batch))

	_, found, err := s.GetLastCommittedHeight(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16",
		postgres.WithDatabase("sats"),
		postgres.WithUsername("sats"),
		postgres.WithPassword("sats"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2*time.Minute),
		),
	)
	require.NoError(t, err)

	defer func() {
		assert.NoError(t, pgContainer.Terminate(ctx))
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	tSettings := testSettings(t)

	tests.All(t, func(t *testing.T) ranges.Store {
		s := newStore(t, tSettings, connStr)

		_, err := s.db.ExecContext(ctx, "TRUNCATE ranges, indexer")
		require.NoError(t, err)

		return s
	})
}
