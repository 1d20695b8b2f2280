// Package sql implements ranges.Store on top of postgres and sqlite.
package sql

import (
	"context"
	"database/sql"
	"net/http"
	"net/url"

	"github.com/kodemon/sats/errors"
	"github.com/kodemon/sats/model"
	"github.com/kodemon/sats/settings"
	"github.com/kodemon/sats/stores/ranges"
	"github.com/kodemon/sats/ulogger"
	"github.com/kodemon/sats/util"
	"github.com/kodemon/sats/util/usql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusRangesGet     prometheus.Counter
	prometheusRangesCommit  prometheus.Counter
	prometheusRangesInserts prometheus.Counter
	prometheusRangesDeletes prometheus.Counter
	prometheusRangesErrors  *prometheus.CounterVec
)

func init() {
	prometheusRangesGet = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "indexer",
			Name:      "sql_ranges_get",
			Help:      "Number of ranges get calls done to sql",
		},
	)
	prometheusRangesCommit = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "indexer",
			Name:      "sql_ranges_commit",
			Help:      "Number of checkpoint commits done to sql",
		},
	)
	prometheusRangesInserts = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "indexer",
			Name:      "sql_ranges_inserts",
			Help:      "Number of ranges rows written to sql",
		},
	)
	prometheusRangesDeletes = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "indexer",
			Name:      "sql_ranges_deletes",
			Help:      "Number of ranges rows deleted from sql",
		},
	)
	prometheusRangesErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "indexer",
			Name:      "sql_ranges_errors",
			Help:      "Number of sql ranges store errors",
		},
		[]string{
			"function", // function raising the error
		},
	)
}

type Store struct {
	logger ulogger.Logger
	db     *usql.DB
	engine util.SQLEngine
}

func New(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings, storeURL *url.URL) (*Store, error) {
	db, err := util.InitSQLDB(logger, storeURL, tSettings)
	if err != nil {
		return nil, errors.NewStorageError("failed to init sql db", err)
	}

	engine := util.SQLEngine(storeURL.Scheme)

	switch engine {
	case util.Postgres:
		if err = createPostgresSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, errors.NewStorageError("failed to create postgres schema", err)
		}

	case util.Sqlite, util.SqliteMemory:
		if err = createSqliteSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, errors.NewStorageError("failed to create sqlite schema", err)
		}

	default:
		_ = db.Close()
		return nil, errors.NewConfigurationError("unknown database engine: %s", storeURL.Scheme)
	}

	return &Store{
		logger: logger,
		db:     db,
		engine: engine,
	}, nil
}

func (s *Store) Health(ctx context.Context, _ bool) (int, string, error) {
	details := "SQL Engine is " + string(s.engine)

	var num int

	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&num); err != nil {
		return http.StatusServiceUnavailable, details, errors.NewStorageUnavailableError("sql ranges store unreachable", err)
	}

	return http.StatusOK, details, nil
}

func (s *Store) GetLastCommittedHeight(ctx context.Context) (uint64, bool, error) {
	var height int64

	err := s.db.QueryRowContext(ctx, "SELECT height FROM indexer WHERE id = 0").Scan(&height)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}

		prometheusRangesErrors.WithLabelValues("GetLastCommittedHeight").Inc()

		return 0, false, errors.NewStorageError("[GetLastCommittedHeight] failed to read height", err)
	}

	if height < 0 {
		return 0, false, errors.NewDataCorruptError("[GetLastCommittedHeight] negative height %d", height)
	}

	return uint64(height), true, nil
}

func (s *Store) GetRanges(ctx context.Context, outpoint *model.OutPoint) ([]byte, error) {
	prometheusRangesGet.Inc()

	var b []byte

	err := s.db.QueryRowContext(ctx, "SELECT ranges FROM ranges WHERE outpoint = $1", outpoint.Bytes()).Scan(&b)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("[GetRanges][%s] not found", outpoint)
		}

		prometheusRangesErrors.WithLabelValues("GetRanges").Inc()

		return nil, errors.NewStorageError("[GetRanges][%s] failed to read ranges", outpoint, err)
	}

	if b == nil {
		b = []byte{}
	}

	return b, nil
}

func (s *Store) Commit(ctx context.Context, batch *ranges.Batch) (err error) {
	prometheusRangesCommit.Inc()

	defer func() {
		if err != nil {
			prometheusRangesErrors.WithLabelValues("Commit").Inc()
		}
	}()

	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStorageError("[Commit][%d] failed to begin transaction", batch.Height, err)
	}

	defer func() {
		_ = txn.Rollback()
	}()

	if len(batch.Deletes) > 0 {
		stmt, err := txn.PrepareContext(ctx, "DELETE FROM ranges WHERE outpoint = $1")
		if err != nil {
			return errors.NewStorageError("[Commit][%d] failed to prepare delete", batch.Height, err)
		}

		for _, outpoint := range batch.Deletes {
			if _, err = stmt.ExecContext(ctx, outpoint.Bytes()); err != nil {
				_ = stmt.Close()
				return errors.NewStorageError("[Commit][%d] failed to delete %s", batch.Height, &outpoint, err)
			}
		}

		_ = stmt.Close()
	}

	if len(batch.Inserts) > 0 {
		stmt, err := txn.PrepareContext(ctx, `
			INSERT INTO ranges (outpoint, ranges) VALUES ($1, $2)
			ON CONFLICT (outpoint) DO UPDATE SET ranges = excluded.ranges
		`)
		if err != nil {
			return errors.NewStorageError("[Commit][%d] failed to prepare insert", batch.Height, err)
		}

		for _, entry := range batch.Inserts {
			b := entry.Ranges
			if b == nil {
				b = []byte{}
			}

			if _, err = stmt.ExecContext(ctx, entry.OutPoint.Bytes(), b); err != nil {
				_ = stmt.Close()
				return errors.NewStorageError("[Commit][%d] failed to insert %s", batch.Height, &entry.OutPoint, err)
			}
		}

		_ = stmt.Close()
	}

	if _, err = txn.ExecContext(ctx, `
		INSERT INTO indexer (id, height) VALUES (0, $1)
		ON CONFLICT (id) DO UPDATE SET height = excluded.height
	`, int64(batch.Height)); err != nil {
		return errors.NewStorageError("[Commit][%d] failed to store height", batch.Height, err)
	}

	if err = txn.Commit(); err != nil {
		return errors.NewStorageError("[Commit][%d] failed to commit transaction", batch.Height, err)
	}

	prometheusRangesDeletes.Add(float64(len(batch.Deletes)))
	prometheusRangesInserts.Add(float64(len(batch.Inserts)))

	return nil
}

func (s *Store) Checkpoint(ctx context.Context) error {
	var query string

	switch s.engine {
	case util.Postgres:
		query = "CHECKPOINT"
	case util.Sqlite:
		query = "PRAGMA wal_checkpoint(TRUNCATE)"
	default:
		return nil
	}

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		prometheusRangesErrors.WithLabelValues("Checkpoint").Inc()
		return errors.NewStorageError("[Checkpoint] %s failed", query, err)
	}

	return nil
}

func (s *Store) Close(_ context.Context) error {
	if err := s.db.Close(); err != nil {
		return errors.NewStorageError("failed to close sql db", err)
	}

	return nil
}

func createPostgresSchema(ctx context.Context, db *usql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS indexer (
		 id     INTEGER PRIMARY KEY
		,height BIGINT NOT NULL
		);
	`); err != nil {
		return errors.NewStorageError("could not create indexer table", err)
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS ranges (
		 outpoint BYTEA PRIMARY KEY
		,ranges   BYTEA NOT NULL
		);
	`); err != nil {
		return errors.NewStorageError("could not create ranges table", err)
	}

	return nil
}

func createSqliteSchema(ctx context.Context, db *usql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS indexer (
		 id     INTEGER PRIMARY KEY
		,height BIGINT NOT NULL
		);
	`); err != nil {
		return errors.NewStorageError("could not create indexer table", err)
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS ranges (
		 outpoint BLOB PRIMARY KEY
		,ranges   BLOB NOT NULL
		) WITHOUT ROWID;
	`); err != nil {
		return errors.NewStorageError("could not create ranges table", err)
	}

	return nil
}
