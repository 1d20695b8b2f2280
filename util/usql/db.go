// Package usql wraps database/sql so every statement and transaction shows up
// in the gocore stats, keyed by its query text.
package usql

import (
	"context"
	"database/sql"
	"time"

	"github.com/ordishs/gocore"
)

var (
	stat   = gocore.NewStat("SQL")
	txStat = stat.NewStat("tx")
)

type DB struct {
	*sql.DB
}

func Open(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := gocore.CurrentTime()
	defer stat.NewStat(query).AddTime(start)

	return db.DB.QueryRowContext(ctx, query, args...)
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := gocore.CurrentTime()
	defer stat.NewStat(query).AddTime(start)

	return db.DB.ExecContext(ctx, query, args...)
}

// BeginTx starts a transaction whose statements, commit and overall lifetime are timed.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	start := gocore.CurrentTime()
	defer txStat.NewStat("BEGIN").AddTime(start)

	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}

	return &Tx{Tx: tx, start: start}, nil
}

type Tx struct {
	*sql.Tx
	start time.Time
}

func (tx *Tx) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	start := gocore.CurrentTime()
	defer txStat.NewStat("PREPARE " + query).AddTime(start)

	return tx.Tx.PrepareContext(ctx, query)
}

func (tx *Tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := gocore.CurrentTime()
	defer txStat.NewStat(query).AddTime(start)

	return tx.Tx.ExecContext(ctx, query, args...)
}

// Commit also records the time since BeginTx under "total".
func (tx *Tx) Commit() error {
	start := gocore.CurrentTime()

	defer func() {
		txStat.NewStat("COMMIT").AddTime(start)
		txStat.NewStat("total").AddTime(tx.start)
	}()

	return tx.Tx.Commit()
}
