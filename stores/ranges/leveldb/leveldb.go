// Package leveldb implements ranges.Store on an embedded LevelDB database.
package leveldb

import (
	"context"
	"net/http"
	"net/url"
	"os"

	"github.com/btcsuite/goleveldb/leveldb"
	"github.com/btcsuite/goleveldb/leveldb/opt"
	"github.com/btcsuite/goleveldb/leveldb/util"
	"github.com/kodemon/sats/errors"
	"github.com/kodemon/sats/model"
	"github.com/kodemon/sats/settings"
	"github.com/kodemon/sats/stores/ranges"
	"github.com/kodemon/sats/ulogger"
)

type Store struct {
	logger ulogger.Logger
	path   string
	db     *leveldb.DB
}

func New(logger ulogger.Logger, tSettings *settings.Settings, storeURL *url.URL) (*Store, error) {
	path, err := ranges.ResolvePath(storeURL, tSettings.DataFolder)
	if err != nil {
		return nil, err
	}

	if err = os.MkdirAll(path, 0755); err != nil {
		return nil, errors.NewStorageError("failed to create leveldb folder %s", path, err)
	}

	logger.Infof("Opening LevelDB at %s", path)

	db, err := leveldb.OpenFile(path, &opt.Options{
		Compression: opt.NoCompression,
	})
	if err != nil {
		return nil, errors.NewStorageError("couldn't open LevelDB at %s", path, err)
	}

	return &Store{
		logger: logger,
		path:   path,
		db:     db,
	}, nil
}

func (s *Store) Health(_ context.Context, checkLiveness bool) (int, string, error) {
	details := "LevelDB at " + s.path

	if checkLiveness {
		return http.StatusOK, details, nil
	}

	if _, err := s.db.GetProperty("leveldb.stats"); err != nil {
		return http.StatusServiceUnavailable, details, errors.NewStorageUnavailableError("leveldb unavailable", err)
	}

	return http.StatusOK, details, nil
}

func (s *Store) GetLastCommittedHeight(_ context.Context) (uint64, bool, error) {
	b, err := s.db.Get(ranges.HeightKey, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return 0, false, nil
		}

		return 0, false, errors.NewStorageError("[GetLastCommittedHeight] failed to read height", err)
	}

	height, err := ranges.DecodeHeight(b)
	if err != nil {
		return 0, false, err
	}

	return height, true, nil
}

func (s *Store) GetRanges(_ context.Context, outpoint *model.OutPoint) ([]byte, error) {
	b, err := s.db.Get(ranges.RangesKey(outpoint), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, errors.NewNotFoundError("[GetRanges][%s] not found", outpoint)
		}

		return nil, errors.NewStorageError("[GetRanges][%s] failed to read ranges", outpoint, err)
	}

	return b, nil
}

func (s *Store) Commit(ctx context.Context, batch *ranges.Batch) error {
	if err := ctx.Err(); err != nil {
		return errors.NewStorageError("[Commit][%d] context done", batch.Height, err)
	}

	b := new(leveldb.Batch)

	for i := range batch.Deletes {
		b.Delete(ranges.RangesKey(&batch.Deletes[i]))
	}

	for i := range batch.Inserts {
		b.Put(ranges.RangesKey(&batch.Inserts[i].OutPoint), batch.Inserts[i].Ranges)
	}

	b.Put(ranges.HeightKey, ranges.EncodeHeight(batch.Height))

	if err := s.db.Write(b, &opt.WriteOptions{Sync: true}); err != nil {
		return errors.NewStorageError("[Commit][%d] failed to write batch", batch.Height, err)
	}

	return nil
}

func (s *Store) Checkpoint(_ context.Context) error {
	if err := s.db.CompactRange(util.Range{}); err != nil {
		return errors.NewStorageError("[Checkpoint] compaction failed", err)
	}

	return nil
}

func (s *Store) Close(_ context.Context) error {
	if err := s.db.Close(); err != nil {
		return errors.NewStorageError("failed to close leveldb", err)
	}

	return nil
}

// Count iterates the ranges prefix and returns the number of stored outputs.
func (s *Store) Count() (int, error) {
	iter := s.db.NewIterator(util.BytesPrefix(ranges.RangesKeyPrefix), nil)
	defer iter.Release()

	n := 0
	for iter.Next() {
		n++
	}

	if err := iter.Error(); err != nil {
		return 0, errors.NewStorageError("failed to iterate leveldb", err)
	}

	return n, nil
}
