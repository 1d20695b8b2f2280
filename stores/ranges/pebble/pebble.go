// Package pebble implements ranges.Store on an embedded Pebble database.
package pebble

import (
	"context"
	"net/http"
	"net/url"
	"os"

	"github.com/cockroachdb/pebble"
	"github.com/kodemon/sats/errors"
	"github.com/kodemon/sats/model"
	"github.com/kodemon/sats/settings"
	"github.com/kodemon/sats/stores/ranges"
	"github.com/kodemon/sats/ulogger"
)

const cacheSize = 64 << 20

type Store struct {
	logger ulogger.Logger
	path   string
	db     *pebble.DB
}

func New(logger ulogger.Logger, tSettings *settings.Settings, storeURL *url.URL) (*Store, error) {
	path, err := ranges.ResolvePath(storeURL, tSettings.DataFolder)
	if err != nil {
		return nil, err
	}

	if err = os.MkdirAll(path, 0755); err != nil {
		return nil, errors.NewStorageError("failed to create pebble folder %s", path, err)
	}

	logger.Infof("Opening Pebble at %s", path)

	cache := pebble.NewCache(cacheSize)
	defer cache.Unref()

	db, err := pebble.Open(path, &pebble.Options{
		Cache: cache,
	})
	if err != nil {
		return nil, errors.NewStorageError("couldn't open pebble at %s", path, err)
	}

	return &Store{
		logger: logger,
		path:   path,
		db:     db,
	}, nil
}

func (s *Store) Health(_ context.Context, _ bool) (int, string, error) {
	return http.StatusOK, "Pebble at " + s.path, nil
}

func (s *Store) get(key []byte) ([]byte, error) {
	val, closer, err := s.db.Get(key)
	if err != nil {
		return nil, err
	}

	defer closer.Close()

	// val is only valid until closer is closed
	return append([]byte{}, val...), nil
}

func (s *Store) GetLastCommittedHeight(_ context.Context) (uint64, bool, error) {
	b, err := s.get(ranges.HeightKey)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
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
	b, err := s.get(ranges.RangesKey(outpoint))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
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

	b := s.db.NewBatch()
	defer b.Close()

	for i := range batch.Deletes {
		if err := b.Delete(ranges.RangesKey(&batch.Deletes[i]), nil); err != nil {
			return errors.NewStorageError("[Commit][%d] failed to delete %s", batch.Height, &batch.Deletes[i], err)
		}
	}

	for i := range batch.Inserts {
		if err := b.Set(ranges.RangesKey(&batch.Inserts[i].OutPoint), batch.Inserts[i].Ranges, nil); err != nil {
			return errors.NewStorageError("[Commit][%d] failed to set %s", batch.Height, &batch.Inserts[i].OutPoint, err)
		}
	}

	if err := b.Set(ranges.HeightKey, ranges.EncodeHeight(batch.Height), nil); err != nil {
		return errors.NewStorageError("[Commit][%d] failed to set height", batch.Height, err)
	}

	if err := b.Commit(pebble.Sync); err != nil {
		return errors.NewStorageError("[Commit][%d] failed to commit batch", batch.Height, err)
	}

	return nil
}

func (s *Store) Checkpoint(_ context.Context) error {
	if err := s.db.Flush(); err != nil {
		return errors.NewStorageError("[Checkpoint] flush failed", err)
	}

	return nil
}

func (s *Store) Close(_ context.Context) error {
	if err := s.db.Close(); err != nil {
		return errors.NewStorageError("failed to close pebble", err)
	}

	return nil
}
