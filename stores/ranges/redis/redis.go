// Package redis implements ranges.Store on a redis server. Every commit runs as
// a single MULTI/EXEC transaction.
package redis

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/kodemon/sats/errors"
	"github.com/kodemon/sats/model"
	"github.com/kodemon/sats/stores/ranges"
	"github.com/kodemon/sats/ulogger"
	redis_db "github.com/redis/go-redis/v9"
)

const defaultPrefix = "sats:"

type Store struct {
	logger    ulogger.Logger
	client    *redis_db.Client
	prefix    string
	heightKey string
}

func New(ctx context.Context, logger ulogger.Logger, storeURL *url.URL) (*Store, error) {
	u := *storeURL

	query := u.Query()

	prefix := query.Get("prefix")
	if prefix == "" {
		prefix = defaultPrefix
	}

	// options go-redis does not know about
	query.Del("prefix")
	query.Del("logging")
	u.RawQuery = query.Encode()

	opts, err := redis_db.ParseURL(u.String())
	if err != nil {
		return nil, errors.NewConfigurationError("invalid redis URL %s", storeURL.Redacted(), err)
	}

	client := redis_db.NewClient(opts)

	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewStorageUnavailableError("failed to connect to redis at %s", opts.Addr, err)
	}

	logger.Infof("Using redis at %s with key prefix %q", opts.Addr, prefix)

	return &Store{
		logger:    logger,
		client:    client,
		prefix:    prefix,
		heightKey: prefix + string(ranges.HeightKey),
	}, nil
}

func (s *Store) key(outpoint *model.OutPoint) string {
	return s.prefix + string(ranges.RangesKey(outpoint))
}

func (s *Store) Health(ctx context.Context, checkLiveness bool) (int, string, error) {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return http.StatusServiceUnavailable, "NO_PING", errors.NewStorageUnavailableError("redis ping failed", err)
	}

	if checkLiveness {
		key := s.prefix + "health_check"

		pipe := s.client.Pipeline()
		pipe.Set(ctx, key, "ok", time.Second) // 1 second is minimum TTL for Redis
		pipe.Get(ctx, key)
		pipe.Del(ctx, key)

		if _, err := pipe.Exec(ctx); err != nil {
			return http.StatusServiceUnavailable, "NO_SET_GET_DEL", errors.NewStorageError("redis operations check failed", err)
		}
	}

	return http.StatusOK, "OK", nil
}

func (s *Store) GetLastCommittedHeight(ctx context.Context) (uint64, bool, error) {
	b, err := s.client.Get(ctx, s.heightKey).Bytes()
	if err != nil {
		if errors.Is(err, redis_db.Nil) {
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

func (s *Store) GetRanges(ctx context.Context, outpoint *model.OutPoint) ([]byte, error) {
	b, err := s.client.Get(ctx, s.key(outpoint)).Bytes()
	if err != nil {
		if errors.Is(err, redis_db.Nil) {
			return nil, errors.NewNotFoundError("[GetRanges][%s] not found", outpoint)
		}

		return nil, errors.NewStorageError("[GetRanges][%s] failed to read ranges", outpoint, err)
	}

	return b, nil
}

func (s *Store) Commit(ctx context.Context, batch *ranges.Batch) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis_db.Pipeliner) error {
		for i := range batch.Deletes {
			pipe.Del(ctx, s.key(&batch.Deletes[i]))
		}

		for i := range batch.Inserts {
			pipe.Set(ctx, s.key(&batch.Inserts[i].OutPoint), batch.Inserts[i].Ranges, 0)
		}

		pipe.Set(ctx, s.heightKey, ranges.EncodeHeight(batch.Height), 0)

		return nil
	})
	if err != nil {
		return errors.NewStorageError("[Commit][%d] redis transaction failed", batch.Height, err)
	}

	return nil
}

func (s *Store) Checkpoint(ctx context.Context) error {
	if err := s.client.Save(ctx).Err(); err != nil {
		return errors.NewStorageError("[Checkpoint] redis SAVE failed", err)
	}

	return nil
}

func (s *Store) Close(_ context.Context) error {
	if err := s.client.Close(); err != nil {
		return errors.NewStorageError("failed to close redis client", err)
	}

	return nil
}
