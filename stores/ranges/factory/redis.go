package factory

import (
	"context"
	"net/url"

	"github.com/kodemon/sats/settings"
	"github.com/kodemon/sats/stores/ranges"
	"github.com/kodemon/sats/stores/ranges/redis"
	"github.com/kodemon/sats/ulogger"
)

func init() {
	availableDatabases["redis"] = func(ctx context.Context, logger ulogger.Logger, _ *settings.Settings, url *url.URL) (ranges.Store, error) {
		return redis.New(ctx, logger, url)
	}
}
