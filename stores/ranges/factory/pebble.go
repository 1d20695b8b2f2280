package factory

import (
	"context"
	"net/url"

	"github.com/kodemon/sats/settings"
	"github.com/kodemon/sats/stores/ranges"
	"github.com/kodemon/sats/stores/ranges/pebble"
	"github.com/kodemon/sats/ulogger"
)

func init() {
	availableDatabases["pebble"] = func(_ context.Context, logger ulogger.Logger, tSettings *settings.Settings, url *url.URL) (ranges.Store, error) {
		return pebble.New(logger, tSettings, url)
	}
}
