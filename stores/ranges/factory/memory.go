package factory

import (
	"context"
	"net/url"

	"github.com/kodemon/sats/settings"
	"github.com/kodemon/sats/stores/ranges"
	"github.com/kodemon/sats/stores/ranges/memory"
	"github.com/kodemon/sats/ulogger"
)

func init() {
	availableDatabases["memory"] = func(_ context.Context, logger ulogger.Logger, _ *settings.Settings, _ *url.URL) (ranges.Store, error) {
		return memory.New(logger), nil
	}
}
