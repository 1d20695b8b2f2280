package factory

import (
	"context"
	"net/url"

	"github.com/kodemon/sats/settings"
	"github.com/kodemon/sats/stores/ranges"
	"github.com/kodemon/sats/stores/ranges/sql"
	"github.com/kodemon/sats/ulogger"
)

func init() {
	newSQL := func(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings, url *url.URL) (ranges.Store, error) {
		return sql.New(ctx, logger, tSettings, url)
	}

	availableDatabases["postgres"] = newSQL
	availableDatabases["sqlite"] = newSQL
	availableDatabases["sqlitememory"] = newSQL
}
