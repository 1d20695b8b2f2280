// Package cmdutil holds what the sats commands share: the common flags, the
// settings they override, logger setup and opening the ranges store.
package cmdutil

import (
	"context"
	"net/url"

	"github.com/kodemon/sats/errors"
	"github.com/kodemon/sats/settings"
	"github.com/kodemon/sats/stores/ranges"
	"github.com/kodemon/sats/stores/ranges/factory"
	"github.com/kodemon/sats/ulogger"
	"github.com/urfave/cli/v2"
)

const (
	FlagDataDir  = "data-dir"
	FlagStore    = "store"
	FlagLogLevel = "log-level"
)

// StoreFlags are accepted by every command that opens the ranges store.
func StoreFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    FlagDataDir,
			Usage:   "folder holding the ranges store, overrides dataFolder",
			EnvVars: []string{"SATS_DATA_DIR"},
		},
		&cli.StringFlag{
			Name:  FlagStore,
			Usage: "ranges store URL, e.g. sqlite:///sats or pebble:///ranges, overrides indexer_store",
		},
		&cli.StringFlag{
			Name:  FlagLogLevel,
			Usage: "DEBUG, INFO, WARN or ERROR, overrides logLevel",
		},
	}
}

// Settings returns tSettings with the store flags of c applied.
func Settings(c *cli.Context, tSettings *settings.Settings) (*settings.Settings, error) {
	if c.IsSet(FlagDataDir) {
		tSettings.DataFolder = c.String(FlagDataDir)
	}

	if c.IsSet(FlagLogLevel) {
		tSettings.LogLevel = c.String(FlagLogLevel)
	}

	if c.IsSet(FlagStore) {
		storeURL, err := url.Parse(c.String(FlagStore))
		if err != nil {
			return nil, errors.NewConfigurationError("invalid --%s %q", FlagStore, c.String(FlagStore), err)
		}

		tSettings.Indexer.StoreURL = storeURL
	}

	if tSettings.DataFolder == "" {
		return nil, errors.NewConfigurationError("a data directory is required, set dataFolder or --%s", FlagDataDir)
	}

	return tSettings, nil
}

func Logger(service string, tSettings *settings.Settings) ulogger.Logger {
	return ulogger.New(service,
		ulogger.WithLoggerType(tSettings.LoggerType),
		ulogger.WithLevel(tSettings.LogLevel),
		ulogger.WithPrettyLogs(tSettings.PrettyLogs),
	)
}

// OpenStore opens the configured ranges store. The returned close function logs
// instead of failing.
func OpenStore(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings) (ranges.Store, func(), error) {
	store, err := factory.NewStore(ctx, logger, tSettings)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		if err := store.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Errorf("failed to close ranges store: %v", err)
		}
	}

	return store, closeFn, nil
}
