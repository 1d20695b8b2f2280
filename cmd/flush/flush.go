// Package flush implements the flush command, which forces the ranges store to
// persist its write ahead log into primary storage.
package flush

import (
	"context"
	"time"

	"github.com/kodemon/sats/cmd/cmdutil"
	"github.com/kodemon/sats/settings"
	"github.com/kodemon/sats/stores/ranges"
	"github.com/kodemon/sats/ulogger"
	"github.com/urfave/cli/v2"
)

func Command(tSettings *settings.Settings) *cli.Command {
	return &cli.Command{
		Name:  "flush",
		Usage: "checkpoint the ranges store",
		Flags: cmdutil.StoreFlags(),
		Action: func(c *cli.Context) error {
			s, err := cmdutil.Settings(c, tSettings)
			if err != nil {
				return err
			}

			logger := cmdutil.Logger("flush", s)

			store, closeStore, err := cmdutil.OpenStore(c.Context, logger, s)
			if err != nil {
				return err
			}
			defer closeStore()

			return Flush(c.Context, logger, store)
		},
	}
}

func Flush(ctx context.Context, logger ulogger.Logger, store ranges.Store) error {
	start := time.Now()

	if err := store.Checkpoint(ctx); err != nil {
		return err
	}

	height, found, err := store.GetLastCommittedHeight(ctx)
	if err != nil {
		return err
	}

	if found {
		logger.Infof("flushed ranges store at height %d in %s", height, time.Since(start))
	} else {
		logger.Infof("flushed empty ranges store in %s", time.Since(start))
	}

	return nil
}
