// Package ranges implements the ranges command, printing the committed sat
// ranges of one output.
package ranges

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kodemon/sats/cmd/cmdutil"
	"github.com/kodemon/sats/errors"
	"github.com/kodemon/sats/model"
	"github.com/kodemon/sats/settings"
	rangesstore "github.com/kodemon/sats/stores/ranges"
	"github.com/urfave/cli/v2"
)

func Command(tSettings *settings.Settings) *cli.Command {
	return &cli.Command{
		Name:      "ranges",
		Usage:     "print the committed sat ranges of an output",
		ArgsUsage: "<txid:vout>",
		Flags:     cmdutil.StoreFlags(),
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.NewInvalidArgumentError("usage: ranges <txid:vout>")
			}

			s, err := cmdutil.Settings(c, tSettings)
			if err != nil {
				return err
			}

			store, closeStore, err := cmdutil.OpenStore(c.Context, cmdutil.Logger("ranges", s), s)
			if err != nil {
				return err
			}
			defer closeStore()

			return Print(c.Context, store, c.Args().First(), os.Stdout)
		},
	}
}

// Print writes one "start end" line per range of outpoint followed by the total.
func Print(ctx context.Context, store rangesstore.Store, outpoint string, w io.Writer) error {
	op, err := model.NewOutPointFromString(outpoint)
	if err != nil {
		return err
	}

	height, found, err := store.GetLastCommittedHeight(ctx)
	if err != nil {
		return err
	}

	if !found {
		return errors.NewNotFoundError("nothing has been indexed yet")
	}

	b, err := store.GetRanges(ctx, op)
	if err != nil {
		return err
	}

	satRanges, err := model.DecodeSatRanges(b)
	if err != nil {
		return err
	}

	for _, r := range satRanges {
		if _, err = fmt.Fprintf(w, "%d %d\n", r.Start, r.End); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintf(w, "%s: %d sats in %d ranges at height %d\n", op, model.SumSatRanges(satRanges), len(satRanges), height)

	return err
}
