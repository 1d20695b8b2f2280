package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kodemon/sats/cmd/flush"
	"github.com/kodemon/sats/cmd/index"
	"github.com/kodemon/sats/cmd/ranges"
	cmdsettings "github.com/kodemon/sats/cmd/settings"
	"github.com/kodemon/sats/settings"
	"github.com/ordishs/gocore"
	"github.com/urfave/cli/v2"
)

// Name used by build script for the binaries. (Please keep on single line)
const progname = "sats"

// Version & commit strings injected at build with -ldflags -X...
var (
	version string
	commit  string
)

func init() {
	gocore.SetInfo(progname, version, commit)
}

func main() {
	tSettings := settings.NewSettings()

	app := &cli.App{
		Name:    progname,
		Usage:   "track which output holds every sat",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Commands: []*cli.Command{
			index.Command(tSettings),
			flush.Command(tSettings),
			ranges.Command(tSettings),
			cmdsettings.Command(tSettings, version, commit),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := app.RunContext(ctx, os.Args)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", progname, err)
		os.Exit(1)
	}
}
