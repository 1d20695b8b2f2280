// Package settings implements the settings command, printing the configuration
// the other commands would run with.
package settings

import (
	"fmt"
	"io"
	"os"

	"github.com/kodemon/sats/cmd/cmdutil"
	satssettings "github.com/kodemon/sats/settings"
	"github.com/kodemon/sats/stores/ranges/factory"
	"github.com/ordishs/gocore"
	"github.com/urfave/cli/v2"
)

func Command(tSettings *satssettings.Settings, version, commit string) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "print the resolved settings",
		Flags: cmdutil.StoreFlags(),
		Action: func(c *cli.Context) error {
			s, err := cmdutil.Settings(c, tSettings)
			if err != nil {
				return err
			}

			stats := gocore.Config().Stats()
			fmt.Printf("STATS\n%s\nVERSION\n-------\n%s (%s)\n\n", stats, version, commit)

			Print(os.Stdout, s)

			return nil
		},
	}
}

// Print writes the settings that affect indexing, never the RPC password.
func Print(w io.Writer, s *satssettings.Settings) {
	storeURL := "<none>"
	if s.Indexer.StoreURL != nil {
		storeURL = s.Indexer.StoreURL.Redacted()
	}

	var interval uint64
	if s.ChainCfgParams != nil {
		interval = uint64(s.ChainCfgParams.SubsidyReductionInterval)
	}

	_, _ = fmt.Fprintf(w, "SETTINGS\n--------\n")
	_, _ = fmt.Fprintf(w, "%-28s %s\n", "network", s.Network)
	_, _ = fmt.Fprintf(w, "%-28s %d\n", "subsidyReductionInterval", interval)
	_, _ = fmt.Fprintf(w, "%-28s %s\n", "dataFolder", s.DataFolder)
	_, _ = fmt.Fprintf(w, "%-28s %s\n", "indexer_store", storeURL)
	_, _ = fmt.Fprintf(w, "%-28s %v\n", "store schemes", factory.Schemes())
	_, _ = fmt.Fprintf(w, "%-28s %s\n", "rpc_host", s.RPC.Host)
	_, _ = fmt.Fprintf(w, "%-28s %s\n", "rpc_user", s.RPC.User)
	_, _ = fmt.Fprintf(w, "%-28s %d\n", "indexer_checkpointInterval", s.Indexer.CheckpointInterval)
	_, _ = fmt.Fprintf(w, "%-28s %d\n", "indexer_milestoneHeight", s.Indexer.MilestoneHeight)
	_, _ = fmt.Fprintf(w, "%-28s %d\n", "indexer_prefetch", s.Indexer.PrefetchBlocks)
	_, _ = fmt.Fprintf(w, "%-28s %s\n", "indexer_pollInterval", s.Indexer.PollInterval)
	_, _ = fmt.Fprintf(w, "%-28s %t\n", "indexer_follow", s.Indexer.Follow)
	_, _ = fmt.Fprintf(w, "%-28s %s\n", "indexer_httpListenAddress", s.Indexer.HTTPListenAddress)
}
