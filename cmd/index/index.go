// Package index implements the index command: replay the chain from the last
// committed height up to the tip of the node, optionally following it.
package index

import (
	"context"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // only served when profilerAddr is set
	"time"

	"github.com/kodemon/sats/cmd/cmdutil"
	"github.com/kodemon/sats/services/blocksource"
	"github.com/kodemon/sats/services/indexer"
	"github.com/kodemon/sats/settings"
	"github.com/kodemon/sats/ulogger"
	"github.com/kodemon/sats/util/health"
	"github.com/ordishs/gocore"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

const (
	flagRPCHost            = "rpc-host"
	flagRPCUser            = "rpc-user"
	flagRPCPass            = "rpc-pass"
	flagFollow             = "follow"
	flagCheckpointInterval = "checkpoint-interval"
)

func Command(tSettings *settings.Settings) *cli.Command {
	flags := append(cmdutil.StoreFlags(),
		&cli.StringFlag{
			Name:    flagRPCHost,
			Usage:   "host:port of the node JSON-RPC endpoint, overrides rpc_host",
			EnvVars: []string{"RPC_URI"},
		},
		&cli.StringFlag{
			Name:    flagRPCUser,
			Usage:   "JSON-RPC user, overrides rpc_user",
			EnvVars: []string{"RPC_USER"},
		},
		&cli.StringFlag{
			Name:    flagRPCPass,
			Usage:   "JSON-RPC password, overrides rpc_pass",
			EnvVars: []string{"RPC_PASS"},
		},
		&cli.BoolFlag{
			Name:  flagFollow,
			Usage: "keep polling the node for new blocks once the tip is reached",
		},
		&cli.Uint64Flag{
			Name:  flagCheckpointInterval,
			Usage: "commit every n blocks, overrides indexer_checkpointInterval",
		},
	)

	return &cli.Command{
		Name:  "index",
		Usage: "index sat ranges up to the chain tip",
		Flags: flags,
		Action: func(c *cli.Context) error {
			s, err := cmdutil.Settings(c, tSettings)
			if err != nil {
				return err
			}

			applyFlags(c, s)

			return Run(c.Context, cmdutil.Logger("index", s), s)
		},
	}
}

func applyFlags(c *cli.Context, tSettings *settings.Settings) {
	if c.IsSet(flagRPCHost) {
		tSettings.RPC.Host = c.String(flagRPCHost)
	}

	if c.IsSet(flagRPCUser) {
		tSettings.RPC.User = c.String(flagRPCUser)
	}

	if c.IsSet(flagRPCPass) {
		tSettings.RPC.Password = c.String(flagRPCPass)
	}

	if c.IsSet(flagFollow) {
		tSettings.Indexer.Follow = c.Bool(flagFollow)
	}

	if c.IsSet(flagCheckpointInterval) {
		tSettings.Indexer.CheckpointInterval = c.Uint64(flagCheckpointInterval)
	}
}

// Run indexes until the tip is reached or, when following, until ctx is cancelled.
func Run(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings) error {
	source, err := blocksource.NewRPC(logger.New("rpc"), tSettings)
	if err != nil {
		return err
	}

	store, closeStore, err := cmdutil.OpenStore(ctx, logger.New("store"), tSettings)
	if err != nil {
		return err
	}
	defer closeStore()

	idx := indexer.New(logger, tSettings, store, source)

	startProfiler(logger, tSettings)

	if server := startHTTP(logger, tSettings, idx); server != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_ = server.Shutdown(shutdownCtx)
		}()
	}

	start := time.Now()

	err = idx.Start(ctx)

	stats := idx.Stats()
	logger.Infof("indexed %d blocks in %s: %d outputs, %d ranges, %d inputs, %d commits, %d lost sats",
		stats.BlocksIndexed, time.Since(start), stats.Outputs, stats.Ranges, stats.Inputs, stats.Commits, stats.LostSats)

	return err
}

func startProfiler(logger ulogger.Logger, tSettings *settings.Settings) {
	profilerAddr := tSettings.ProfilerAddr
	if profilerAddr == "" {
		return
	}

	go func() {
		logger.Infof("Profiler listening on http://%s/debug/pprof", profilerAddr)

		gocore.RegisterStatsHandlers()

		server := &http.Server{
			Addr:         profilerAddr,
			Handler:      nil,
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("profiler stopped: %v", err)
		}
	}()
}

// startHTTP serves the prometheus metrics and the health checks when an HTTP
// listen address is configured.
func startHTTP(logger ulogger.Logger, tSettings *settings.Settings, idx *indexer.Indexer) *http.Server {
	addr := tSettings.Indexer.HTTPListenAddress
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()

	if tSettings.PrometheusEndpoint != "" {
		mux.Handle(tSettings.PrometheusEndpoint, promhttp.Handler())
	}

	checks := func() []health.Check {
		return []health.Check{{Name: "Indexer", Check: idx.Health}}
	}

	mux.HandleFunc("/health", health.HandlerFunc(checks))
	mux.HandleFunc("/health/readiness", health.HandlerFunc(checks))
	mux.HandleFunc("/health/liveness", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 20 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("HTTP server stopped: %v", err)
		}
	}()

	logger.Infof("metrics on http://%s%s, health on http://%s/health", addr, tSettings.PrometheusEndpoint, addr)

	return server
}
