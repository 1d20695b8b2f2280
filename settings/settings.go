package settings

import (
	"github.com/bsv-blockchain/go-chaincfg"
)

func NewSettings() *Settings {
	network := getString("network", "mainnet")

	params, err := chaincfg.GetChainParams(network)
	if err != nil {
		panic(err)
	}

	return &Settings{
		ServiceName:        getString("SERVICE_NAME", "sats"),
		LogLevel:           getString("logLevel", "INFO"),
		LoggerType:         getString("logger", "zerolog"),
		PrettyLogs:         getBool("PRETTY_LOGS", true),
		DataFolder:         getString("dataFolder", "data"),
		Network:            network,
		ChainCfgParams:     params,
		ProfilerAddr:       getString("profilerAddr", ""),
		PrometheusEndpoint: getString("prometheusEndpoint", "/metrics"),
		RPC: RPCSettings{
			Host:     getString("rpc_host", "localhost:8332"),
			User:     getString("rpc_user", ""),
			Password: getString("rpc_pass", ""),
			UseSSL:   getBool("rpc_useSSL", false),
		},
		Indexer: IndexerSettings{
			StoreURL:           getURL("indexer_store", "sqlite:///sats"),
			CheckpointInterval: uint64(getInt("indexer_checkpointInterval", 5000)),
			MilestoneHeight:    uint64(getInt("indexer_milestoneHeight", 2413341)),
			PrefetchBlocks:     getInt("indexer_prefetch", 4),
			PollInterval:       getDuration("indexer_pollInterval", "10s"),
			CacheSizeHint:      getInt("indexer_cacheSizeHint", 1_000_000),
			HTTPListenAddress:  getString("indexer_httpListenAddress", ""),
			Follow:             getBool("indexer_follow", false),
		},
		Postgres: PostgresSettings{
			MaxIdleConns: getInt("postgres_maxIdleConns", 10),
			MaxOpenConns: getInt("postgres_maxOpenConns", 80),
		},
	}
}
