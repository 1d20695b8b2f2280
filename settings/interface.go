package settings

import (
	"net/url"
	"time"

	"github.com/bsv-blockchain/go-chaincfg"
)

type RPCSettings struct {
	// Host is host:port of the node's JSON-RPC endpoint.
	Host     string
	User     string
	Password string
	UseSSL   bool
}

type IndexerSettings struct {
	StoreURL           *url.URL
	CheckpointInterval uint64
	MilestoneHeight    uint64
	PrefetchBlocks     int
	PollInterval       time.Duration
	CacheSizeHint      int
	HTTPListenAddress  string
	Follow             bool
}

type PostgresSettings struct {
	MaxIdleConns int
	MaxOpenConns int
}

type Settings struct {
	ServiceName        string
	LogLevel           string
	LoggerType         string
	PrettyLogs         bool
	DataFolder         string
	Network            string
	ChainCfgParams     *chaincfg.Params
	ProfilerAddr       string
	PrometheusEndpoint string
	RPC                RPCSettings
	Indexer            IndexerSettings
	Postgres           PostgresSettings
}
