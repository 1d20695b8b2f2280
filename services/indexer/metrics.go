package indexer

import (
	"sync"

	"github.com/kodemon/sats/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusIndexerBlocks          prometheus.Counter
	prometheusIndexerTransactions    prometheus.Counter
	prometheusIndexerOutputs         prometheus.Counter
	prometheusIndexerRanges          prometheus.Counter
	prometheusIndexerInputsCache     prometheus.Counter
	prometheusIndexerInputsStore     prometheus.Counter
	prometheusIndexerLostSats        prometheus.Counter
	prometheusIndexerIndexBlock      prometheus.Histogram
	prometheusIndexerCommit          prometheus.Histogram
	prometheusIndexerCommitSize      prometheus.Histogram
	prometheusIndexerCacheSize       prometheus.Gauge
	prometheusIndexerCommittedHeight prometheus.Gauge
	prometheusIndexerChainTip        prometheus.Gauge
	prometheusIndexerErrors          *prometheus.CounterVec
)

var (
	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusIndexerBlocks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "indexer",
			Name:      "blocks",
			Help:      "Number of blocks indexed",
		},
	)

	prometheusIndexerTransactions = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "indexer",
			Name:      "transactions",
			Help:      "Number of transactions indexed",
		},
	)

	prometheusIndexerOutputs = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "indexer",
			Name:      "outputs",
			Help:      "Number of outputs assigned ranges",
		},
	)

	prometheusIndexerRanges = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "indexer",
			Name:      "ranges",
			Help:      "Number of ranges assigned to outputs",
		},
	)

	prometheusIndexerInputsCache = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "indexer",
			Name:      "inputs_cache",
			Help:      "Number of inputs resolved from the write-back cache",
		},
	)

	prometheusIndexerInputsStore = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "indexer",
			Name:      "inputs_store",
			Help:      "Number of inputs resolved from the ranges store",
		},
	)

	prometheusIndexerLostSats = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "indexer",
			Name:      "lost_sats",
			Help:      "Number of sats not claimed by any coinbase output",
		},
	)

	prometheusIndexerIndexBlock = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "indexer",
			Name:      "index_block",
			Help:      "Histogram of indexing a single block",
			Buckets:   util.MetricsBucketsMilliSeconds,
		},
	)

	prometheusIndexerCommit = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "indexer",
			Name:      "commit",
			Help:      "Histogram of checkpoint commits to the ranges store",
			Buckets:   util.MetricsBucketsSeconds,
		},
	)

	prometheusIndexerCommitSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "indexer",
			Name:      "commit_size",
			Help:      "Histogram of the number of inserts and deletes per commit",
			Buckets:   util.MetricsBucketsBatchSize,
		},
	)

	prometheusIndexerCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "indexer",
			Name:      "cache_size",
			Help:      "Number of outputs in the write-back cache",
		},
	)

	prometheusIndexerCommittedHeight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "indexer",
			Name:      "committed_height",
			Help:      "Height of the last committed block",
		},
	)

	prometheusIndexerChainTip = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "indexer",
			Name:      "chain_tip",
			Help:      "Height of the chain tip reported by the block source",
		},
	)

	prometheusIndexerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "indexer",
			Name:      "errors",
			Help:      "Number of failed updates by error category",
		},
		[]string{"category"},
	)
}
