package util

import "github.com/prometheus/client_golang/prometheus"

// MetricsBucketsMilliSeconds covers per block latencies, 1ms to 4s.
var MetricsBucketsMilliSeconds = []float64{
	1e-3, 2e-3, 4e-3, 16e-3, 32e-3, 64e-3, 128e-3, 256e-3, 512e-3, 1024e-3, 2048e-3, 4096e-3,
}

// MetricsBucketsSeconds covers checkpoint commits, 1s to 2048s.
var MetricsBucketsSeconds = []float64{
	1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024, 2048,
}

// MetricsBucketsBatchSize covers the number of rows in a commit, 1 to 4^13.
var MetricsBucketsBatchSize = prometheus.ExponentialBuckets(1, 4, 14)
