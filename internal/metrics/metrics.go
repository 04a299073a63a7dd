// Copyright 2023 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package metrics holds the Prometheus vectors every sinker reports flush
// batch size and latency through.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LatencyBuckets are the histogram buckets used by every latency metric
// in this package, covering sub-millisecond flushes up to multi-second
// stalls under backpressure.
var LatencyBuckets = []float64{
	.001, .002, .005, .01, .02, .05, .1, .2, .5, 1, 2, 5, 10, 30,
}

// SinkerLabels key every counter/histogram below by the sinker
// implementation ("kafka"/"warehouse") and the table the batch targeted.
var SinkerLabels = []string{"sinker", "schema", "table"}

var (
	// FlushDurations tracks how long a SinkDML/SinkRaw call took.
	FlushDurations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dtcore_sink_flush_duration_seconds",
		Help:    "the length of time it took to successfully flush a batch to a sinker",
		Buckets: LatencyBuckets,
	}, SinkerLabels)

	// FlushErrors counts failed flush attempts.
	FlushErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dtcore_sink_flush_errors_total",
		Help: "the number of times an error was encountered while flushing a batch",
	}, SinkerLabels)

	// FlushRecords counts the number of row events included in each flush.
	FlushRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dtcore_sink_flush_records_total",
		Help: "the number of row events flushed to a sinker",
	}, SinkerLabels)

	// FlushBytes counts the approximate byte volume included in each flush.
	FlushBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dtcore_sink_flush_bytes_total",
		Help: "the approximate byte volume flushed to a sinker",
	}, SinkerLabels)
)
