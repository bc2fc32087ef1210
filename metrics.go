// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package gsd

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects counters and latency distributions for a Handle,
// grounded on the teacher's pattern of accepting caller-supplied
// prometheus.Counter/Histogram fields (see wal.Options.FsyncLatency in the
// teacher repo) rather than owning a registry itself. Every field is
// optional; a nil field is simply not updated.
type Metrics struct {
	// FramesCommitted counts successful EndFrame calls.
	FramesCommitted prometheus.Counter
	// ChunksWritten counts successful WriteChunk calls.
	ChunksWritten prometheus.Counter
	// BytesAppended counts payload bytes written via WriteChunk.
	BytesAppended prometheus.Counter
	// IndexGrowths counts index relocations (spec.md §4.1).
	IndexGrowths prometheus.Counter
	// CommitLatency observes the wall-clock duration of EndFrame,
	// including its fsync.
	CommitLatency prometheus.Histogram

	// commitHist is an in-process latency distribution a caller can
	// inspect directly (CommitLatencyHistogram) without scraping
	// Prometheus, useful for a CLI tool or a test assertion. Grounded on
	// the teacher's use of github.com/HdrHistogram/hdrhistogram-go
	// elsewhere in the dependency graph.
	commitHist *hdrhistogram.Histogram
}

// NewMetrics returns a Metrics with an internal HDR histogram ready to
// record commit latencies from 1 microsecond to 10 seconds at 3
// significant figures. The prometheus fields are left nil; set them to
// wire up external export.
func NewMetrics() *Metrics {
	return &Metrics{
		commitHist: hdrhistogram.New(1, 10*int64(time.Second/time.Microsecond), 3),
	}
}

// CommitLatencyHistogram returns a snapshot of the in-process commit
// latency distribution, or nil if this Metrics was not created with
// NewMetrics.
func (m *Metrics) CommitLatencyHistogram() *hdrhistogram.Histogram {
	if m == nil || m.commitHist == nil {
		return nil
	}
	return hdrhistogram.Import(m.commitHist.Export())
}

func (m *Metrics) observeCommit(d time.Duration) {
	if m == nil {
		return
	}
	if m.CommitLatency != nil {
		m.CommitLatency.Observe(d.Seconds())
	}
	if m.commitHist != nil {
		_ = m.commitHist.RecordValue(int64(d / time.Microsecond))
	}
	if m.FramesCommitted != nil {
		m.FramesCommitted.Inc()
	}
}

func (m *Metrics) observeChunk(bytes uint64) {
	if m == nil {
		return
	}
	if m.ChunksWritten != nil {
		m.ChunksWritten.Inc()
	}
	if m.BytesAppended != nil {
		m.BytesAppended.Add(float64(bytes))
	}
}

func (m *Metrics) observeIndexGrowth() {
	if m == nil {
		return
	}
	if m.IndexGrowths != nil {
		m.IndexGrowths.Inc()
	}
}
