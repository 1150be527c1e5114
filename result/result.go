// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package result holds the plain data shapes (spec C12) the core
// exports across its external interface: these are consumed by the
// out-of-scope CLI, formatter, and GPU collaborator tiers, so they
// deliberately carry no behavior beyond DisposeCacheInfo's cleanup.
package result

// Latency is the outcome of a single read or write latency
// measurement.
type Latency struct {
	BufferSize   uint64
	AvgLatencyNS float64
	Accesses     uint64
}

// Bandwidth is the outcome of a single streaming read or write
// measurement. AvgLatencyNS is the per-element average, carried
// through from the original implementation's result struct as
// informational context; it is not used by the inference pipeline.
type Bandwidth struct {
	BufferSize    uint64
	BandwidthGBPS float64
	AvgLatencyNS  float64
	BytesMoved    uint64
}

// CacheInfo is the outcome of a full cache-capacity detection sweep.
// Any of L1Bytes/L2Bytes/L3Bytes may be zero, meaning "not detected
// with confidence". The sweep arrays are owned by this value; call
// DisposeCacheInfo when done with them.
type CacheInfo struct {
	L1Bytes uint64
	L2Bytes uint64
	L3Bytes uint64

	SweepSizes     []uint64
	SweepLatencies []float64
}

// DisposeCacheInfo releases the sweep arrays owned by info. Safe to
// call more than once.
func DisposeCacheInfo(info *CacheInfo) {
	if info == nil {
		return
	}
	info.SweepSizes = nil
	info.SweepLatencies = nil
}
