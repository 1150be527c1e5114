// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package membench measures the latency and bandwidth of a machine's
// volatile memory hierarchy — per-core L1/L2, shared L3, and main
// DRAM — from user space, and infers the byte-capacities of each
// cache level by sweeping working-set sizes.
//
// The exported operations (ReadLatency, WriteLatency, ReadBandwidth,
// WriteBandwidth, DetectCache) are the stable external interface a
// CLI, a result formatter, or a GPU-benchmark collaborator is expected
// to build on; this package owns none of those concerns itself.
package membench
