// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package membench

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toole-brendan/membench/chase"
	"github.com/toole-brendan/membench/platform"
)

// TestReadLatencyRejectsOnlySizeBelowCacheLine checks spec section 6's
// failure contract: a size below the cache line size is the only
// input ReadLatency/WriteLatency reject as an invalid argument, and it
// must be reported as ErrInvalidArgument, never ErrOutOfMemory.
func TestReadLatencyRejectsOnlySizeBelowCacheLine(t *testing.T) {
	lineSize := uint64(platform.CacheLineSize())

	_, err := ReadLatency(lineSize-1, 4)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.NotErrorIs(t, err, ErrOutOfMemory)

	_, err = WriteLatency(lineSize-1, 4)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.NotErrorIs(t, err, ErrOutOfMemory)
}

// TestReadLatencySucceedsJustBelowTwoCacheLines is the boundary the
// maintainer flagged: a size in [cacheLineSize, 2*cacheLineSize) used
// to be misreported as ErrOutOfMemory even though nothing failed to
// allocate. It must now succeed, exactly like any other size at or
// above the cache line size.
func TestReadLatencySucceedsJustBelowTwoCacheLines(t *testing.T) {
	lineSize := uint64(platform.CacheLineSize())

	r, err := ReadLatency(lineSize, 4)
	require.NoError(t, err)
	assert.Equal(t, lineSize, r.BufferSize)
	assert.Greater(t, r.Accesses, uint64(0))

	r2, err := WriteLatency(2*lineSize-1, 4)
	require.NoError(t, err)
	assert.Equal(t, 2*lineSize-1, r2.BufferSize)
}

// TestReadLatencyReportsOutOfMemoryOnAllocFailure checks spec section
// 7's other boundary: a size no allocator can satisfy must surface
// ErrOutOfMemory, not ErrInvalidArgument.
func TestReadLatencyReportsOutOfMemoryOnAllocFailure(t *testing.T) {
	const impossible = uint64(1) << 62

	_, err := ReadLatency(impossible, 1)
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.NotErrorIs(t, err, ErrInvalidArgument)
}

// TestBandwidthRejectsSizeBelowEightBytes covers the same contract for
// the bandwidth kernels, whose minimum element is one 64-bit word.
func TestBandwidthRejectsSizeBelowEightBytes(t *testing.T) {
	_, err := ReadBandwidth(7, 4)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = WriteBandwidth(7, 4)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

// TestWriteLatencyAtDRAMScaleIsNotFasterThanReadByTooMuch is spec
// section 8 scenario 5: at a working-set size well beyond any
// plausible last-level cache, write latency (a store plus a dependent
// load) must be at least 80% of read latency (a dependent load
// alone) — it can never be meaningfully cheaper, since every write
// hop still pays the same pointer-chase load cost on top of the
// store.
func TestWriteLatencyAtDRAMScaleIsNotFasterThanReadByTooMuch(t *testing.T) {
	const dramScale = 256 << 20 // 256 MiB: far beyond any L1/L2/L3

	read, err := ReadLatency(dramScale, 0)
	require.NoError(t, err)
	write, err := WriteLatency(dramScale, 0)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, write.AvgLatencyNS, 0.8*read.AvgLatencyNS)
}

func TestDetectCacheCapacitiesOrderedAndWithinSweepBounds(t *testing.T) {
	info, err := DetectCache()
	require.NoError(t, err)
	defer DisposeCacheInfo(&info)

	require.NotEmpty(t, info.SweepSizes)
	lo, hi := info.SweepSizes[0], info.SweepSizes[len(info.SweepSizes)-1]

	for _, got := range []uint64{info.L1Bytes, info.L2Bytes, info.L3Bytes} {
		if got == 0 {
			continue
		}
		assert.GreaterOrEqual(t, got, lo)
		assert.LessOrEqual(t, got, hi)
	}
	if info.L1Bytes > 0 && info.L2Bytes > 0 {
		assert.LessOrEqual(t, info.L1Bytes, info.L2Bytes)
	}
	if info.L2Bytes > 0 && info.L3Bytes > 0 {
		assert.LessOrEqual(t, info.L2Bytes, info.L3Bytes)
	}
}

func TestEnsureReadyIsIdempotentAcrossOperations(t *testing.T) {
	_, err := ReadBandwidth(1<<20, 4)
	require.NoError(t, err)
	_, err = WriteBandwidth(1<<20, 4)
	require.NoError(t, err)
}

// TestLatencyErrClassifiesChaseErrTooSmallAsInvalidArgument exercises
// latencyErr directly: it is the function responsible for telling
// apart "nothing failed to allocate" (chase.ErrTooSmall) from an
// actual allocation failure, and that distinction is package-internal
// state no black-box call through ReadLatency/WriteLatency can force
// now that kernel.ReadLatency/WriteLatency always request at least
// two cache lines.
func TestLatencyErrClassifiesChaseErrTooSmallAsInvalidArgument(t *testing.T) {
	assert.ErrorIs(t, latencyErr(chase.ErrTooSmall), ErrInvalidArgument)
	assert.NotErrorIs(t, latencyErr(chase.ErrTooSmall), ErrOutOfMemory)

	other := errors.New("alloc failed")
	assert.ErrorIs(t, latencyErr(other), ErrOutOfMemory)
	assert.NotErrorIs(t, latencyErr(other), ErrInvalidArgument)
}
