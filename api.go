// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package membench

import (
	"errors"
	"fmt"
	"sync"

	"github.com/toole-brendan/membench/chase"
	"github.com/toole-brendan/membench/iterplan"
	"github.com/toole-brendan/membench/kernel"
	"github.com/toole-brendan/membench/platform"
	"github.com/toole-brendan/membench/result"
	"github.com/toole-brendan/membench/sweep"
	"github.com/toole-brendan/membench/timer"
	"github.com/toole-brendan/membench/warmup"
)

var (
	readyOnce sync.Once
	readyErr  error
)

// ensureReady runs the process-wide one-time setup every exported
// operation needs: monotonic clock initialization followed by the
// frequency warmup. Both are idempotent singletons (spec section 5);
// a failed timer init is cached and returned to every subsequent call
// without retrying.
func ensureReady() error {
	readyOnce.Do(func() {
		if err := timer.Init(); err != nil {
			readyErr = fmt.Errorf("%w: %v", ErrPlatformInitFailure, err)
			return
		}
		warmup.Run()
	})
	return readyErr
}

// ReadLatency measures average pointer-chase read latency over a
// buffer of the given size, run for iterations traversals. iterations
// of 0 selects an automatically planned count (spec C9).
func ReadLatency(size uint64, iterations uint64) (result.Latency, error) {
	if err := ensureReady(); err != nil {
		return result.Latency{}, err
	}

	lineSize := platform.CacheLineSize()
	if size < uint64(lineSize) {
		return result.Latency{}, fmt.Errorf("%w: size must be >= cache line size (%d)", ErrInvalidArgument, lineSize)
	}
	if iterations == 0 {
		iterations = iterplan.Iterations(iterplan.Latency, int(size), lineSize)
	}

	r, err := kernel.ReadLatency(int(size), lineSize, iterations)
	if err != nil {
		return result.Latency{}, latencyErr(err)
	}
	return result.Latency{
		BufferSize:   uint64(r.BufferSize),
		AvgLatencyNS: r.AvgNS,
		Accesses:     r.Accesses,
	}, nil
}

// WriteLatency measures average pointer-chase read-after-write
// latency over a buffer of the given size. Same failure modes as
// ReadLatency.
func WriteLatency(size uint64, iterations uint64) (result.Latency, error) {
	if err := ensureReady(); err != nil {
		return result.Latency{}, err
	}

	lineSize := platform.CacheLineSize()
	if size < uint64(lineSize) {
		return result.Latency{}, fmt.Errorf("%w: size must be >= cache line size (%d)", ErrInvalidArgument, lineSize)
	}
	if iterations == 0 {
		iterations = iterplan.Iterations(iterplan.Latency, int(size), lineSize)
	}

	r, err := kernel.WriteLatency(int(size), lineSize, iterations)
	if err != nil {
		return result.Latency{}, latencyErr(err)
	}
	return result.Latency{
		BufferSize:   uint64(r.BufferSize),
		AvgLatencyNS: r.AvgNS,
		Accesses:     r.Accesses,
	}, nil
}

// latencyErr classifies a failure from the latency kernel. Only
// chase.ErrTooSmall is not an allocation failure: kernel.ReadLatency
// and kernel.WriteLatency always request at least two cache lines
// from memalloc.New, so chase.Build does not fail for the calls this
// package makes. Should chase.ErrTooSmall reach this function anyway,
// it is reported as a bad argument, not as the out-of-memory
// condition spec section 7 reserves for an allocation that actually
// failed.
func latencyErr(err error) error {
	if errors.Is(err, chase.ErrTooSmall) {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return fmt.Errorf("%w: %v", ErrOutOfMemory, err)
}

// ReadBandwidth measures sustained sequential read throughput over a
// buffer of the given size.
func ReadBandwidth(size uint64, iterations uint64) (result.Bandwidth, error) {
	if err := ensureReady(); err != nil {
		return result.Bandwidth{}, err
	}
	if size < 8 {
		return result.Bandwidth{}, fmt.Errorf("%w: size must be >= 8 bytes", ErrInvalidArgument)
	}
	if iterations == 0 {
		iterations = iterplan.Iterations(iterplan.Bandwidth, int(size), 8)
	}

	r, err := kernel.ReadBandwidth(int(size), iterations)
	if err != nil {
		return result.Bandwidth{}, fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	}
	return bandwidthResult(r), nil
}

// WriteBandwidth measures sustained sequential write throughput over
// a buffer of the given size. Same failure modes as ReadBandwidth.
func WriteBandwidth(size uint64, iterations uint64) (result.Bandwidth, error) {
	if err := ensureReady(); err != nil {
		return result.Bandwidth{}, err
	}
	if size < 8 {
		return result.Bandwidth{}, fmt.Errorf("%w: size must be >= 8 bytes", ErrInvalidArgument)
	}
	if iterations == 0 {
		iterations = iterplan.Iterations(iterplan.Bandwidth, int(size), 8)
	}

	r, err := kernel.WriteBandwidth(int(size), iterations)
	if err != nil {
		return result.Bandwidth{}, fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	}
	return bandwidthResult(r), nil
}

func bandwidthResult(r kernel.Bandwidth) result.Bandwidth {
	return result.Bandwidth{
		BufferSize:    uint64(r.BufferSize),
		BandwidthGBPS: r.GBPerS,
		AvgLatencyNS:  r.AvgNS,
		BytesMoved:    r.BytesMoved,
	}
}

// DetectCache sweeps working-set sizes and infers L1/L2/L3 byte
// capacities. It never fails fatally: a per-sample failure inside the
// sweep is recorded as a negative sentinel and excluded from
// inference, and a level that cannot be confidently detected is
// reported as zero.
func DetectCache() (result.CacheInfo, error) {
	return DetectCacheWithOptions(sweep.Options{})
}

// DetectCacheWithOptions is DetectCache with the sweep's size bounds
// and octave resolution overridden per opts (spec C11's sweep
// parameters, exposed so a config file can narrow or widen the sweep
// without recompiling).
func DetectCacheWithOptions(opts sweep.Options) (result.CacheInfo, error) {
	if err := ensureReady(); err != nil {
		return result.CacheInfo{}, err
	}

	sr := sweep.RunWithOptions(opts)
	return result.CacheInfo{
		L1Bytes:        sr.Estimate.L1Bytes,
		L2Bytes:        sr.Estimate.L2Bytes,
		L3Bytes:        sr.Estimate.L3Bytes,
		SweepSizes:     sr.Sizes,
		SweepLatencies: sr.Latencies,
	}, nil
}

// DisposeCacheInfo releases the sweep arrays owned by info.
func DisposeCacheInfo(info *result.CacheInfo) {
	result.DisposeCacheInfo(info)
}
