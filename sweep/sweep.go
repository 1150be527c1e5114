// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sweep implements the sweep orchestrator (spec C11): it
// generates a logarithmically-spaced run of working-set sizes, pins
// the calling thread to a single core, measures read latency at each
// size, and hands the resulting (size, latency) samples to cacheinfer
// for cache-capacity inference.
package sweep

import (
	"math"

	"github.com/btcsuite/btclog"

	"github.com/toole-brendan/membench/cacheinfer"
	"github.com/toole-brendan/membench/iterplan"
	"github.com/toole-brendan/membench/kernel"
	"github.com/toole-brendan/membench/platform"
)

// log is a logger that is initialized with no output filters. This
// means the package will not perform any logging by default until the
// caller requests it.
var log btclog.Logger

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// DisableLog disables all library log output.
func DisableLog() {
	log = btclog.Disabled
}

func init() {
	DisableLog()
}

const (
	minSize         = 1 << 10   // 1 KiB
	maxSize         = 512 << 20 // 512 MiB
	pointsPerOctave = 4
	pinnedCore      = 0
)

// Result is the outcome of one full sweep: the samples fed to
// cacheinfer alongside the estimate it produced. Sizes and Latencies
// are owned by the caller once returned (mirroring spec section 3's
// "sweep arrays are owned by the returned cache-info value").
type Result struct {
	Sizes     []uint64
	Latencies []float64
	Estimate  cacheinfer.Estimate
}

// Options overrides the sweep's default size bounds and octave
// resolution. A zero value for any field selects that field's default
// (minSize, maxSize, or pointsPerOctave), so a caller that only wants
// to override one bound can leave the rest unset.
type Options struct {
	MinSize         uint64
	MaxSize         uint64
	PointsPerOctave int
}

func (o Options) withDefaults() Options {
	if o.MinSize == 0 {
		o.MinSize = minSize
	}
	if o.MaxSize == 0 {
		o.MaxSize = maxSize
	}
	if o.PointsPerOctave == 0 {
		o.PointsPerOctave = pointsPerOctave
	}
	return o
}

// Run executes the full sweep orchestration with the default size
// bounds and octave resolution.
func Run() Result {
	return RunWithOptions(Options{})
}

// RunWithOptions executes the full sweep orchestration, overriding the
// default size bounds and octave resolution per opts.
func RunWithOptions(opts Options) Result {
	opts = opts.withDefaults()
	lineSize := platform.CacheLineSize()
	sizes := GenerateSizesWithBounds(opts.MinSize, opts.MaxSize, opts.PointsPerOctave, ramCap())

	affinity, err := platform.PinCurrentThreadToCore(pinnedCore)
	if err != nil {
		log.Warnf("sweep: could not pin to core %d: %v", pinnedCore, err)
	} else {
		defer func() {
			if rerr := affinity.Restore(); rerr != nil {
				log.Warnf("sweep: could not restore affinity: %v", rerr)
			}
		}()
	}

	latencies := make([]float64, len(sizes))
	for i, size := range sizes {
		iters := iterplan.Iterations(iterplan.CacheSweep, int(size), lineSize)
		lat, err := kernel.ReadLatency(int(size), lineSize, iters)
		if err != nil {
			log.Debugf("sweep: sample at %d bytes failed: %v", size, err)
			latencies[i] = -1.0
			continue
		}
		latencies[i] = lat.AvgNS
	}

	return Result{
		Sizes:     sizes,
		Latencies: latencies,
		Estimate:  cacheinfer.Infer(sizes, latencies),
	}
}

// GenerateSizes returns the logarithmically-spaced sweep sizes from 1
// KiB up to the smaller of 512 MiB and cap (cap <= 0 means
// uncapped), four points per octave, with consecutive sizes that
// round to the same byte count deduplicated.
func GenerateSizes(cap uint64) []uint64 {
	return GenerateSizesWithBounds(minSize, maxSize, pointsPerOctave, cap)
}

// GenerateSizesWithBounds is GenerateSizes generalized to an
// arbitrary lower bound, upper bound, and octave resolution, so a
// config-driven caller can narrow or widen the sweep without touching
// the package's compiled-in defaults.
func GenerateSizesWithBounds(lo, hi uint64, pointsPerOctave int, cap uint64) []uint64 {
	ceiling := hi
	if cap > 0 && cap < ceiling {
		ceiling = cap
	}

	var sizes []uint64
	factor := math.Pow(2, 1.0/float64(pointsPerOctave))
	cur := float64(lo)
	var last uint64
	for {
		size := uint64(math.Round(cur))
		if size > ceiling {
			break
		}
		if len(sizes) == 0 || size != last {
			sizes = append(sizes, size)
			last = size
		}
		cur *= factor
	}
	return sizes
}

// ramCap returns 50% of physical RAM, or 0 (uncapped) when RAM could
// not be determined. It keeps the latency sweep's largest working
// sets clear of swap. The bandwidth operations are single-size calls
// and apply no such cap.
func ramCap() uint64 {
	ram := platform.PhysicalRAMBytes()
	if ram == 0 {
		return 0
	}
	return ram / 2
}
