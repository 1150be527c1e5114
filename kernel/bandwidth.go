// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package kernel

import (
	"sync/atomic"
	"unsafe"

	"github.com/toole-brendan/membench/fence"
	"github.com/toole-brendan/membench/memalloc"
	"github.com/toole-brendan/membench/timer"
)

// sinkBandwidth is the escape point for the bandwidth loops' per-pass
// accumulator: a volatile-style store once per pass keeps the compiler
// from folding the whole loop into a constant or dropping it outright,
// while still letting the inner loop run at full speed with ordinary
// (non-atomic) loads and stores.
var sinkBandwidth uint64

// Bandwidth is the result of a single bandwidth measurement.
type Bandwidth struct {
	BufferSize int
	GBPerS     float64
	AvgNS      float64
	BytesMoved uint64
}

// ReadBandwidth sums every 64-bit word of a bufferSize-byte buffer,
// iterations times, and reports the sustained read throughput.
func ReadBandwidth(bufferSize int, iterations uint64) (Bandwidth, error) {
	buf, err := memalloc.New(bufferSize)
	if err != nil {
		return Bandwidth{}, err
	}
	defer buf.Close()

	count := bufferSize / 8
	words := unsafe.Slice((*uint64)(buf.Ptr), count)

	var warm uint64
	for _, w := range words {
		warm += w
	}
	atomic.StoreUint64(&sinkBandwidth, warm)

	fence.Full()
	t0 := timer.NowNS()
	for it := uint64(0); it < iterations; it++ {
		var sum uint64
		for i := 0; i < count; i++ {
			sum += words[i]
		}
		atomic.StoreUint64(&sinkBandwidth, sum)
	}
	fence.Full()
	t1 := timer.NowNS()

	return bandwidthResult(bufferSize, count, iterations, t1-t0), nil
}

// WriteBandwidth writes iter+i into every word of a bufferSize-byte
// buffer, iterations times, and reports the sustained write
// throughput.
func WriteBandwidth(bufferSize int, iterations uint64) (Bandwidth, error) {
	buf, err := memalloc.New(bufferSize)
	if err != nil {
		return Bandwidth{}, err
	}
	defer buf.Close()

	count := bufferSize / 8
	words := unsafe.Slice((*uint64)(buf.Ptr), count)

	fence.Full()
	t0 := timer.NowNS()
	for it := uint64(0); it < iterations; it++ {
		for i := 0; i < count; i++ {
			words[i] = it + uint64(i)
		}
	}
	fence.Full()
	t1 := timer.NowNS()

	// Read one word back through an atomic (volatile-equivalent) load
	// so the store loop is not provably dead.
	atomic.StoreUint64(&sinkBandwidth, atomic.LoadUint64(&words[0]))

	return bandwidthResult(bufferSize, count, iterations, t1-t0), nil
}

func bandwidthResult(bufferSize, count int, iterations uint64, elapsedNS int64) Bandwidth {
	bytesMoved := iterations * uint64(count) * 8
	elapsedS := float64(elapsedNS) / 1e9
	gbps := float64(bytesMoved) / elapsedS / float64(1<<30)
	avgNS := float64(elapsedNS) / float64(iterations*uint64(count))
	return Bandwidth{
		BufferSize: bufferSize,
		GBPerS:     gbps,
		AvgNS:      avgNS,
		BytesMoved: bytesMoved,
	}
}
