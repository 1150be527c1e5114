// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package kernel implements the two timed measurement loops spec.md
// calls out as the hard engineering (C6 latency, C7 bandwidth): the
// pointer-chase latency kernel and the sequential bandwidth kernel.
// Every timed region here is bracketed by fence.Full and ends by
// escaping an accumulated value to a package-level sink, per the
// "volatile accesses vs. dead-code elimination" design note: the
// fence's memory clobber plus the post-loop escape is what keeps the
// optimizer from hoisting or eliminating the dependent loads.
package kernel

import (
	"sync/atomic"
	"unsafe"

	"github.com/toole-brendan/membench/chase"
	"github.com/toole-brendan/membench/fence"
	"github.com/toole-brendan/membench/memalloc"
	"github.com/toole-brendan/membench/timer"
)

// sink is the escape point for the read/write latency loops. It is
// never read by this package's own logic; its only purpose is to give
// the compiler an observable, address-taken destination for the final
// value of the traversal so the loop cannot be proven dead.
var sink unsafe.Pointer

// sinkScratch is the equivalent escape point for the write-latency
// kernel's scratch-word accumulator.
var sinkScratch uint64

// Latency is the result of a single latency measurement.
type Latency struct {
	BufferSize int
	AvgNS      float64
	Accesses   uint64
}

// ReadLatency measures the average cost of a dependent pointer load by
// traversing a fresh Hamiltonian cycle over a bufferSize-byte buffer
// iterations times.
func ReadLatency(bufferSize int, lineSize int, iterations uint64) (Latency, error) {
	buf, err := memalloc.New(chaseAllocSize(bufferSize, lineSize))
	if err != nil {
		return Latency{}, err
	}
	defer buf.Close()

	g, err := chase.Build(buf, lineSize)
	if err != nil {
		return Latency{}, err
	}
	n := uint64(g.N())

	p := warmTraversal(g)

	fence.Full()
	t0 := timer.NowNS()
	for it := uint64(0); it < iterations; it++ {
		for i := uint64(0); i < n; i++ {
			p = atomic.LoadPointer((*unsafe.Pointer)(p))
		}
	}
	fence.Full()
	t1 := timer.NowNS()

	atomic.StorePointer(&sink, p)

	accesses := iterations * n
	return Latency{
		BufferSize: bufferSize,
		AvgNS:      float64(t1-t0) / float64(accesses),
		Accesses:   accesses,
	}, nil
}

// WriteLatency measures the cost of a read-after-write hop: on each
// node the kernel first stores a loop-counter-derived value into the
// node's scratch word, forcing the line into this core's L1 in
// exclusive state, then performs the dependent pointer load that
// prevents the store buffer from masking the write's cost.
func WriteLatency(bufferSize int, lineSize int, iterations uint64) (Latency, error) {
	buf, err := memalloc.New(chaseAllocSize(bufferSize, lineSize))
	if err != nil {
		return Latency{}, err
	}
	defer buf.Close()

	g, err := chase.Build(buf, lineSize)
	if err != nil {
		return Latency{}, err
	}
	n := uint64(g.N())

	p := warmTraversal(g)

	fence.Full()
	t0 := timer.NowNS()
	for it := uint64(0); it < iterations; it++ {
		for i := uint64(0); i < n; i++ {
			atomic.StoreUint64(chase.ScratchAddr(p), it^i)
			p = atomic.LoadPointer((*unsafe.Pointer)(p))
		}
	}
	fence.Full()
	t1 := timer.NowNS()

	atomic.StorePointer(&sink, p)
	atomic.StoreUint64(&sinkScratch, atomic.LoadUint64(chase.ScratchAddr(p)))

	accesses := iterations * n
	return Latency{
		BufferSize: bufferSize,
		AvgNS:      float64(t1-t0) / float64(accesses),
		Accesses:   accesses,
	}, nil
}

// chaseAllocSize returns the buffer size to actually allocate for a
// bufferSize-byte, lineSize-stride pointer-chase: at least two nodes,
// so chase.Build never sees fewer than the minimum its Hamiltonian
// cycle requires. A caller requesting less than two cache lines still
// gets a valid measurement over the smallest possible cycle, matching
// the original implementation's node_count clamp (cpu/latency.c); the
// reported Latency.BufferSize is always the size the caller asked for,
// not this (possibly larger) allocation.
func chaseAllocSize(bufferSize, lineSize int) int {
	if min := 2 * lineSize; bufferSize < min {
		return min
	}
	return bufferSize
}

// warmTraversal performs one untimed pass over the cycle so every node
// is resident in cache and its TLB entry is warm before timing starts.
func warmTraversal(g *chase.Graph) unsafe.Pointer {
	p := g.Head()
	n := g.N()
	for i := 0; i < n; i++ {
		p = atomic.LoadPointer((*unsafe.Pointer)(p))
	}
	return p
}
