// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chase builds the pointer-chase graph the latency kernels
// traverse (spec C5): a random Hamiltonian cycle over N cache-line-
// sized nodes, materialized directly in a memalloc.Buffer so that
// every dereference during traversal lands on exactly one cold cache
// line.
package chase

import (
	"errors"
	"math/rand"
	"sync/atomic"
	"unsafe"

	"github.com/toole-brendan/membench/memalloc"
)

// Seed is the deterministic Fisher-Yates seed spec.md requires: two
// builds with the same node count always produce the same graph, a
// property the cache-capacity inference depends on for stability
// across runs.
const Seed = 42

// ptrSize is the offset, in bytes, of the scratch word used by the
// write-latency kernel variant.
const ptrSize = unsafe.Sizeof(uintptr(0))

// ErrTooSmall is returned when the buffer is too small to hold at
// least two nodes.
var ErrTooSmall = errors.New("chase: need at least 2 nodes")

// Graph is a Hamiltonian cycle over the nodes of a buffer, one node
// per cache line. It does not own the underlying buffer; the caller
// retains responsibility for closing it.
type Graph struct {
	base     unsafe.Pointer
	lineSize int
	n        int
}

// Build constructs a random Hamiltonian cycle over buf, treating it as
// an array of lineSize-byte nodes, and writes the cycle's "next"
// pointers directly into the buffer. buf must already be zero-filled
// (memalloc.New guarantees this).
func Build(buf *memalloc.Buffer, lineSize int) (*Graph, error) {
	n := buf.Size / lineSize
	if n < 2 {
		return nil, ErrTooSmall
	}

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	shuffle(perm, rand.New(rand.NewSource(Seed)))

	g := &Graph{base: buf.Ptr, lineSize: lineSize, n: n}
	for i := 0; i < n; i++ {
		cur := perm[i]
		next := perm[(i+1)%n]
		g.setNext(cur, g.nodeAddr(next))
	}
	return g, nil
}

// shuffle performs an in-place Fisher-Yates shuffle.
func shuffle(perm []int, r *rand.Rand) {
	for i := len(perm) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
}

// N returns the number of nodes in the cycle.
func (g *Graph) N() int { return g.n }

// Head returns the address of node 0, the conventional traversal
// starting point.
func (g *Graph) Head() unsafe.Pointer { return g.nodeAddr(0) }

// nodeAddr returns the address of node i.
func (g *Graph) nodeAddr(i int) unsafe.Pointer {
	return unsafe.Pointer(uintptr(g.base) + uintptr(i*g.lineSize))
}

// setNext writes the "next" pointer at the head of node i.
func (g *Graph) setNext(i int, next unsafe.Pointer) {
	atomic.StorePointer((*unsafe.Pointer)(g.nodeAddr(i)), next)
}

// ScratchAddr returns the address of the scratch word the write-
// latency kernel writes on each hop through node (the cache line at
// address node), one pointer-width past the node's "next" field.
func ScratchAddr(node unsafe.Pointer) *uint64 {
	return (*uint64)(unsafe.Pointer(uintptr(node) + ptrSize))
}

// Visited walks the cycle starting at Head and returns the set of
// distinct node addresses reached before returning to the start,
// along with whether exactly N steps returned to the start (used by
// the cyclicity property tests).
func (g *Graph) Visited() (addrs map[unsafe.Pointer]struct{}, closesCycle bool) {
	addrs = make(map[unsafe.Pointer]struct{}, g.n)
	p := g.Head()
	for i := 0; i < g.n; i++ {
		addrs[p] = struct{}{}
		p = *(*unsafe.Pointer)(p)
	}
	return addrs, p == g.Head()
}
