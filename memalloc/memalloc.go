// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package memalloc implements the page-committed buffer allocator
// (spec C3): a large, page-aligned allocation that is fully pre-faulted
// before it is returned, so no kernel ever pays a first-touch page
// fault inside a timed region.
package memalloc

import (
	"errors"
	"unsafe"

	"github.com/toole-brendan/membench/platform"
)

// ErrTooSmall is returned when New is asked for a non-positive size.
var ErrTooSmall = errors.New("memalloc: size must be positive")

// Buffer is a page-aligned, pre-faulted region of memory. It is
// exclusively owned by whichever kernel invocation allocated it; its
// lifetime is strictly scoped to that call. Close must run on every
// exit path, including early returns on error, which is why every
// caller in this repository allocates a Buffer with a deferred Close
// immediately after a successful New.
type Buffer struct {
	Ptr  unsafe.Pointer
	Size int

	closed bool
}

// New allocates size bytes via platform.AllocPages and then touches
// every page so the OS backs the whole region with physical memory
// before any timing begins (spec invariant #2).
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, ErrTooSmall
	}

	ptr, err := platform.AllocPages(size)
	if err != nil {
		return nil, err
	}

	touchPages(ptr, size, platform.PageSize())

	return &Buffer{Ptr: ptr, Size: size}, nil
}

// Close releases the buffer. It is idempotent: calling it more than
// once, or on a nil *Buffer, is a no-op.
func (b *Buffer) Close() {
	if b == nil || b.closed {
		return
	}
	b.closed = true
	platform.FreePages(b.Ptr, b.Size)
}

// touchPages writes a byte into every page of the region so the
// kernel commits physical frames for all of it immediately, rather
// than lazily on first access during a timed loop.
func touchPages(ptr unsafe.Pointer, size, pageSize int) {
	base := uintptr(ptr)
	for off := 0; off < size; off += pageSize {
		p := (*byte)(unsafe.Pointer(base + uintptr(off)))
		*p = 0
	}
	// Guarantee the very last byte is touched even when size isn't a
	// page multiple.
	if size > 0 {
		*(*byte)(unsafe.Pointer(base + uintptr(size-1))) = 0
	}
}
