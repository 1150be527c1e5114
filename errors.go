// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package membench

import "errors"

// The three error kinds spec section 7 defines. Per-sample failures
// inside DetectCache's sweep are not among them: those are non-fatal
// and recorded as a negative sentinel latency instead of surfaced as
// an error.
var (
	// ErrInvalidArgument is returned immediately, before any
	// allocation, when a caller supplies a size below a kernel's
	// minimum.
	ErrInvalidArgument = errors.New("membench: invalid argument")

	// ErrOutOfMemory is returned when page-committed allocation
	// fails; any partial state is released before it is returned.
	ErrOutOfMemory = errors.New("membench: out of memory")

	// ErrPlatformInitFailure is returned if the monotonic timer could
	// not be initialized at first use. Initialization is not retried:
	// every later operation returns this error as well, without
	// measuring.
	ErrPlatformInitFailure = errors.New("membench: platform initialization failed")
)
