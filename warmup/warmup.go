// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package warmup implements the frequency warmup spin (spec C8): a
// fixed-duration busy loop run once per process lifetime to push the
// CPU out of low-power idle states before any measurement begins.
package warmup

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/toole-brendan/membench/timer"
)

// Duration is the fixed wall-clock time Run spins for. 200ms reliably
// pushes modern CPUs (observed ~3x throughput shift on Apple
// M-series between idle and active) out of idle states without
// meaningfully lengthening a single measurement run.
const Duration = 200 * time.Millisecond

var (
	once sync.Once
	sink uint64
)

// Run spins a busy loop of integer multiplies on an escaping
// accumulator until Duration has elapsed on the monotonic clock. It
// runs at most once per process; subsequent calls are no-ops. timer.Init
// must have already succeeded.
func Run() {
	once.Do(func() {
		var acc uint64 = 1
		start := timer.NowNS()
		target := int64(Duration)
		for timer.NowNS()-start < target {
			acc = acc*2654435761 + 1
		}
		atomic.StoreUint64(&sink, acc)
	})
}
