// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package timer provides the nanosecond monotonic clock every
// measurement kernel times against. The absolute value returned by
// NowNS carries no meaning; only the difference between two calls
// does.
package timer

import (
	"errors"
	"sync"
	"time"
)

// ErrInit is returned by Init (and wrapped by membench's
// ErrPlatformInitFailure) when the clock's resolution could not be
// established.
var ErrInit = errors.New("timer: could not establish monotonic clock resolution")

var (
	once       sync.Once
	initErr    error
	base       time.Time
	resolution time.Duration
)

// Init performs one-time initialization of the monotonic clock. It is
// idempotent: a second call after a successful first call is a no-op
// that returns nil immediately. Measurement functions in other
// packages must not be called if Init returns a non-nil error.
func Init() error {
	once.Do(func() {
		base = time.Now()
		resolution = measureResolution()
		if resolution <= 0 {
			initErr = ErrInit
		}
	})
	return initErr
}

// NowNS returns a strictly non-decreasing nanosecond count derived
// from time.Now's monotonic reading. Init must have succeeded before
// this is called.
func NowNS() int64 {
	return int64(time.Since(base))
}

// ResolutionNS returns the smallest measurable tick, in nanoseconds.
func ResolutionNS() float64 {
	return float64(resolution)
}

// measureResolution samples the clock until it visibly advances,
// several times, and returns the smallest observed delta as an
// estimate of the timer's granularity.
func measureResolution() time.Duration {
	const probes = 8
	min := time.Duration(1<<63 - 1)
	prev := time.Now()
	for i := 0; i < probes; i++ {
		var next time.Time
		for {
			next = time.Now()
			if next.After(prev) {
				break
			}
		}
		if d := next.Sub(prev); d < min {
			min = d
		}
		prev = next
	}
	return min
}
