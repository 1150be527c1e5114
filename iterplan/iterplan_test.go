// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package iterplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestIterationsNeverBelowFloor(t *testing.T) {
	cases := []struct {
		kind Kind
		want uint64
	}{
		{Latency, 2},
		{Bandwidth, 2},
		{CacheSweep, 4},
	}
	for _, c := range cases {
		// An enormous buffer drives the target-visits division down to
		// (or below) the floor; the floor must still win.
		got := Iterations(c.kind, 1<<30, 1)
		assert.GreaterOrEqual(t, got, c.want)
	}
}

func TestIterationsDecreasesAsBufferGrows(t *testing.T) {
	small := Iterations(Latency, 1024, 64)
	large := Iterations(Latency, 1024*1024, 64)
	assert.GreaterOrEqual(t, small, large)
}

func TestIterationsIsAlwaysPositive(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		kind := Kind(rapid.IntRange(0, 2).Draw(rt, "kind"))
		bufferSize := rapid.IntRange(1, 1<<28).Draw(rt, "bufferSize")
		elementSize := rapid.IntRange(1, 4096).Draw(rt, "elementSize")

		got := Iterations(kind, bufferSize, elementSize)
		if got == 0 {
			rt.Fatalf("Iterations returned 0 for kind=%v buffer=%d element=%d", kind, bufferSize, elementSize)
		}
	})
}
