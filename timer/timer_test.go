// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitIsIdempotent(t *testing.T) {
	err1 := Init()
	require.NoError(t, err1)

	err2 := Init()
	assert.NoError(t, err2)
}

func TestNowNSIsMonotonicallyNonDecreasing(t *testing.T) {
	require.NoError(t, Init())

	prev := NowNS()
	for i := 0; i < 1000; i++ {
		cur := NowNS()
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestResolutionNSIsPositive(t *testing.T) {
	require.NoError(t, Init())
	assert.Greater(t, ResolutionNS(), 0.0)
}

func TestMeasureResolutionReturnsPositiveDuration(t *testing.T) {
	d := measureResolution()
	assert.Greater(t, int64(d), int64(0))
}
