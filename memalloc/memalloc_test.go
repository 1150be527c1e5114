// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package memalloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewRejectsNonPositiveSize(t *testing.T) {
	_, err := New(0)
	assert.ErrorIs(t, err, ErrTooSmall)

	_, err = New(-1)
	assert.ErrorIs(t, err, ErrTooSmall)
}

func TestNewZeroInitialized(t *testing.T) {
	const size = 256 * 1024
	buf, err := New(size)
	require.NoError(t, err)
	defer buf.Close()

	data := unsafe.Slice((*byte)(buf.Ptr), size)
	for i, b := range data {
		if b != 0 {
			t.Fatalf("byte %d not zero: %d", i, b)
		}
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	buf, err := New(4096)
	require.NoError(t, err)

	buf.Close()
	assert.NotPanics(t, func() { buf.Close() })
}

func TestCloseNilReceiverSafe(t *testing.T) {
	var buf *Buffer
	assert.NotPanics(t, func() { buf.Close() })
}

// TestAllSizesAreFullyTouched property-tests that every byte of a
// freshly allocated buffer, across a spread of sizes that straddle
// page boundaries, is readable and zero.
func TestAllSizesAreFullyTouched(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		size := rapid.IntRange(1, 1<<20).Draw(rt, "size")

		buf, err := New(size)
		require.NoError(rt, err)
		defer buf.Close()

		require.Equal(rt, size, buf.Size)
		data := unsafe.Slice((*byte)(buf.Ptr), size)
		for _, b := range data {
			require.Zero(rt, b)
		}
	})
}
