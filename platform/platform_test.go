// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package platform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageSizeIsPowerOfTwo(t *testing.T) {
	size := PageSize()
	assert.Greater(t, size, 0)
	assert.Zero(t, size&(size-1), "page size %d is not a power of two", size)
}

func TestAffinityRestoreIdempotent(t *testing.T) {
	var calls int
	a := &Affinity{restore: func() error {
		calls++
		return nil
	}}

	assert.NoError(t, a.Restore())
	assert.NoError(t, a.Restore())
	assert.Equal(t, 1, calls, "restore must only invoke the underlying func once")
}

func TestAffinityRestoreNilSafe(t *testing.T) {
	var a *Affinity
	assert.NoError(t, a.Restore())

	a = &Affinity{}
	assert.NoError(t, a.Restore())
}

func TestAffinityRestorePropagatesError(t *testing.T) {
	want := errors.New("boom")
	a := &Affinity{restore: func() error { return want }}

	assert.ErrorIs(t, a.Restore(), want)
	// Second call is a no-op and must not re-report the error.
	assert.NoError(t, a.Restore())
}

func TestAllocFreeRoundTrip(t *testing.T) {
	const size = 64 * 1024
	ptr, err := AllocPages(size)
	assert.NoError(t, err)
	assert.NotNil(t, ptr)
	FreePages(ptr, size)
}
