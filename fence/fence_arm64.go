// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build arm64

package fence

// fullFence executes DMB SY; see fence_arm64.s.
//
//go:noescape
func fullFence()
