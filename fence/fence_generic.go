// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build !amd64 && !arm64

package fence

import "sync/atomic"

// barrier backs the fallback fence on architectures with no assembly
// implementation. A round-trip atomic store/load is not a hardware
// fence, but it is a portable compiler reordering barrier: the
// compiler cannot hoist surrounding memory accesses across an atomic
// operation with a side effect it must assume is observable.
var barrier int64

// fullFence is the portable fallback: best-effort only, documented in
// spec.md's Open Questions as acceptable where no stronger primitive
// exists.
func fullFence() {
	atomic.AddInt64(&barrier, 1)
	atomic.LoadInt64(&barrier)
}
