// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fence

import "unsafe"

// FlushLine evicts the cache line containing addr from every cache
// level, the way the original implementation's membench_clflush
// (x86 CLFLUSH) and membench_dc_civac (ARM64 "DC CIVAC") do. Go's
// portable assembler does not expose either instruction as a stable
// mnemonic across toolchain versions, so this degrades to a full
// fence: it orders memory correctly but does not force an eviction.
// It exists so a future eviction-based cache probe (as opposed to the
// working-set-sweep approach cacheinfer uses) has a named place to
// plug in a real per-architecture implementation.
func FlushLine(addr unsafe.Pointer) {
	_ = addr
	Full()
}
