// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build linux

package platform

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// CacheLineSize returns 64 on x86_64; on arm64 Linux it attempts to
// read the sysfs coherency_line_size for cpu0 and falls back to 64 if
// that fails or reports an implausible value.
func CacheLineSize() int {
	if runtime.GOARCH != "arm64" {
		return 64
	}
	const path = "/sys/devices/system/cpu/cpu0/cache/index0/coherency_line_size"
	data, err := os.ReadFile(path)
	if err != nil {
		return 64
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n <= 0 || n&(n-1) != 0 {
		return 64
	}
	return n
}

// PhysicalRAMBytes returns total physical RAM as reported by sysinfo(2).
// Returns 0 if the syscall fails.
func PhysicalRAMBytes() uint64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0
	}
	return uint64(info.Totalram) * uint64(info.Unit)
}

// LogicalCPUCount returns the number of logical CPUs Go's scheduler
// can see.
func LogicalCPUCount() int {
	return runtime.NumCPU()
}

// PhysicalCPUCount returns the best-effort count of distinct physical
// cores, derived from the unique (physical id, core id) pairs in
// /proc/cpuinfo. Falls back to LogicalCPUCount on any parse failure.
func PhysicalCPUCount() int {
	f, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return LogicalCPUCount()
	}
	defer f.Close()

	type key struct{ phys, core string }
	seen := make(map[key]struct{})
	var curPhys, curCore string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "physical id"):
			curPhys = fieldValue(line)
		case strings.HasPrefix(line, "core id"):
			curCore = fieldValue(line)
			seen[key{curPhys, curCore}] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return LogicalCPUCount()
	}
	return len(seen)
}

func fieldValue(line string) string {
	parts := strings.SplitN(line, ":", 2)
	if len(parts) != 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AllocPages maps size bytes of anonymous, zero-filled, page-aligned
// memory via mmap. The caller is responsible for pre-faulting it
// before timing (memalloc does this).
func AllocPages(size int) (unsafe.Pointer, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAlloc, err)
	}
	return unsafe.Pointer(&data[0]), nil
}

// FreePages releases memory obtained from AllocPages.
func FreePages(ptr unsafe.Pointer, size int) {
	if ptr == nil || size == 0 {
		return
	}
	data := unsafe.Slice((*byte)(ptr), size)
	_ = unix.Munmap(data)
}

// PinCurrentThreadToCore locks the calling goroutine to its current OS
// thread and restricts that thread's scheduling affinity to the single
// given CPU. Best-effort: failures to set affinity are reported but
// the thread lock is still held until Restore.
func PinCurrentThreadToCore(cpu int) (*Affinity, error) {
	runtime.LockOSThread()

	var orig unix.CPUSet
	if err := unix.SchedGetaffinity(0, &orig); err != nil {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("platform: get affinity: %w", err)
	}

	var want unix.CPUSet
	want.Zero()
	want.Set(cpu)
	if err := unix.SchedSetaffinity(0, &want); err != nil {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("platform: set affinity: %w", err)
	}
	log.Debugf("platform: pinned current thread to cpu %d", cpu)

	return &Affinity{restore: func() error {
		defer runtime.UnlockOSThread()
		return unix.SchedSetaffinity(0, &orig)
	}}, nil
}
