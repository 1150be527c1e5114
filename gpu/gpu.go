// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package gpu defines the contract a GPU memory-benchmark backend
// must satisfy to plug into the same result shapes the CPU core
// exports (spec section 1: "the GPU benchmark surface ... treated as
// an optional pluggable backend whose only requirement is to satisfy
// the same result-shape contract"). This package itself ships only
// the default, always-unavailable backend; a real CUDA/HIP/Metal
// backend is an external collaborator.
package gpu

import "errors"

// ErrUnavailable is the distinguished error every Backend method
// returns when no GPU device (or no compiled GPU support) is present.
// The higher-level driver is expected to skip GPU sections on this
// error rather than treat it as fatal.
var ErrUnavailable = errors.New("gpu: no backend available")

// Info is the device metadata a Backend reports from GetInfo.
type Info struct {
	DeviceID       int
	Name           string
	TotalMemBytes  uint64
	MemoryBusWidth int
	MemoryClockMHz int
}

// Latency is a single GPU latency measurement.
type Latency struct {
	DeviceID     int
	BufferSize   uint64
	AvgLatencyNS float64
	Accesses     uint64
}

// Bandwidth is a single GPU bandwidth measurement.
type Bandwidth struct {
	DeviceID      int
	BufferSize    uint64
	BandwidthGBPS float64
	BytesMoved    uint64
}

// Backend is the pluggable GPU benchmark surface: read-latency
// (pointer-chase over device global memory) and read/write bandwidth
// (device-to-device copy), plus a device-info query, each keyed by a
// device_id parameter the CPU side has no equivalent of.
type Backend interface {
	GetInfo(deviceID int) (Info, error)
	ReadLatency(deviceID int, bufferSize uint64, iterations uint64) (Latency, error)
	ReadBandwidth(deviceID int, bufferSize uint64, iterations uint64) (Bandwidth, error)
	WriteBandwidth(deviceID int, bufferSize uint64, iterations uint64) (Bandwidth, error)
}

// unavailable is the default Backend: it always reports ErrUnavailable,
// exactly mirroring the original implementation's gpu_stub.c, which
// reports "no device" rather than failing the process.
type unavailable struct{}

func (unavailable) GetInfo(int) (Info, error) { return Info{}, ErrUnavailable }

func (unavailable) ReadLatency(int, uint64, uint64) (Latency, error) {
	return Latency{}, ErrUnavailable
}

func (unavailable) ReadBandwidth(int, uint64, uint64) (Bandwidth, error) {
	return Bandwidth{}, ErrUnavailable
}

func (unavailable) WriteBandwidth(int, uint64, uint64) (Bandwidth, error) {
	return Bandwidth{}, ErrUnavailable
}

// Default is the backend used when no GPU collaborator has been
// wired in.
var Default Backend = unavailable{}
