// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command membench is a thin driver over the membench root package:
// it parses flags and an optional YAML config file, wires up logging,
// runs the requested operation once, and prints the result. It is
// deliberately not the full formatter/TTY menu a production benchmark
// tool would ship; it exists to exercise the library end to end.
package main

import (
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"

	"github.com/toole-brendan/membench"
)

func main() {
	if err := run(); err != nil {
		if flagErr, ok := err.(*flags.Error); ok && flagErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "membench:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if err := initLogRotator(cfg.LogDir, cfg.Debug); err != nil {
		return err
	}

	switch cfg.Op {
	case "read-latency":
		r, err := membench.ReadLatency(cfg.Size, cfg.Iterations)
		if err != nil {
			return err
		}
		fmt.Printf("read-latency  size=%d avg=%.3fns accesses=%d\n", r.BufferSize, r.AvgLatencyNS, r.Accesses)
	case "write-latency":
		r, err := membench.WriteLatency(cfg.Size, cfg.Iterations)
		if err != nil {
			return err
		}
		fmt.Printf("write-latency size=%d avg=%.3fns accesses=%d\n", r.BufferSize, r.AvgLatencyNS, r.Accesses)
	case "read-bandwidth":
		r, err := membench.ReadBandwidth(cfg.Size, cfg.Iterations)
		if err != nil {
			return err
		}
		fmt.Printf("read-bandwidth  size=%d %.3f GB/s avg=%.3fns bytes=%d\n", r.BufferSize, r.BandwidthGBPS, r.AvgLatencyNS, r.BytesMoved)
	case "write-bandwidth":
		r, err := membench.WriteBandwidth(cfg.Size, cfg.Iterations)
		if err != nil {
			return err
		}
		fmt.Printf("write-bandwidth size=%d %.3f GB/s avg=%.3fns bytes=%d\n", r.BufferSize, r.BandwidthGBPS, r.AvgLatencyNS, r.BytesMoved)
	case "detect-cache":
		info, err := membench.DetectCacheWithOptions(cfg.sweepOptions())
		if err != nil {
			return err
		}
		defer membench.DisposeCacheInfo(&info)
		fmt.Printf("L1=%d bytes\nL2=%d bytes\nL3=%d bytes\n", info.L1Bytes, info.L2Bytes, info.L3Bytes)
		for i, size := range info.SweepSizes {
			log.Debugf("sweep sample: size=%d avg=%.3fns", size, info.SweepLatencies[i])
		}
	default:
		return fmt.Errorf("unknown -op %q", cfg.Op)
	}
	return nil
}
