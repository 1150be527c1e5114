// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"

	"github.com/toole-brendan/membench/platform"
	"github.com/toole-brendan/membench/sweep"
)

// logWriter implements io.Writer and plugs a file rotator into the
// logging subsystem in addition to stdout, the way every btcsuite
// daemon wires its backend.
type logWriter struct {
	rotator *rotator.Rotator
}

func (w logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if w.rotator != nil {
		w.rotator.Write(p)
	}
	return len(p), nil
}

var (
	backendLog = btclog.NewBackend(logWriter{})
	log        = backendLog.Logger("MAIN")
)

// subsystemLoggers maps every package exposing UseLogger to the name
// its messages should be tagged with.
var subsystemLoggers = map[string]func(btclog.Logger){
	"PLAT": platform.UseLogger,
	"SWEP": sweep.UseLogger,
}

// initLogRotator creates the rotator used by logWriter when logDir is
// non-empty, and wires every package subsystem's logger at the
// requested level. An empty logDir leaves file logging disabled; the
// stdout side of logWriter is always active.
func initLogRotator(logDir string, debug bool) error {
	level := btclog.LevelInfo
	if debug {
		level = btclog.LevelDebug
	}

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o700); err != nil {
			return err
		}
		r, err := rotator.New(filepath.Join(logDir, defaultLogFilename), 10*1024, false, 3)
		if err != nil {
			return err
		}
		backendLog = btclog.NewBackend(logWriter{rotator: r})
		log = backendLog.Logger("MAIN")
	}

	log.SetLevel(level)
	for name, use := range subsystemLoggers {
		l := backendLog.Logger(name)
		l.SetLevel(level)
		use(l)
	}

	// chase, kernel, memalloc, fence, timer, and cacheinfer carry no
	// logger of their own: only platform's thread-pinning and sweep's
	// per-sample progress have anything worth logging at this level.
	return nil
}
