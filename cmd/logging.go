// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

var logWriter *lumberjack.Logger

// setupLogging redirects the standard logger to a rotating file when
// --log-file is set. Without it, diagnostics stay on stderr.
func setupLogging() error {
	if logFile == "" {
		return nil
	}
	if logMaxSize <= 0 {
		return fmt.Errorf("invalid --log-max-size: %d", logMaxSize)
	}

	dir := filepath.Dir(logFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %v", dir, err)
	}

	logWriter = &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackups,
	}
	log.SetOutput(logWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return nil
}

// closeLogging flushes and closes the log file, if any
func closeLogging() {
	if logWriter == nil {
		return
	}
	log.SetOutput(os.Stderr)
	logWriter.Close()
	logWriter = nil
}
