// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// rawLineWriter rewrites "\n" as "\r\n" for a terminal in raw mode,
// where a bare LF moves down without returning to column 0
type rawLineWriter struct {
	w io.Writer
}

func (r rawLineWriter) Write(p []byte) (int, error) {
	if bytes.IndexByte(p, '\n') < 0 {
		return r.w.Write(p)
	}
	if _, err := r.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// reportWriter returns where status and event lines should go for conn
func reportWriter(conn Connection) io.Writer {
	if isLocal(conn) {
		return rawLineWriter{w: os.Stdout}
	}
	return os.Stdout
}

// stopFlag is raised by SIGINT or SIGTERM
type stopFlag struct {
	raised atomic.Bool
	ch     chan os.Signal
}

func watchSignals() *stopFlag {
	f := &stopFlag{ch: make(chan os.Signal, 1)}
	signal.Notify(f.ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if _, ok := <-f.ch; ok {
			f.raised.Store(true)
		}
	}()
	return f
}

func (f *stopFlag) Raised() bool {
	return f.raised.Load()
}

func (f *stopFlag) Stop() {
	signal.Stop(f.ch)
	close(f.ch)
}
