// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"io"
	"log"
	"time"

	"github.com/Thermoquad/conterm/pkg/conterm"
)

// byteSource is a conterm.ByteSource that also reports why the
// underlying stream ended
type byteSource interface {
	conterm.ByteSource
	Err() error
}

// timeoutReader is the part of serial.Port the serial source needs
type timeoutReader interface {
	io.Reader
	SetReadTimeout(t time.Duration) error
}

// serialSource reads single bytes using the port's own read timeout
type serialSource struct {
	port    timeoutReader
	timeout time.Duration
	set     bool
	err     error
}

func newSerialSource(port timeoutReader) *serialSource {
	return &serialSource{port: port}
}

func (s *serialSource) ReadByteTimeout(timeout time.Duration) (byte, bool) {
	if s.err != nil {
		return 0, false
	}

	// A zero read timeout means "return immediately" on go.bug.st/serial,
	// which is what a non-blocking poll wants
	if !s.set || timeout != s.timeout {
		if err := s.port.SetReadTimeout(timeout); err != nil {
			s.err = err
			return 0, false
		}
		s.timeout = timeout
		s.set = true
	}

	var buf [1]byte
	n, err := s.port.Read(buf[:])
	if err != nil {
		s.err = err
		return 0, false
	}
	if n == 0 {
		return 0, false
	}
	return buf[0], true
}

func (s *serialSource) Err() error {
	return s.err
}

// streamSource turns a plain reader into a timed byte source with a
// pump goroutine
type streamSource struct {
	bytes chan byte
	done  chan struct{}
	err   error // set before done is closed
}

func newStreamSource(r io.Reader) *streamSource {
	s := &streamSource{
		bytes: make(chan byte, 256),
		done:  make(chan struct{}),
	}
	go s.pump(r)
	return s
}

func (s *streamSource) pump(r io.Reader) {
	buf := make([]byte, 128)
	for {
		n, err := r.Read(buf)
		for i := 0; i < n; i++ {
			s.bytes <- buf[i]
		}
		if err != nil {
			if errors.Is(err, ErrConnectionClosed) || errors.Is(err, io.EOF) {
				log.Printf("Connection closed")
			} else {
				log.Printf("Read error: %v", err)
			}
			s.err = err
			close(s.done)
			return
		}
	}
}

func (s *streamSource) ReadByteTimeout(timeout time.Duration) (byte, bool) {
	if timeout <= 0 {
		select {
		case b := <-s.bytes:
			return b, true
		default:
			return 0, false
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case b := <-s.bytes:
		return b, true
	case <-s.done:
		// Bytes queued before the stream ended are still delivered
		select {
		case b := <-s.bytes:
			return b, true
		default:
			return 0, false
		}
	case <-timer.C:
		return 0, false
	}
}

// Err returns the read error that ended the stream, once every byte
// read before it has been consumed
func (s *streamSource) Err() error {
	select {
	case <-s.done:
		if len(s.bytes) == 0 {
			return s.err
		}
	default:
	}
	return nil
}

// newByteSource picks the most direct timed reader for conn
func newByteSource(conn Connection) byteSource {
	if sc, ok := conn.(*SerialConnection); ok {
		return newSerialSource(sc.port)
	}
	return newStreamSource(conn)
}
