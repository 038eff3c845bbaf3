/*
DESCRIPTION
  device.go provides AVDevice, an interface that describes a configurable
  video source that can be started and stopped from which JPEG data may be
  obtained.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package device provides an interface and implementations for input devices
// that can be started and stopped from which MJPEG data can be obtained.
package device

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/ausocean/bgsub/config"
)

// AVDevice describes a configurable video device from which a stream of JPEG
// images can be read. AVDevice is an io.Reader.
type AVDevice interface {
	io.Reader

	// Name returns the name of the AVDevice.
	Name() string

	// Set configures the AVDevice from the fields of c it uses. Fields that
	// are bad or unset are reported together in a joined error (see
	// errors.Join); an implementation may substitute defaults for them, in
	// which case the device is still usable.
	Set(c config.Config) error

	// Start begins capture; Read may then be called.
	Start() error

	// Stop ends capture. Reads after Stop fail.
	Stop() error

	// IsRunning is used to determine if the device is running.
	IsRunning() bool
}

// JPEG markers that bound a whole image.
var (
	soi = []byte{0xff, 0xd8}
	eoi = []byte{0xff, 0xd9}
)

// Errors returned by ManualInput.
var (
	ErrNotStarted = errors.New("manual input has not been started")
	ErrStopped    = errors.New("manual input has been stopped")
	ErrNotJPEG    = errors.New("write is not a whole JPEG image")
)

// ManualInput is an AVDevice fed by software, for example an embedding
// application that captures frames itself. Each Write must hold exactly one
// JPEG image, so the lexer downstream always sees whole frames. Writes block
// until the image has been read.
type ManualInput struct {
	mu      sync.Mutex
	started bool
	running bool
	frames  uint64
	reader  *io.PipeReader
	writer  *io.PipeWriter
}

// NewManualInput provides a new ManualInput.
func NewManualInput() *ManualInput {
	return &ManualInput{}
}

// Read implements io.Reader, returning image bytes written to m.
func (m *ManualInput) Read(p []byte) (int, error) {
	r, _, err := m.ends()
	if err != nil {
		return 0, err
	}
	return r.Read(p)
}

// Name returns the name of ManualInput i.e. "ManualInput".
func (m *ManualInput) Name() string { return "ManualInput" }

// Set is a no-op; ManualInput uses no config fields.
func (m *ManualInput) Set(c config.Config) error { return nil }

// Start opens a fresh pipe. Starting a running ManualInput is a no-op.
func (m *ManualInput) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}
	m.reader, m.writer = io.Pipe()
	m.started, m.running = true, true
	m.frames = 0
	return nil
}

// Stop closes the pipe. A Write blocked on the pipe returns ErrStopped.
func (m *ManualInput) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return nil
	}
	m.running = false
	return m.reader.CloseWithError(ErrStopped)
}

// IsRunning reports whether Start has been called without a later Stop.
func (m *ManualInput) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Write writes one JPEG image to the pipe. p must begin with an SOI marker
// and end with an EOI marker, otherwise ErrNotJPEG is returned and nothing is
// written.
func (m *ManualInput) Write(p []byte) (int, error) {
	if !bytes.HasPrefix(p, soi) || !bytes.HasSuffix(p[len(soi):], eoi) {
		return 0, ErrNotJPEG
	}
	_, w, err := m.ends()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(p)
	if err != nil {
		return n, err
	}
	m.mu.Lock()
	m.frames++
	m.mu.Unlock()
	return n, nil
}

// ends returns the pipe of a running ManualInput.
func (m *ManualInput) ends() (*io.PipeReader, *io.PipeWriter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case !m.started:
		return nil, nil, ErrNotStarted
	case !m.running:
		return nil, nil, ErrStopped
	}
	return m.reader, m.writer, nil
}

// Frames returns the number of images written since the last Start.
func (m *ManualInput) Frames() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

// CloseWrite ends the image stream. Reads return io.EOF once every written
// image has been consumed.
func (m *ManualInput) CloseWrite() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return ErrNotStarted
	}
	return m.writer.Close()
}
