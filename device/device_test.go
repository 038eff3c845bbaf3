/*
DESCRIPTION
  device_test.go tests the ManualInput AVDevice.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package device

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestManualInput(t *testing.T) {
	img := []byte{0xff, 0xd8, 0x01, 0x02, 0xff, 0xd9}

	m := NewManualInput()
	if _, err := m.Write(img); !errors.Is(err, ErrNotStarted) {
		t.Errorf("unexpected error writing before start: %v", err)
	}
	if _, err := m.Read(make([]byte, 1)); !errors.Is(err, ErrNotStarted) {
		t.Errorf("unexpected error reading before start: %v", err)
	}
	if err := m.CloseWrite(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("unexpected error closing before start: %v", err)
	}

	err := m.Start()
	if err != nil {
		t.Fatalf("could not start: %v", err)
	}
	if !m.IsRunning() {
		t.Error("device isn't running, when it should be")
	}

	var want []byte
	go func() {
		for i := 0; i < 3; i++ {
			m.Write(img)
		}
		m.CloseWrite()
	}()
	for i := 0; i < 3; i++ {
		want = append(want, img...)
	}
	got, err := io.ReadAll(m)
	if err != nil {
		t.Fatalf("could not read: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected data (-want +got):\n%s", diff)
	}
	if m.Frames() != 3 {
		t.Errorf("unexpected frame count: got:%d want:3", m.Frames())
	}

	err = m.Stop()
	if err != nil {
		t.Errorf("could not stop: %v", err)
	}
	if m.IsRunning() {
		t.Error("device is running, when it should not be")
	}
	if _, err := m.Write(img); !errors.Is(err, ErrStopped) {
		t.Errorf("unexpected error writing after stop: %v", err)
	}
	if _, err := m.Read(make([]byte, 1)); !errors.Is(err, ErrStopped) {
		t.Errorf("unexpected error reading after stop: %v", err)
	}
}

func TestManualInputNotJPEG(t *testing.T) {
	m := NewManualInput()
	err := m.Start()
	if err != nil {
		t.Fatalf("could not start: %v", err)
	}
	defer m.Stop()

	tests := []struct {
		name string
		p    []byte
	}{
		{name: "empty", p: nil},
		{name: "no start", p: []byte{0x00, 0xff, 0xd9}},
		{name: "no end", p: []byte{0xff, 0xd8, 0x00}},
		{name: "shared marker byte", p: []byte{0xff, 0xd8, 0xd9}},
	}
	for _, test := range tests {
		n, err := m.Write(test.p)
		if !errors.Is(err, ErrNotJPEG) || n != 0 {
			t.Errorf("%s: unexpected result: n:%d err:%v", test.name, n, err)
		}
	}
	if m.Frames() != 0 {
		t.Errorf("rejected writes were counted: %d", m.Frames())
	}
}

func TestManualInputStopUnblocksWrite(t *testing.T) {
	m := NewManualInput()
	err := m.Start()
	if err != nil {
		t.Fatalf("could not start: %v", err)
	}

	errc := make(chan error)
	go func() {
		_, err := m.Write([]byte{0xff, 0xd8, 0xff, 0xd9})
		errc <- err
	}()
	time.Sleep(10 * time.Millisecond)
	m.Stop()

	select {
	case err := <-errc:
		if !errors.Is(err, ErrStopped) {
			t.Errorf("unexpected error from blocked write: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("write still blocked after stop")
	}
}
