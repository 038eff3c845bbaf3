/*
NAME
  senders.go

DESCRIPTION
  senders.go provides the outputs to which masks are written.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Alan Noble <alan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/ausocean/utils/logging"
)

// Minimum free disk space, in bytes, required to write output.
const spaceBuffer = 50000000 // 50MB.

// fileSender writes an MJPEG stream to a local file.
type fileSender struct {
	file   *os.File
	path   string
	log    logging.Logger
	report func(sent int)
}

// newFileSender returns a new fileSender that appends to the file at path,
// creating it if needed, so masks written before a restart are kept. report,
// if not nil, is called with the size of every write.
func newFileSender(l logging.Logger, path string, report func(sent int)) (*fileSender, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("could not open file to write masks to: %w", err)
	}
	return &fileSender{file: f, path: path, log: l, report: report}, nil
}

// Write implements io.Writer.
func (s *fileSender) Write(d []byte) (int, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(filepath.Dir(s.path), &stat); err != nil {
		return 0, fmt.Errorf("could not read system disk space, abandoning write: %w", err)
	}
	availableSpace := stat.Bavail * uint64(stat.Bsize)
	if availableSpace < spaceBuffer {
		return 0, fmt.Errorf("reached limit of disk space with a buffer of %v bytes, abandoning write", spaceBuffer)
	}

	s.log.Debug("writing to output file", "bytes", len(d))
	n, err := s.file.Write(d)
	if err != nil {
		return n, err
	}
	if s.report != nil {
		s.report(n)
	}
	return n, nil
}

func (s *fileSender) Close() error { return s.file.Close() }
