/*
DESCRIPTION
  history.go provides History, a fixed capacity ring of the most recently
  ingested frames.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package subtract

import (
	"fmt"

	"github.com/ausocean/bgsub/frame"
)

// History holds up to Cap frames in insertion order. Once full, each push
// overwrites the oldest frame. Slot buffers are owned by the History and are
// reused across overwrites, so pushed frames are always copied.
// History is not safe for concurrent use.
type History struct {
	slots []*frame.Frame
	i     int // Next write index.
	n     int // Number of frames held.
}

// NewHistory returns a History with capacity n.
func NewHistory(n int) (*History, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid history capacity: %d", n)
	}
	return &History{slots: make([]*frame.Frame, n)}, nil
}

// Push copies f into the slot at the write index and advances the index.
func (h *History) Push(f *frame.Frame) {
	s := h.slots[h.i]
	if s == nil || !s.SameSize(f) {
		h.slots[h.i] = f.Clone()
	} else {
		s.CopyFrom(f)
	}
	h.i = (h.i + 1) % len(h.slots)
	if h.n < len(h.slots) {
		h.n++
	}
}

// Frames returns the held frames, oldest first. The frames belong to the
// History and are only valid until the next Push.
func (h *History) Frames() []*frame.Frame {
	if h.n < len(h.slots) {
		return append([]*frame.Frame(nil), h.slots[:h.n]...)
	}
	out := make([]*frame.Frame, 0, h.n)
	out = append(out, h.slots[h.i:]...)
	return append(out, h.slots[:h.i]...)
}

// Len returns the number of frames held.
func (h *History) Len() int { return h.n }

// Cap returns the capacity of the History.
func (h *History) Cap() int { return len(h.slots) }

// Reset empties the History. Slot storage is kept for reuse.
func (h *History) Reset() {
	h.i, h.n = 0, 0
}
