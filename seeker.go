// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream

import "io"

// Seeker combines Scanner with random access over an io.ReadSeeker. Any
// Seek invalidates the frame alignment from before it; Seek always
// resynchronizes to the next frame marker at or after the landing offset
// before returning.
type Seeker struct {
	*Scanner
	rs io.ReadSeeker
}

// NewSeeker wraps rs, positioned at the first frame marker from its current
// offset.
func NewSeeker(rs io.ReadSeeker, opts ...Option) *Seeker {
	return &Seeker{
		Scanner: NewScanner(rs, opts...),
		rs:      rs,
	}
}

// Seek repositions the underlying source and resynchronizes to the next
// frame marker at or after the landing offset, returning the offset Seek
// landed the raw source at (not the resynchronized frame's offset — use
// Tell for that once Seek returns).
func (s *Seeker) Seek(offset int64, whence int) (int64, error) {
	newOff, err := s.rs.Seek(offset, whence)
	if err != nil {
		return 0, err
	}
	s.ps.ResetConsumed(newOff)
	s.Scanner.Reset()
	return newOff, nil
}

// Tell returns the byte offset of the start of the current frame.
func (s *Seeker) Tell() int64 { return s.FrameStart() }
