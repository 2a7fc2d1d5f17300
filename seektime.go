// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream

import "io"

// endSeekTolerance is how far back from EOF SeekTime starts its roll-forward
// search for the last frame, rather than seeking to end-FrameHeaderLen: a
// truncated or still-being-written last frame must not make the whole
// bisection fail.
const endSeekTolerance = 4096

// SeekTime positions the Seeker at the first frame with timestamp ≥ target,
// using bounded interpolation search (falling back to bisection when the
// estimate fails to make progress) followed by a linear roll once the
// bracketing interval narrows below endSeekTolerance bytes. It returns false
// if target is outside the range covered by the stream, leaving the Seeker
// positioned at its prior offset.
func (s *Seeker) SeekTime(target uint64) bool {
	saved := s.Tell()

	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return false
	}
	lowerOffset := s.Tell()
	lowerTS, ok := s.Peek()
	if !ok {
		s.restore(saved)
		return false
	}

	endOffset, err := s.rs.Seek(-endSeekTolerance, io.SeekEnd)
	if err != nil {
		endOffset, err = s.rs.Seek(0, io.SeekStart)
		if err != nil {
			s.restore(saved)
			return false
		}
	}
	s.ps.ResetConsumed(endOffset)
	s.Scanner.Reset()

	upperOffset, upperTS := lowerOffset, lowerTS
	if ts, ok := s.Peek(); ok {
		upperOffset, upperTS = s.Tell(), ts
		for s.Next() {
			ts, ok := s.Peek()
			if !ok {
				break
			}
			upperOffset, upperTS = s.Tell(), ts
		}
	}

	s.restore(saved)

	if target < lowerTS || target > upperTS {
		return false
	}

	for {
		if upperOffset-lowerOffset < endSeekTolerance {
			if _, err := s.Seek(lowerOffset, io.SeekStart); err != nil {
				return false
			}
			return s.rollForwardToTarget(target)
		}

		est := lowerOffset
		if upperTS != lowerTS {
			frac := float64(target-lowerTS) / float64(upperTS-lowerTS)
			est = lowerOffset + int64(frac*float64(upperOffset-lowerOffset))
		}
		if est <= lowerOffset+FrameHeaderLen {
			est = lowerOffset + (upperOffset-lowerOffset)/2
		}
		if est < lowerOffset {
			est = lowerOffset
		}
		if est > upperOffset {
			est = upperOffset
		}

		if _, err := s.Seek(est, io.SeekStart); err != nil {
			return false
		}
		ts, ok := s.Peek()
		if !ok {
			upperOffset = est
			continue
		}

		landing := s.Tell()
		switch {
		case ts == target:
			return true
		case ts < target:
			lowerOffset, lowerTS = landing, ts
		default:
			if landing >= upperOffset {
				// No frame starts between est and the known upper bound.
				landing = est
			}
			upperOffset, upperTS = landing, ts
		}
	}
}

// rollForwardToTarget advances one frame at a time from the Seeker's
// current position until it reaches the first frame with timestamp ≥
// target, or the stream is exhausted first.
func (s *Seeker) rollForwardToTarget(target uint64) bool {
	for {
		ts, ok := s.Peek()
		if !ok {
			return false
		}
		if ts >= target {
			return true
		}
		if !s.Next() {
			return false
		}
	}
}

func (s *Seeker) restore(offset int64) {
	s.rs.Seek(offset, io.SeekStart)
	s.ps.ResetConsumed(offset)
	s.Scanner.Reset()
}
