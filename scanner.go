// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream

import (
	"io"
	"runtime"
	"time"

	"code.hybscloud.com/iox"
)

// markerChecksum is FrameMarker interpreted as a little-endian 24-bit
// integer: the value Scanner's sliding window equals once it has consumed
// the three marker bytes in stream order.
const markerChecksum = uint32(0xED)<<16 | 0xFE<<8 | 0xFF

// Scanner resynchronizes to frame boundaries in an arbitrary byte stream
// and exposes frame-aligned peek/advance operations. It implements
// io.Reader: sequential Read calls return the stream's bytes from the
// Scanner's current position, which is the frame's marker right after
// alignment or after PeekEnvelope.
//
// A Scanner is single-threaded: it must not be used from more than one
// goroutine, and callers must not read its underlying source directly.
type Scanner struct {
	ps         *PeekStream
	retryDelay time.Duration
	readLimit  int

	checksum uint32 // 24-bit sliding window over the last 3 bytes consumed
	buffered int    // bytes of the window owed to the logical stream (0..3)
	atEOF    bool
	err      error

	sourceTimestamp uint64 // cached by Peek; 0 means "not cached"
	envelopeLength  uint32
	payloadLength   uint32

	frameStart int64 // ps.Consumed() offset of the current frame's marker
}

// NewScanner wraps r and positions the Scanner at the first frame marker.
func NewScanner(r io.Reader, opts ...Option) *Scanner {
	o := buildOptions(opts...)
	s := &Scanner{
		ps:         NewPeekStream(r),
		retryDelay: o.RetryDelay,
		readLimit:  o.ReadLimit,
	}
	s.Reset()
	return s
}

// FrameStart returns the offset, relative to the Scanner's source at the
// time it was constructed (or last Seek, for a Seeker), of the marker that
// opens the frame the Scanner is currently positioned on.
func (s *Scanner) FrameStart() int64 { return s.frameStart }

// Err returns the first non-EOF error Scanner encountered, or nil if the
// Scanner simply ran out of input. Call it after Next/Peek/PeekEnvelope
// returns false to distinguish a real error (including a retry-exhausted
// iox.ErrWouldBlock on a non-blocking source) from ordinary EOF.
func (s *Scanner) Err() error { return s.err }

// Reset realigns the Scanner on the next frame marker from the current
// position of the underlying stream, discarding any cached peek state.
func (s *Scanner) Reset() {
	s.ps.CancelRecording()
	s.checksum = 0
	s.buffered = 0
	s.atEOF = false
	s.err = nil
	s.sourceTimestamp = 0
	s.envelopeLength = 0
	s.Next()
}

// Next advances past the current frame to the start of the next one. It
// returns false at EOF (check Err for a non-nil cause) or once resync
// exhausts the stream without finding another marker.
func (s *Scanner) Next() bool {
	onMarker := s.buffered == 3 && s.checksum == markerChecksum
	s.softReset()
	if onMarker {
		// The window still holds the current frame's unread marker: move
		// past it so the search below finds the following frame.
		if _, done := s.advance(); done {
			return false
		}
	}
	for s.checksum != markerChecksum {
		if _, done := s.advance(); done {
			return false
		}
	}
	s.frameStart = s.ps.Consumed() - 3
	return true
}

// softReset cancels any in-flight recording and refills the look-behind
// window, without moving past whatever marker is already aligned.
func (s *Scanner) softReset() {
	if s.ps.recording {
		s.ps.CancelRecording()
	}
	for s.buffered < 3 {
		if _, done := s.advance(); done {
			break
		}
	}
	s.sourceTimestamp = 0
	s.envelopeLength = 0
}

// advance consumes one byte from the underlying source into the sliding
// window and returns the byte that falls out the other end (the next
// logical-stream byte), or done=true once the source (and look-behind
// drain) is exhausted.
func (s *Scanner) advance() (cur byte, done bool) {
	cur = byte(s.checksum & 0xFF)
	s.checksum >>= 8

	if s.atEOF {
		s.buffered--
		if s.buffered > 0 {
			return cur, false
		}
	}

	b, err := s.readByte()
	if err != nil {
		if s.atEOF {
			return cur, true
		}
		if err == io.EOF {
			s.atEOF = true
			return cur, false
		}
		s.err = err
		s.atEOF = true
		return cur, false
	}

	s.checksum += uint32(b) << 16
	s.buffered++
	if s.buffered > 3 {
		s.buffered = 3
	}
	return cur, false
}

func (s *Scanner) readByte() (byte, error) {
	var b [1]byte
	for {
		n, err := s.ps.Read(b[:])
		if n > 0 {
			return b[0], nil
		}
		if err == iox.ErrWouldBlock || err == iox.ErrMore {
			if s.waitRetry() {
				continue
			}
			return 0, err
		}
		if err == nil {
			continue
		}
		return 0, err
	}
}

func (s *Scanner) waitRetry() bool {
	if s.retryDelay < 0 {
		return false
	}
	if s.retryDelay == 0 {
		runtime.Gosched()
		return true
	}
	time.Sleep(s.retryDelay)
	return true
}

// Peek nondestructively reads the current frame's header and returns its
// source timestamp. A frame whose timestamp happens to be exactly zero is
// indistinguishable from "not yet peeked" and is not cached: a later Peek
// reads a header again from the current stream position, which lies past
// this frame's header unless PeekEnvelope has rewound it. ChannelWriter.Write
// never emits timestamp zero for this reason.
func (s *Scanner) Peek() (timestamp uint64, ok bool) {
	if s.sourceTimestamp != 0 {
		return s.sourceTimestamp, true
	}

	s.ps.StartRecording()
	f, ok := ReadFraming(s)
	if !ok {
		s.ps.CancelRecording()
		return 0, false
	}
	if s.readLimit > 0 && int(f.EnvelopeLength)+int(f.PayloadLength) > s.readLimit {
		s.ps.CancelRecording()
		s.err = ErrTooLong
		return 0, false
	}

	s.sourceTimestamp = f.SourceTimestamp
	s.envelopeLength = f.EnvelopeLength
	s.payloadLength = f.PayloadLength
	return s.sourceTimestamp, true
}

// PayloadLength returns the payload length of the frame last observed by
// Peek or PeekEnvelope.
func (s *Scanner) PayloadLength() uint32 { return s.payloadLength }

// PeekEnvelope additionally reads the envelope. The stream is left
// positioned as if by a sequential read from the frame's marker: a
// subsequent CopyFrame or Read sees the full frame again, header and
// envelope included.
func (s *Scanner) PeekEnvelope() (timestamp uint64, envelope Envelope, ok bool) {
	ts, ok := s.Peek()
	if !ok {
		return 0, Envelope{}, false
	}

	env, ok := ReadEnvelope(s, int(s.envelopeLength))
	if !ok {
		s.ps.CancelRecording()
		return 0, Envelope{}, false
	}

	s.ps.StopRecordingRewind()
	s.buffered = 3

	return ts, env, true
}

// CopyFrame copies the current frame — marker through the byte just before
// the next marker — to w, returning the number of bytes copied.
func (s *Scanner) CopyFrame(w io.Writer) (int64, error) {
	s.softReset()

	var out []byte
	for {
		cur, done := s.advance()
		if done {
			break
		}
		out = append(out, cur)
		if s.checksum == markerChecksum {
			break
		}
	}

	n, err := w.Write(out)
	return int64(n), err
}

// Read implements io.Reader over the current frame's remaining bytes,
// first draining the 3-byte look-behind window (which may still hold an
// already-consumed marker, replayed by Peek/PeekEnvelope) before reading
// from the underlying source.
func (s *Scanner) Read(p []byte) (int, error) {
	n := 0
	for s.buffered > 0 && n < len(p) {
		switch s.buffered {
		case 1:
			p[n] = byte((s.checksum & 0xFF0000) >> 16)
		case 2:
			p[n] = byte((s.checksum & 0xFF00) >> 8)
		default:
			p[n] = byte(s.checksum & 0xFF)
		}
		n++
		s.buffered--
	}

	if n < len(p) {
		m, err := s.ps.Read(p[n:])
		n += m
		if err != nil {
			return n, err
		}
	}

	return n, nil
}

// Skip discards the next n bytes from the Scanner's current position (the
// frame's marker, after PeekEnvelope), forcing the next Peek/PeekEnvelope to
// re-read a frame header.
func (s *Scanner) Skip(n int64) error {
	if n <= int64(s.buffered) {
		s.buffered -= int(n)
	} else {
		if err := s.ps.Skip(n - int64(s.buffered)); err != nil {
			return err
		}
		s.buffered = 0
	}
	s.sourceTimestamp = 0
	s.envelopeLength = 0
	return nil
}
