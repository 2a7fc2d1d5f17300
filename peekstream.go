// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream

import (
	"io"
)

// peekBufferSize bounds PeekStream's recording buffer. A recorded window
// holds a frame header plus an envelope. The 12-bit envelope length field
// allows up to 4095 bytes, so a window near that maximum does not fit;
// bytes past the end of the buffer are returned to the reader but not
// recorded.
const peekBufferSize = 4096

// PeekStream wraps an io.Reader with the ability to record a run of reads
// and later replay ("rewind") them before resuming from the underlying
// reader. Scanner uses this to peek a frame header and envelope and then
// leave the stream positioned, from the caller's point of view, exactly
// where it was before the peek.
type PeekStream struct {
	r io.Reader

	recording bool
	buf       [peekBufferSize]byte
	writeOff  int
	readOff   int

	total int64 // bytes ever pulled from r, for Seeker's frame-offset bookkeeping
}

// NewPeekStream wraps r.
func NewPeekStream(r io.Reader) *PeekStream {
	return &PeekStream{r: r}
}

// StartRecording begins capturing every byte subsequently returned by Read
// into the internal buffer, in addition to returning it to the caller.
func (p *PeekStream) StartRecording() {
	p.writeOff = 0
	p.readOff = 0
	p.recording = true
}

// CancelRecording discards anything captured so far and stops recording.
func (p *PeekStream) CancelRecording() {
	p.writeOff = 0
	p.readOff = 0
	p.recording = false
}

// StopRecordingRewind stops recording and arranges for the captured bytes
// to be replayed, once, before reads resume from the underlying reader.
func (p *PeekStream) StopRecordingRewind() {
	p.readOff = 0
	p.recording = false
}

// Read implements io.Reader. While recording, reads are transparent but
// also captured. After StopRecordingRewind, previously captured bytes are
// served first, exactly once, before the underlying reader resumes.
func (p *PeekStream) Read(b []byte) (int, error) {
	if p.recording {
		room := peekBufferSize - p.writeOff
		n, err := p.r.Read(b)
		p.total += int64(n)
		if n > 0 {
			c := n
			if c > room {
				c = room
			}
			copy(p.buf[p.writeOff:p.writeOff+c], b[:c])
			p.writeOff += c
		}
		return n, err
	}

	if p.readOff < p.writeOff {
		n := copy(b, p.buf[p.readOff:p.writeOff])
		p.readOff += n
		if p.readOff == p.writeOff {
			p.readOff, p.writeOff = 0, 0
		}
		return n, nil
	}

	n, err := p.r.Read(b)
	p.total += int64(n)
	return n, err
}

// Consumed returns the total number of bytes ever pulled from the wrapped
// reader, independent of how much has since been replayed from the
// recording buffer. Seeker uses this to compute absolute frame offsets.
func (p *PeekStream) Consumed() int64 { return p.total }

// ResetConsumed sets the Consumed counter, for use after the caller has
// repositioned the underlying reader out of band (Seeker.Seek).
func (p *PeekStream) ResetConsumed(n int64) { p.total = n }

// Skip discards any active recording, then discards n bytes from the
// stream by reading and dropping them (PeekStream does not require a
// seekable underlying reader).
func (p *PeekStream) Skip(n int64) error {
	p.CancelRecording()
	m, err := io.CopyN(io.Discard, p.r, n)
	p.total += m
	return err
}
