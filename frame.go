// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream

import (
	"encoding/binary"
	"io"
)

// FrameHeaderLen is the fixed size in bytes of a frame header.
const FrameHeaderLen = 20

const frameVersion = 2

// FrameMarker is the 3-byte synchronization sequence that opens every
// frame. 0xFF 0xFE is not a valid UTF-8 prefix, which keeps false positives
// rare when resynchronizing inside textual payloads.
var FrameMarker = [3]byte{0xFF, 0xFE, 0xED}

const (
	// MaxEnvelopeLength is the largest value the 12-bit envelope-length
	// field can hold.
	MaxEnvelopeLength = 1<<12 - 1
	// MaxPayloadLength is the largest value the 20-bit payload-length
	// field can hold.
	MaxPayloadLength = 1<<20 - 1

	flagSync byte = 0x01
)

// Framing is the fixed 20-byte header that opens every frame. See §6 of the
// format specification for the authoritative bit layout of bytes 8..11.
type Framing struct {
	EnvelopeLength  uint32 // 0..MaxEnvelopeLength
	PayloadLength   uint32 // 0..MaxPayloadLength
	SourceTimestamp uint64 // nanoseconds since Unix epoch
	Checksum        uint16 // reserved, currently always 0 on write
	Sync            bool
}

// Encode packs f into the 20-byte wire representation. It never fails: out
// of range lengths are masked, matching the sibling Decode's mirrored
// unpacking (round-trip is only guaranteed for in-range values, per the
// framing roundtrip property).
func (f Framing) Encode() [FrameHeaderLen]byte {
	var buf [FrameHeaderLen]byte

	copy(buf[0:3], FrameMarker[:])
	buf[3] = frameVersion
	binary.BigEndian.PutUint16(buf[4:6], f.Checksum)

	if f.Sync {
		buf[6] = flagSync
	}
	buf[7] = FrameHeaderLen

	el := f.EnvelopeLength & MaxEnvelopeLength
	pl := f.PayloadLength & MaxPayloadLength

	buf[8] = byte(el >> 4)
	buf[9] = byte((el&0x0F)<<4) | byte((pl>>16)&0x0F)
	buf[10] = byte(pl >> 8)
	buf[11] = byte(pl)

	binary.BigEndian.PutUint64(buf[12:20], f.SourceTimestamp)

	return buf
}

// DecodeFraming unpacks a 20-byte wire representation. It reports false
// when the marker, version, header length, or flags byte do not match the
// constants this format defines.
func DecodeFraming(buf [FrameHeaderLen]byte) (Framing, bool) {
	if buf[0] != FrameMarker[0] || buf[1] != FrameMarker[1] || buf[2] != FrameMarker[2] {
		return Framing{}, false
	}
	if buf[3] != frameVersion {
		return Framing{}, false
	}
	if buf[6]&^flagSync != 0 {
		return Framing{}, false
	}
	if buf[7] != FrameHeaderLen {
		return Framing{}, false
	}

	f := Framing{
		Checksum:        binary.BigEndian.Uint16(buf[4:6]),
		Sync:            buf[6]&flagSync != 0,
		EnvelopeLength:  (uint32(buf[8]) << 4) | (uint32(buf[9]) >> 4),
		PayloadLength:   (uint32(buf[9]&0x0F) << 16) | (uint32(buf[10]) << 8) | uint32(buf[11]),
		SourceTimestamp: binary.BigEndian.Uint64(buf[12:20]),
	}

	return f, true
}

// ReadFraming reads exactly FrameHeaderLen bytes from r and decodes them.
// A short read or malformed header is reported as ok=false with no error;
// the stream position afterward is unspecified for the malformed case —
// Scanner is the component responsible for resynchronizing.
func ReadFraming(r io.Reader) (Framing, bool) {
	var buf [FrameHeaderLen]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Framing{}, false
	}
	return DecodeFraming(buf)
}

// WriteFraming writes f's wire representation to w, returning the number
// of bytes written and any I/O error from w.
func WriteFraming(w io.Writer, f Framing) (int, error) {
	buf := f.Encode()
	return w.Write(buf[:])
}
