// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream

import (
	"encoding/binary"
	"io"
)

// SizeEnvelope returns the exact wire size of e: four length-prefixed
// strings (host, application, channel, encoding) followed by a one-byte
// payload kind tag. The frame header supplies this length on the wire; it
// is never self-describing.
func SizeEnvelope(e Envelope) int {
	n := 1 // payload kind
	n += 2 + len(e.Identifier.Host)
	n += 2 + len(e.Identifier.Application)
	n += 2 + len(e.Identifier.Channel)
	n += 2 + len(e.Encoding)
	return n
}

// WriteEnvelope serializes e to w, returning the number of bytes written.
func WriteEnvelope(w io.Writer, e Envelope) (int, error) {
	buf := make([]byte, 0, SizeEnvelope(e))
	buf = appendString(buf, e.Identifier.Host)
	buf = appendString(buf, e.Identifier.Application)
	buf = appendString(buf, e.Identifier.Channel)
	buf = appendString(buf, e.Encoding)
	buf = append(buf, byte(e.Kind))
	return w.Write(buf)
}

func appendString(buf []byte, s string) []byte {
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(s)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, s...)
}

// ReadEnvelope reads exactly length bytes from r and decodes them as an
// envelope. A short read or malformed schema (a declared string length
// running past the end of the region, an unrecognized payload kind tag, or
// trailing bytes left over) is reported as ok=false; the caller must treat
// the returned Envelope as unspecified in that case.
func ReadEnvelope(r io.Reader, length int) (Envelope, bool) {
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Envelope{}, false
	}

	var e Envelope
	off := 0

	readString := func() (string, bool) {
		if off+2 > len(buf) {
			return "", false
		}
		n := int(binary.BigEndian.Uint16(buf[off : off+2]))
		off += 2
		if off+n > len(buf) {
			return "", false
		}
		s := string(buf[off : off+n])
		off += n
		return s, true
	}

	var ok bool
	if e.Identifier.Host, ok = readString(); !ok {
		return Envelope{}, false
	}
	if e.Identifier.Application, ok = readString(); !ok {
		return Envelope{}, false
	}
	if e.Identifier.Channel, ok = readString(); !ok {
		return Envelope{}, false
	}
	if e.Encoding, ok = readString(); !ok {
		return Envelope{}, false
	}
	if off+1 != len(buf) {
		return Envelope{}, false
	}
	e.Kind = PayloadKind(buf[off])
	if !e.Kind.valid() {
		return Envelope{}, false
	}

	return e, true
}
