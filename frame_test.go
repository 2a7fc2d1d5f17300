// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream_test

import (
	"bytes"
	"testing"

	"code.hybscloud.com/slipstream"
)

func TestFramingRoundtrip(t *testing.T) {
	cases := []slipstream.Framing{
		{EnvelopeLength: 0, PayloadLength: 0, SourceTimestamp: 0},
		{EnvelopeLength: 42, PayloadLength: 1024, SourceTimestamp: 1735689600000000000},
		{EnvelopeLength: slipstream.MaxEnvelopeLength, PayloadLength: slipstream.MaxPayloadLength, SourceTimestamp: ^uint64(0)},
		{EnvelopeLength: 1, PayloadLength: 1, SourceTimestamp: 1, Sync: true},
	}

	for _, want := range cases {
		buf := want.Encode()
		got, ok := slipstream.DecodeFraming(buf)
		if !ok {
			t.Fatalf("DecodeFraming(%v) failed to decode", buf)
		}
		if got.EnvelopeLength != want.EnvelopeLength || got.PayloadLength != want.PayloadLength ||
			got.SourceTimestamp != want.SourceTimestamp || got.Sync != want.Sync {
			t.Fatalf("roundtrip mismatch: got %+v, want %+v", got, want)
		}
	}
}

func TestDecodeFramingRejectsBadMarker(t *testing.T) {
	buf := slipstream.Framing{}.Encode()
	buf[0] ^= 0xFF
	if _, ok := slipstream.DecodeFraming(buf); ok {
		t.Fatal("DecodeFraming accepted a corrupted marker")
	}
}

func TestWriteReadFraming(t *testing.T) {
	var buf bytes.Buffer
	want := slipstream.Framing{EnvelopeLength: 7, PayloadLength: 99, SourceTimestamp: 123456789}
	if _, err := slipstream.WriteFraming(&buf, want); err != nil {
		t.Fatalf("WriteFraming: %v", err)
	}
	got, ok := slipstream.ReadFraming(&buf)
	if !ok {
		t.Fatal("ReadFraming failed")
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestReadFramingShortInput(t *testing.T) {
	if _, ok := slipstream.ReadFraming(bytes.NewReader([]byte{0xFF, 0xFE})); ok {
		t.Fatal("ReadFraming succeeded on a short read")
	}
}
