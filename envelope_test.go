// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream_test

import (
	"bytes"
	"testing"

	"code.hybscloud.com/slipstream"
)

func TestEnvelopeRoundtrip(t *testing.T) {
	want := slipstream.Envelope{
		Identifier: slipstream.Identifier{Host: "h1", Application: "telemetry", Channel: "cpu"},
		Encoding:   "text/plain",
		Kind:       slipstream.KindKeyframe,
	}

	var buf bytes.Buffer
	n, err := slipstream.WriteEnvelope(&buf, want)
	if err != nil {
		t.Fatalf("WriteEnvelope: %v", err)
	}
	if n != slipstream.SizeEnvelope(want) {
		t.Fatalf("wrote %d bytes, SizeEnvelope reports %d", n, slipstream.SizeEnvelope(want))
	}

	got, ok := slipstream.ReadEnvelope(&buf, n)
	if !ok {
		t.Fatal("ReadEnvelope failed")
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestReadEnvelopeRejectsTrailingBytes(t *testing.T) {
	want := slipstream.Envelope{Encoding: "text/plain", Kind: slipstream.KindKeyframe}
	var buf bytes.Buffer
	n, _ := slipstream.WriteEnvelope(&buf, want)
	buf.WriteByte(0x00)
	if _, ok := slipstream.ReadEnvelope(&buf, n+1); ok {
		t.Fatal("ReadEnvelope accepted a region with trailing garbage")
	}
}

func TestReadEnvelopeRejectsInvalidKind(t *testing.T) {
	want := slipstream.Envelope{Encoding: "text/plain", Kind: slipstream.PayloadKind(200)}
	var buf bytes.Buffer
	n, _ := slipstream.WriteEnvelope(&buf, want)
	if _, ok := slipstream.ReadEnvelope(&buf, n); ok {
		t.Fatal("ReadEnvelope accepted an invalid payload kind")
	}
}

func TestIdentifierString(t *testing.T) {
	id := slipstream.Identifier{Host: "h", Application: "a", Channel: "c"}
	if id.String() == "" {
		t.Fatal("Identifier.String returned empty string")
	}
}
