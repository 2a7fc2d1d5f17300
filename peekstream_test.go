// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream_test

import (
	"bytes"
	"io"
	"testing"

	"code.hybscloud.com/slipstream"
)

func TestPeekStreamRewindReplaysOnce(t *testing.T) {
	ps := slipstream.NewPeekStream(bytes.NewReader([]byte("ABCDEFGH")))

	ps.StartRecording()
	buf := make([]byte, 4)
	if _, err := io.ReadFull(ps, buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "ABCD" {
		t.Fatalf("got %q, want ABCD", buf)
	}

	ps.StopRecordingRewind()

	// The first 4 bytes must be replayed exactly once...
	if _, err := io.ReadFull(ps, buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "ABCD" {
		t.Fatalf("replay: got %q, want ABCD", buf)
	}

	// ...then reads resume from the underlying source.
	if _, err := io.ReadFull(ps, buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "EFGH" {
		t.Fatalf("resumed read: got %q, want EFGH", buf)
	}
}

func TestPeekStreamCancelRecordingDiscardsBuffer(t *testing.T) {
	ps := slipstream.NewPeekStream(bytes.NewReader([]byte("ABCDEFGH")))

	ps.StartRecording()
	buf := make([]byte, 4)
	io.ReadFull(ps, buf)
	ps.CancelRecording()

	// No replay: the next read continues from the underlying source.
	if _, err := io.ReadFull(ps, buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "EFGH" {
		t.Fatalf("got %q, want EFGH", buf)
	}
}

func TestPeekStreamSkipCancelsRecording(t *testing.T) {
	ps := slipstream.NewPeekStream(bytes.NewReader([]byte("ABCDEFGH")))
	ps.StartRecording()
	buf := make([]byte, 2)
	io.ReadFull(ps, buf)

	if err := ps.Skip(2); err != nil {
		t.Fatal(err)
	}

	rest := make([]byte, 4)
	if _, err := io.ReadFull(ps, rest); err != nil {
		t.Fatal(err)
	}
	if string(rest) != "EFGH" {
		t.Fatalf("got %q, want EFGH", rest)
	}
}
