// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream_test

import (
	"bytes"
	"fmt"
	"testing"

	"code.hybscloud.com/slipstream"
)

func buildTimeSeries(t *testing.T, n int) ([]byte, []uint64) {
	t.Helper()
	env := slipstream.Envelope{Encoding: "text/plain", Kind: slipstream.KindKeyframe}
	var buf bytes.Buffer
	var timestamps []uint64
	for i := 0; i < n; i++ {
		ts := uint64(i) * 1000
		payload := []byte(fmt.Sprintf("sample-payload-number-%04d-of-the-series", i))
		buf.Write(buildFrame(t, env, payload, ts))
		timestamps = append(timestamps, ts)
	}
	return buf.Bytes(), timestamps
}

func TestSeekTimeExactAndBetween(t *testing.T) {
	data, timestamps := buildTimeSeries(t, 150)
	if len(data) < 4096*2 {
		t.Fatalf("test fixture too small to exercise interpolation: %d bytes", len(data))
	}

	sk := slipstream.NewSeeker(bytes.NewReader(data))

	// Exact match.
	mid := timestamps[len(timestamps)/2]
	if !sk.SeekTime(mid) {
		t.Fatalf("SeekTime(%d) returned false", mid)
	}
	if ts, ok := sk.Peek(); !ok || ts != mid {
		t.Fatalf("after SeekTime(%d): Peek = (%d,%v)", mid, ts, ok)
	}

	// Between two frames: lands on the next one.
	between := mid + 500
	if !sk.SeekTime(between) {
		t.Fatalf("SeekTime(%d) returned false", between)
	}
	if ts, ok := sk.Peek(); !ok || ts != mid+1000 {
		t.Fatalf("after SeekTime(%d): Peek = (%d,%v), want %d", between, ts, ok, mid+1000)
	}

	// First and last frame.
	if !sk.SeekTime(timestamps[0]) {
		t.Fatal("SeekTime(first) returned false")
	}
	if ts, _ := sk.Peek(); ts != timestamps[0] {
		t.Fatalf("SeekTime(first): got %d, want %d", ts, timestamps[0])
	}
	last := timestamps[len(timestamps)-1]
	if !sk.SeekTime(last) {
		t.Fatal("SeekTime(last) returned false")
	}
	if ts, _ := sk.Peek(); ts != last {
		t.Fatalf("SeekTime(last): got %d, want %d", ts, last)
	}
}

func TestSeekTimeOutOfRange(t *testing.T) {
	data, timestamps := buildTimeSeries(t, 10)
	sk := slipstream.NewSeeker(bytes.NewReader(data))

	if sk.SeekTime(timestamps[len(timestamps)-1] + 1000000) {
		t.Fatal("SeekTime beyond the last frame unexpectedly succeeded")
	}
}
