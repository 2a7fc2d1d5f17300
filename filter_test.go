// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream_test

import (
	"bytes"
	"testing"

	"code.hybscloud.com/slipstream"
)

func TestFilterMatch(t *testing.T) {
	cpu := slipstream.Identifier{Application: "sys", Channel: "cpu"}
	mem := slipstream.Identifier{Application: "sys", Channel: "mem"}
	other := slipstream.Identifier{Application: "app", Channel: "cpu"}

	cases := []struct {
		patterns []string
		id       slipstream.Identifier
		want     bool
	}{
		{nil, cpu, true},
		{[]string{"cpu"}, cpu, true},
		{[]string{"cpu"}, other, true},
		{[]string{"sys/cpu"}, cpu, true},
		{[]string{"sys/cpu"}, mem, false},
		{[]string{"sys/*"}, mem, true},
		{[]string{"sys/*"}, other, false},
		{[]string{"*/cpu"}, other, true},
		{[]string{"*/mem"}, cpu, false},
		{[]string{"*/*"}, other, true},
	}

	for _, c := range cases {
		f := slipstream.NewFilter(c.patterns...)
		if got := f.Match(c.id); got != c.want {
			t.Errorf("Filter(%v).Match(%v) = %v, want %v", c.patterns, c.id, got, c.want)
		}
	}
}

func TestFilterScannerSkipsNonMatchingFrames(t *testing.T) {
	cpuEnv := slipstream.Envelope{
		Identifier: slipstream.Identifier{Application: "sys", Channel: "cpu"},
		Encoding:   "text/plain", Kind: slipstream.KindKeyframe,
	}
	memEnv := slipstream.Envelope{
		Identifier: slipstream.Identifier{Application: "sys", Channel: "mem"},
		Encoding:   "text/plain", Kind: slipstream.KindKeyframe,
	}

	var stream bytes.Buffer
	stream.Write(buildFrame(t, cpuEnv, []byte("90"), 1))
	stream.Write(buildFrame(t, memEnv, []byte("50"), 2))
	stream.Write(buildFrame(t, cpuEnv, []byte("91"), 3))

	sc := slipstream.NewScanner(&stream)
	fs := slipstream.NewFilterScanner(sc, slipstream.NewFilter("sys/cpu"))

	var timestamps []uint64
	for {
		ts, env, ok := fs.PeekEnvelope()
		if !ok {
			break
		}
		if env.Identifier.Channel != "cpu" {
			t.Fatalf("FilterScanner surfaced a non-matching channel: %+v", env)
		}
		timestamps = append(timestamps, ts)
		if !fs.Next() {
			break
		}
	}

	if len(timestamps) != 2 || timestamps[0] != 1 || timestamps[1] != 3 {
		t.Fatalf("got timestamps %v, want [1 3]", timestamps)
	}
}
