// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream_test

import (
	"testing"

	"code.hybscloud.com/slipstream"
)

func TestTimestampFormatParseRoundtrip(t *testing.T) {
	cases := []uint64{0, 1, 1735689600123456789}
	for _, ts := range cases {
		s := slipstream.FormatTimestamp(ts)
		got := slipstream.ParseTimestamp(s)
		if got != int64(ts) {
			t.Errorf("FormatTimestamp(%d) = %q, ParseTimestamp back = %d", ts, s, got)
		}
	}
}

func TestParseTimestampInvalid(t *testing.T) {
	for _, s := range []string{"", "not-a-timestamp", "2026-13-40T99:99:99.000000000"} {
		if got := slipstream.ParseTimestamp(s); got != -1 {
			t.Errorf("ParseTimestamp(%q) = %d, want -1", s, got)
		}
	}
}
