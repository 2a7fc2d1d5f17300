// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream

import "time"

const timestampLayout = "2006-01-02T15:04:05.000000000"

// FormatTimestamp renders a nanoseconds-since-epoch SourceTimestamp as a
// fixed-width "YYYY-MM-DDTHH:MM:SS.nnnnnnnnn" string in UTC.
func FormatTimestamp(ts uint64) string {
	return time.Unix(0, int64(ts)).UTC().Format(timestampLayout)
}

// ParseTimestamp parses the format produced by FormatTimestamp, returning
// -1 if s is empty or malformed.
func ParseTimestamp(s string) int64 {
	if s == "" {
		return -1
	}
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return -1
	}
	return t.UnixNano()
}

