// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream

import "strings"

type channelPattern struct {
	application string // "*" matches any
	channel     string // "*" matches any
}

// parseChannelPattern parses one of "channel", "app/channel", "app/*",
// "*/channel", or "*/*". A bare token is shorthand for "*/token".
func parseChannelPattern(s string) channelPattern {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return channelPattern{application: s[:i], channel: s[i+1:]}
	}
	return channelPattern{application: "*", channel: s}
}

func (p channelPattern) matches(id Identifier) bool {
	return (p.application == "*" || p.application == id.Application) &&
		(p.channel == "*" || p.channel == id.Channel)
}

// Filter is an OR of glob-style application/channel patterns. An empty
// Filter matches everything, as if it held a single "*/*" pattern.
type Filter struct {
	patterns []channelPattern
}

// NewFilter builds a Filter from pattern strings (see parseChannelPattern).
func NewFilter(patterns ...string) *Filter {
	f := &Filter{patterns: make([]channelPattern, 0, len(patterns))}
	for _, s := range patterns {
		f.patterns = append(f.patterns, parseChannelPattern(s))
	}
	return f
}

// Match reports whether id satisfies any of the Filter's patterns.
func (f *Filter) Match(id Identifier) bool {
	if len(f.patterns) == 0 {
		return true
	}
	for _, p := range f.patterns {
		if p.matches(id) {
			return true
		}
	}
	return false
}

// skippableSource is the subset of FrameSource a Filter wrapper needs to
// force a resync past a frame that failed the filter.
type skippableSource interface {
	FrameSource
	Skip(n int64) error
}

// FilterScanner wraps a Scanner so that Peek/PeekEnvelope/Next only ever
// observe frames whose envelope matches filter, skipping the rest.
type FilterScanner struct {
	src    skippableSource
	filter *Filter
}

// NewFilterScanner wraps src, filtering frames through filter.
func NewFilterScanner(src skippableSource, filter *Filter) *FilterScanner {
	return &FilterScanner{src: src, filter: filter}
}

// skipToMatch returns the matching frame's peeked timestamp and envelope, so
// callers do not peek the envelope of the same frame a second time.
func (fs *FilterScanner) skipToMatch() (uint64, Envelope, bool) {
	for {
		ts, env, ok := fs.src.PeekEnvelope()
		if !ok {
			return 0, Envelope{}, false
		}
		if fs.filter.Match(env.Identifier) {
			return ts, env, true
		}
		if err := fs.src.Skip(1); err != nil {
			return 0, Envelope{}, false
		}
		if !fs.src.Next() {
			return 0, Envelope{}, false
		}
	}
}

func (fs *FilterScanner) Peek() (uint64, bool) {
	if _, _, ok := fs.skipToMatch(); !ok {
		return 0, false
	}
	return fs.src.Peek()
}

func (fs *FilterScanner) PeekEnvelope() (uint64, Envelope, bool) {
	return fs.skipToMatch()
}

func (fs *FilterScanner) PayloadLength() uint32 { return fs.src.PayloadLength() }
func (fs *FilterScanner) Next() bool            { return fs.src.Next() }
func (fs *FilterScanner) Read(p []byte) (int, error) { return fs.src.Read(p) }
func (fs *FilterScanner) Err() error            { return fs.src.Err() }
func (fs *FilterScanner) Skip(n int64) error    { return fs.src.Skip(n) }

// seekableSource is the subset of Seeker a FilterSeeker needs.
type seekableSource interface {
	skippableSource
	Seek(offset int64, whence int) (int64, error)
	Tell() int64
	SeekTime(target uint64) bool
}

// FilterSeeker is a FilterScanner over a seekable source, adding absolute
// and time-based positioning.
type FilterSeeker struct {
	*FilterScanner
	seekSrc seekableSource
}

// NewFilterSeeker wraps src, filtering frames through filter.
func NewFilterSeeker(src seekableSource, filter *Filter) *FilterSeeker {
	return &FilterSeeker{
		FilterScanner: NewFilterScanner(src, filter),
		seekSrc:       src,
	}
}

func (fs *FilterSeeker) Seek(offset int64, whence int) (int64, error) {
	return fs.seekSrc.Seek(offset, whence)
}

func (fs *FilterSeeker) Tell() int64 { return fs.seekSrc.Tell() }

// SeekTime positions at the first matching frame with timestamp ≥ target.
func (fs *FilterSeeker) SeekTime(target uint64) bool {
	if !fs.seekSrc.SeekTime(target) {
		return false
	}
	_, _, ok := fs.skipToMatch()
	return ok
}
