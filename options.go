// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream

import "time"

// SourceKind describes the expected blocking behavior of the underlying
// byte source a Scanner or Seeker is built on.
//
// It only selects a default RetryDelay; it has no effect on wire format.
type SourceKind uint8

const (
	// SourceFile is a regular, finite file: EOF means EOF.
	SourceFile SourceKind = iota
	// SourcePipe is a stream a producer may still be appending to: a short
	// read or iox.ErrMore should be retried after yielding.
	SourcePipe
	// SourceSocket is a non-blocking transport: iox.ErrWouldBlock is
	// returned to the caller immediately for them to retry later.
	SourceSocket
)

func (k SourceKind) defaultRetryDelay() time.Duration {
	switch k {
	case SourcePipe:
		return 0
	case SourceSocket:
		return -1
	default:
		return -1
	}
}

// Options configures a Scanner, Seeker, ChannelWriter, or MultiChannelWriter.
type Options struct {
	// RetryDelay controls how Scanner reacts to iox.ErrWouldBlock/iox.ErrMore
	// from the underlying source:
	//   - negative: return the semantic error to the caller immediately
	//   - zero: yield (runtime.Gosched) and retry
	//   - positive: sleep for the duration and retry
	RetryDelay time.Duration

	// ReadLimit caps the maximum accepted envelope+payload size in bytes for
	// a single frame. Zero means no limit beyond the wire format's own
	// 12/20-bit field widths.
	ReadLimit int

	// HostDetector resolves the local host name stamped into frames written
	// by a ChannelWriter/MultiChannelWriter. Overridable so tests can pin it.
	HostDetector HostDetector

	// retryDelayExplicit marks that WithRetryDelay was given, so a
	// WithSourceKind applied afterward in the same buildOptions call does
	// not clobber it.
	retryDelayExplicit bool
}

var defaultOptions = Options{
	RetryDelay:   -1,
	ReadLimit:    0,
	HostDetector: osHostDetector{},
}

// Option configures Options.
type Option func(*Options)

// WithRetryDelay sets the retry/wait policy used when the underlying source
// signals iox.ErrWouldBlock or iox.ErrMore. It overrides any WithSourceKind
// default regardless of the order the options are given in.
func WithRetryDelay(d time.Duration) Option {
	return func(o *Options) {
		o.RetryDelay = d
		o.retryDelayExplicit = true
	}
}

// WithSourceKind sets RetryDelay to the default appropriate for the named
// transport kind. A WithRetryDelay given anywhere in the same option list
// always wins, regardless of which one is given last.
func WithSourceKind(kind SourceKind) Option {
	return func(o *Options) {
		if o.retryDelayExplicit {
			return
		}
		o.RetryDelay = kind.defaultRetryDelay()
	}
}

// WithReadLimit caps accepted frame sizes.
func WithReadLimit(limit int) Option {
	return func(o *Options) { o.ReadLimit = limit }
}

// WithHostDetector overrides how ChannelWriter/MultiChannelWriter resolve
// the local host name, for example to pin a fixed name in tests.
func WithHostDetector(d HostDetector) Option {
	return func(o *Options) { o.HostDetector = d }
}

func buildOptions(opts ...Option) Options {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
