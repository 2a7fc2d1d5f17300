// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream

import "os"

// OpenScanner opens path read-only and returns a Scanner over it, plus a
// closer the caller must invoke when done scanning.
func OpenScanner(path string, opts ...Option) (*Scanner, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return NewScanner(f, opts...), f.Close, nil
}

// OpenSeeker opens path read-only and returns a Seeker over it.
func OpenSeeker(path string, opts ...Option) (*Seeker, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return NewSeeker(f, opts...), f.Close, nil
}

// OpenWriter opens path for appending (creating it if necessary) and
// returns the given channel's ChannelWriter plus the file's closer.
func OpenWriter(path, application, channel string, factory Factory, header any, opts ...Option) (*ChannelWriter, func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	cw, err := NewChannelWriter(f, application, channel, factory, header, opts...)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return cw, f.Close, nil
}

// OpenMultiChannelWriter opens path for appending (creating it if
// necessary) and returns a MultiChannelWriter over it.
func OpenMultiChannelWriter(path, application string, registry *Registry, opts ...Option) (*MultiChannelWriter, func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return NewMultiChannelWriter(f, application, registry, opts...), f.Close, nil
}
