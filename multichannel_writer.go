// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream

import (
	"fmt"
	"io"
)

type channelHeader struct {
	factory Factory
	header  any
}

// MultiChannelWriter routes values written under different channel names to
// per-channel codec instances, all appended to a single underlying stream.
// A channel whose codec is headerless is instantiated lazily, by matching
// the first value written for it against registry; a headered channel's
// ChannelWriter (and Header frame) is constructed immediately by
// RegisterHeader, since a value alone does not carry the header.
type MultiChannelWriter struct {
	w           io.Writer
	registry    *Registry
	application string
	opts        []Option

	headers  map[string]channelHeader
	channels map[string]*ChannelWriter
}

// NewMultiChannelWriter returns a MultiChannelWriter appending to w.
func NewMultiChannelWriter(w io.Writer, application string, registry *Registry, opts ...Option) *MultiChannelWriter {
	return &MultiChannelWriter{
		w:           w,
		registry:    registry,
		application: application,
		opts:        opts,
		headers:     make(map[string]channelHeader),
		channels:    make(map[string]*ChannelWriter),
	}
}

// RegisterHeader pre-declares channel's codec and, given a non-nil header,
// immediately constructs that channel's ChannelWriter and emits its Header
// frame, ahead of any Write — matching the constructor-time eager
// instantiation of channel_headers entries.
func (m *MultiChannelWriter) RegisterHeader(channel string, factory Factory, header any) error {
	m.headers[channel] = channelHeader{factory: factory, header: header}
	if header == nil {
		return nil
	}
	cw, err := m.openHeadered(channel, factory, header)
	if err != nil {
		return err
	}
	m.channels[channel] = cw
	return nil
}

func (m *MultiChannelWriter) host() (string, error) {
	o := buildOptions(m.opts...)
	return o.HostDetector.Hostname()
}

func (m *MultiChannelWriter) openHeadered(channel string, factory Factory, header any) (*ChannelWriter, error) {
	host, err := m.host()
	if err != nil {
		return nil, fmt.Errorf("slipstream: detect host: %w", err)
	}

	var inst Instance
	if factoryIsHeadered(factory) {
		if header == nil {
			return nil, ErrNoHeader
		}
		inst, err = factory.NewHeaderedInstance(header)
	} else {
		inst, err = factory.NewInstance()
	}
	if err != nil {
		return nil, err
	}
	return newChannelWriter(m.w, host, m.application, channel, inst)
}

// Write encodes value onto channel, creating that channel's ChannelWriter
// on first use if it was not already constructed by RegisterHeader.
func (m *MultiChannelWriter) Write(channel string, value any, timestamp uint64, forceKeyframe bool) error {
	cw, ok := m.channels[channel]
	if !ok {
		var err error
		cw, err = m.open(channel, value)
		if err != nil {
			return err
		}
		m.channels[channel] = cw
	}
	if !cw.inst.Accepts(value) {
		return ErrUnknownEncoding
	}
	return cw.Write(value, timestamp, forceKeyframe)
}

func (m *MultiChannelWriter) open(channel string, value any) (*ChannelWriter, error) {
	if h, ok := m.headers[channel]; ok {
		return m.openHeadered(channel, h.factory, h.header)
	}

	host, err := m.host()
	if err != nil {
		return nil, fmt.Errorf("slipstream: detect host: %w", err)
	}

	_, inst, ok := m.registry.MatchInstance(value)
	if !ok {
		return nil, ErrUnknownEncoding
	}
	return newChannelWriter(m.w, host, m.application, channel, inst)
}
