// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream

import "io"

type multiChannelState struct {
	factory Factory
	inst    Instance
	delta   DeltaInstance
}

// MultiChannelReader reads a stream carrying frames for many
// application/channel identifiers interleaved, dispatching each to the
// codec installed for its Identifier. Unlike ChannelReader, a Header frame
// seen after a channel's codec is already installed is not an error: it
// replaces the installed codec, matching the writer-side convention that
// rewriting a channel's header is how its codec is changed mid-stream.
type MultiChannelReader struct {
	src      FrameSource
	registry *Registry
	channels map[Identifier]*multiChannelState
	err      error
}

// NewMultiChannelReader returns a MultiChannelReader over src.
func NewMultiChannelReader(src FrameSource, registry *Registry) *MultiChannelReader {
	return &MultiChannelReader{
		src:      src,
		registry: registry,
		channels: make(map[Identifier]*multiChannelState),
	}
}

// Err returns the first error Read encountered.
func (m *MultiChannelReader) Err() error {
	if m.err != nil {
		return m.err
	}
	return m.src.Err()
}

// Read decodes the next value-bearing frame, installing or reinstalling
// codecs as Header frames are encountered along the way. It returns
// ok=false at end of stream or on error.
func (m *MultiChannelReader) Read() (id Identifier, value any, timestamp uint64, kind PayloadKind, ok bool) {
	for {
		ts, env, peeked := m.src.PeekEnvelope()
		if !peeked {
			return Identifier{}, nil, 0, 0, false
		}
		// PeekEnvelope rewinds to the marker: consume header and envelope
		// so the codec reads only the payload.
		if _, err := io.CopyN(io.Discard, m.src, int64(FrameHeaderLen+SizeEnvelope(env))); err != nil {
			m.err = err
			return Identifier{}, nil, 0, 0, false
		}

		if env.Kind == KindHeader {
			if err := m.installHeader(env); err != nil {
				m.err = err
				return Identifier{}, nil, 0, 0, false
			}
			m.src.Next()
			continue
		}

		cs, installed := m.channels[env.Identifier]
		if !installed {
			var err error
			cs, err = m.installHeaderless(env)
			if err != nil {
				m.err = err
				return Identifier{}, nil, 0, 0, false
			}
		}

		length := int(m.src.PayloadLength())
		var v any
		var err error
		switch env.Kind {
		case KindKeyframe:
			if env.Encoding != cs.inst.Encoding() {
				err = ErrUnknownEncoding
				break
			}
			v, err = cs.inst.Read(m.src, length)
		case KindDelta:
			if cs.delta == nil {
				err = ErrNoDelta
				break
			}
			if env.Encoding != cs.delta.DeltaEncoding() {
				err = ErrUnknownEncoding
				break
			}
			v, err = cs.delta.ReadDelta(m.src, length)
		default:
			err = ErrUnknownEncoding
		}
		if err != nil {
			m.err = err
			return Identifier{}, nil, 0, 0, false
		}

		m.src.Next()
		return env.Identifier, v, ts, env.Kind, true
	}
}

func (m *MultiChannelReader) installHeader(env Envelope) error {
	factory, ok := m.registry.LookupHeadered(env.Encoding)
	if !ok {
		return ErrUnknownEncoding
	}
	header, ok := factory.DecodeHeader(m.src, int(m.src.PayloadLength()))
	if !ok {
		return ErrNoHeader
	}
	inst, err := factory.NewHeaderedInstance(header)
	if err != nil {
		return err
	}
	cs := &multiChannelState{factory: factory, inst: inst}
	cs.delta, _ = inst.(DeltaInstance)
	m.channels[env.Identifier] = cs
	return nil
}

func (m *MultiChannelReader) installHeaderless(env Envelope) (*multiChannelState, error) {
	factory, ok := m.registry.LookupHeaderless(env.Encoding)
	if !ok {
		return nil, ErrUnknownEncoding
	}
	inst, err := factory.NewInstance()
	if err != nil {
		return nil, err
	}
	cs := &multiChannelState{factory: factory, inst: inst}
	cs.delta, _ = inst.(DeltaInstance)
	m.channels[env.Identifier] = cs
	return cs, nil
}
