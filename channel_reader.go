// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream

import (
	"errors"
	"io"
)

// ErrUnexpectedHeader is returned by ChannelReader.Read when a Header frame
// appears after the stream has already been established: a single channel
// carries at most one header, at the start.
var ErrUnexpectedHeader = errors.New("slipstream: unexpected header frame mid-stream")

// FrameSource is the read-side surface ChannelReader needs: Scanner and
// Seeker both satisfy it.
type FrameSource interface {
	Peek() (timestamp uint64, ok bool)
	PeekEnvelope() (timestamp uint64, envelope Envelope, ok bool)
	PayloadLength() uint32
	Next() bool
	Read(p []byte) (int, error)
	Err() error
}

// ChannelReader reads a single application/channel's frames from src,
// dispatching each to the codec Instance installed from registry. A
// Header frame, if the channel's codec is headered, must be the first
// frame Read observes; any later one is an error.
type ChannelReader struct {
	src      FrameSource
	registry *Registry

	factory Factory
	inst    Instance
	delta   DeltaInstance
	header  bool // a non-headered codec, or a header already installed
	err     error
}

// NewChannelReader constructs a ChannelReader over src. A Header frame, if
// the channel's codec is headered, is installed on the first Read call;
// otherwise installation happens lazily from the first data frame's
// encoding.
func NewChannelReader(src FrameSource, registry *Registry) (*ChannelReader, error) {
	return &ChannelReader{src: src, registry: registry}, nil
}

func (cr *ChannelReader) installHeader(env Envelope) error {
	factory, ok := cr.registry.LookupHeadered(env.Encoding)
	if !ok {
		return ErrUnknownEncoding
	}
	header, ok := factory.DecodeHeader(cr.src, int(cr.src.PayloadLength()))
	if !ok {
		return ErrNoHeader
	}
	inst, err := factory.NewHeaderedInstance(header)
	if err != nil {
		return err
	}
	cr.factory = factory
	cr.inst = inst
	cr.delta, _ = inst.(DeltaInstance)
	cr.header = true
	return nil
}

func (cr *ChannelReader) installHeaderless(env Envelope) error {
	factory, ok := cr.registry.LookupHeaderless(env.Encoding)
	if !ok {
		return ErrUnknownEncoding
	}
	inst, err := factory.NewInstance()
	if err != nil {
		return err
	}
	cr.factory = factory
	cr.inst = inst
	cr.delta, _ = inst.(DeltaInstance)
	cr.header = true
	return nil
}

// Err returns the first error Read encountered.
func (cr *ChannelReader) Err() error {
	if cr.err != nil {
		return cr.err
	}
	return cr.src.Err()
}

// Read decodes the next value-bearing frame and advances past it. A leading
// Header frame is installed transparently the first time it is seen; any
// later one is reported as ErrUnexpectedHeader. Read returns ok=false at
// end of stream or on error (distinguished via Err).
func (cr *ChannelReader) Read() (value any, timestamp uint64, kind PayloadKind, ok bool) {
	for {
		ts, env, peeked := cr.src.PeekEnvelope()
		if !peeked {
			return nil, 0, 0, false
		}
		// PeekEnvelope rewinds to the marker: consume header and envelope
		// so the codec reads only the payload.
		if _, err := io.CopyN(io.Discard, cr.src, int64(FrameHeaderLen+SizeEnvelope(env))); err != nil {
			cr.err = err
			return nil, 0, 0, false
		}

		if env.Kind == KindHeader {
			if cr.header {
				cr.err = ErrUnexpectedHeader
				return nil, 0, 0, false
			}
			if err := cr.installHeader(env); err != nil {
				cr.err = err
				return nil, 0, 0, false
			}
			cr.src.Next()
			continue
		}

		if !cr.header {
			if err := cr.installHeaderless(env); err != nil {
				cr.err = err
				return nil, 0, 0, false
			}
		}

		length := int(cr.src.PayloadLength())
		var v any
		var err error
		switch env.Kind {
		case KindKeyframe:
			if env.Encoding != cr.inst.Encoding() {
				err = ErrUnknownEncoding
				break
			}
			v, err = cr.inst.Read(cr.src, length)
		case KindDelta:
			if cr.delta == nil {
				err = ErrNoDelta
				break
			}
			if env.Encoding != cr.delta.DeltaEncoding() {
				err = ErrUnknownEncoding
				break
			}
			v, err = cr.delta.ReadDelta(cr.src, length)
		default:
			err = ErrUnknownEncoding
		}
		if err != nil {
			cr.err = err
			return nil, 0, 0, false
		}

		cr.src.Next()
		return v, ts, env.Kind, true
	}
}
