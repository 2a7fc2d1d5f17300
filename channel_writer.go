// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream

import (
	"bytes"
	"fmt"
	"io"
	"time"
)

// ChannelWriter appends frames for a single application/channel to w. It
// owns one codec Instance for the lifetime of the writer and enforces
// strict keyframe/delta alternation unless a write is forced.
type ChannelWriter struct {
	w       io.Writer
	host    string
	app     string
	channel string

	inst      Instance
	delta     DeltaInstance // non-nil if inst also implements DeltaInstance
	expectKey bool
}

// NewChannelWriter constructs an Instance from factory (a HeaderedInstance
// if factory is headered, using header) and, for a headered codec,
// immediately emits its Header frame.
func NewChannelWriter(w io.Writer, application, channel string, factory Factory, header any, opts ...Option) (*ChannelWriter, error) {
	o := buildOptions(opts...)

	host, err := o.HostDetector.Hostname()
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

	return newChannelWriter(w, host, application, channel, inst)
}

func newChannelWriter(w io.Writer, host, application, channel string, inst Instance) (*ChannelWriter, error) {
	cw := &ChannelWriter{
		w:         w,
		host:      host,
		app:       application,
		channel:   channel,
		inst:      inst,
		expectKey: true,
	}
	cw.delta, _ = inst.(DeltaInstance)

	if hi, ok := inst.(HeaderedInstance); ok {
		if err := cw.writeHeaderFrame(hi); err != nil {
			return nil, err
		}
	}

	return cw, nil
}

func (cw *ChannelWriter) identifier() Identifier {
	return Identifier{Host: cw.host, Application: cw.app, Channel: cw.channel}
}

func (cw *ChannelWriter) writeHeaderFrame(hi HeaderedInstance) error {
	n, err := hi.SizeHeader()
	if err != nil {
		return err
	}

	var payload bytes.Buffer
	payload.Grow(n)
	if err := hi.WriteHeader(&payload); err != nil {
		return err
	}

	env := Envelope{Identifier: cw.identifier(), Encoding: hi.HeaderEncoding(), Kind: KindHeader}
	return cw.writeFrame(env, payload.Bytes(), uint64(time.Now().UnixNano()))
}

// Write encodes value and appends it as a keyframe or delta frame. A
// timestamp of 0 is replaced by the current wall-clock time (nanoseconds
// since the Unix epoch); forceKeyframe overrides the normal K,D,K,D
// alternation, which otherwise resumes with a delta on the following call.
// A codec lacking delta support always writes keyframes.
func (cw *ChannelWriter) Write(value any, timestamp uint64, forceKeyframe bool) error {
	if timestamp == 0 {
		timestamp = uint64(time.Now().UnixNano())
	}

	writeKey := forceKeyframe || cw.expectKey || cw.delta == nil

	var (
		payload bytes.Buffer
		encoding string
		kind    PayloadKind
	)

	if writeKey {
		n, err := cw.inst.Size(value)
		if err != nil {
			return err
		}
		payload.Grow(n)
		if err := cw.inst.Write(&payload, value); err != nil {
			return err
		}
		encoding, kind = cw.inst.Encoding(), KindKeyframe
		cw.expectKey = false
	} else {
		n, err := cw.delta.SizeDelta(value)
		if err != nil {
			return err
		}
		payload.Grow(n)
		if err := cw.delta.WriteDelta(&payload, value); err != nil {
			return err
		}
		encoding, kind = cw.delta.DeltaEncoding(), KindDelta
		cw.expectKey = true
	}

	env := Envelope{Identifier: cw.identifier(), Encoding: encoding, Kind: kind}
	return cw.writeFrame(env, payload.Bytes(), timestamp)
}

func (cw *ChannelWriter) writeFrame(env Envelope, payload []byte, timestamp uint64) error {
	if len(payload) > MaxPayloadLength {
		return ErrTooLong
	}
	envLen := SizeEnvelope(env)
	if envLen > MaxEnvelopeLength {
		return ErrTooLong
	}

	f := Framing{
		EnvelopeLength:  uint32(envLen),
		PayloadLength:   uint32(len(payload)),
		SourceTimestamp: timestamp,
	}
	if _, err := WriteFraming(cw.w, f); err != nil {
		return err
	}
	if _, err := WriteEnvelope(cw.w, env); err != nil {
		return err
	}
	_, err := cw.w.Write(payload)
	return err
}
