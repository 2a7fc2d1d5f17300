// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream

import "io"

// Instance is a live per-channel codec. It is created once per Identifier
// (reader side) or channel name (writer side) and lives for as long as the
// owning reader/writer: stateful instances may keep the last decoded
// keyframe internally so that a later ReadDelta can reconstruct against it.
type Instance interface {
	// Encoding is the media-type string this instance writes keyframes
	// with (or expects them to arrive tagged as, on the read side).
	Encoding() string

	// Accepts reports whether value is of the concrete Go type this
	// instance encodes. MultiChannelWriter uses it to match an unrouted
	// value against the registry, and to reject a value whose runtime
	// type disagrees with an already-bound channel's codec.
	Accepts(value any) bool

	Size(value any) (int, error)
	Write(w io.Writer, value any) error

	// Read decodes a keyframe payload of exactly length bytes.
	Read(r io.Reader, length int) (any, error)
}

// DeltaInstance is implemented by codec instances capable of differential
// encoding. ReadDelta must fail with ErrNoDelta if no keyframe has been
// decoded yet on this instance.
type DeltaInstance interface {
	Instance
	DeltaEncoding() string
	SizeDelta(value any) (int, error)
	WriteDelta(w io.Writer, value any) error
	ReadDelta(r io.Reader, length int) (any, error)
}

// HeaderedInstance is implemented by codec instances that carry a one-shot
// header frame ahead of any keyframe/delta.
type HeaderedInstance interface {
	Instance
	HeaderEncoding() string
	Header() any
	SizeHeader() (int, error)
	WriteHeader(w io.Writer) error
}

// Factory constructs codec Instances. A headerless Factory's NewInstance is
// called eagerly the first time a channel name/identifier is observed; a
// headered Factory's NewHeaderedInstance is called once a header value is
// available (from a writer's pre-registration or a reader's Header frame),
// and its DecodeHeader is used to turn header payload bytes into that
// value.
type Factory interface {
	// Encoding is "" for a Factory that only ever produces headered
	// instances (the data encoding is then reported per-instance).
	Encoding() string
	// HeaderEncoding is "" for a headerless codec.
	HeaderEncoding() string

	NewInstance() (Instance, error)

	// DecodeHeader turns a raw header payload into the header value used
	// by NewHeaderedInstance. It returns ok=false on a malformed header.
	DecodeHeader(r io.Reader, length int) (header any, ok bool)
	NewHeaderedInstance(header any) (Instance, error)
}

func factoryIsHeadered(f Factory) bool {
	return f.HeaderEncoding() != ""
}

// Registry maps an encoding string to the Factory that produces codec
// instances for it. Multiple encodings per Factory (data + delta) are all
// registered to the same Factory value.
type Registry struct {
	byEncoding map[string]Factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byEncoding: make(map[string]Factory)}
}

// Register associates f.Encoding() and f.HeaderEncoding(), whichever are
// non-empty, with f. A delta encoding is not registered by Register; add it
// with RegisterEncoding.
func (r *Registry) Register(f Factory) {
	if e := f.Encoding(); e != "" {
		r.byEncoding[e] = f
	}
	if e := f.HeaderEncoding(); e != "" {
		r.byEncoding[e] = f
	}
}

// RegisterEncoding associates an additional encoding string (typically a
// delta encoding) with an already-registered Factory.
func (r *Registry) RegisterEncoding(encoding string, f Factory) {
	r.byEncoding[encoding] = f
}

// Lookup returns the Factory registered for encoding, if any.
func (r *Registry) Lookup(encoding string) (Factory, bool) {
	f, ok := r.byEncoding[encoding]
	return f, ok
}

// LookupHeaderless returns a Factory among candidates whose headerless
// Encoding matches encoding. Used by MultiChannelReader when it observes a
// Keyframe/Delta frame for an identifier it has not installed a codec for.
func (r *Registry) LookupHeaderless(encoding string) (Factory, bool) {
	f, ok := r.byEncoding[encoding]
	if !ok || factoryIsHeadered(f) {
		return nil, false
	}
	return f, true
}

// LookupHeadered returns a Factory among candidates whose HeaderEncoding
// matches encoding.
func (r *Registry) LookupHeadered(encoding string) (Factory, bool) {
	f, ok := r.byEncoding[encoding]
	if !ok || !factoryIsHeadered(f) {
		return nil, false
	}
	return f, true
}

// MatchInstance picks the Factory among a Registry's entries whose
// NewInstance produces an Instance accepting value, for headerless
// channels where the writer has not been told an encoding up front.
func (r *Registry) MatchInstance(value any) (Factory, Instance, bool) {
	seen := make(map[Factory]bool)
	for _, f := range r.byEncoding {
		if seen[f] || factoryIsHeadered(f) {
			continue
		}
		seen[f] = true
		inst, err := f.NewInstance()
		if err != nil {
			continue
		}
		if inst.Accepts(value) {
			return f, inst, true
		}
	}
	return nil, nil, false
}
