// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package structrecord implements a headered, delta-capable codec for
// schema-described structured records, encoded with CBOR. A keyframe
// carries a record's full field set; a delta carries only the fields that
// changed (and the names of any removed) since the instance's last
// keyframe or successfully applied delta.
package structrecord

import (
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"code.hybscloud.com/slipstream"
)

const (
	HeaderEncoding   = "application/vnd.slipstream.struct-header+cbor"
	KeyframeEncoding = "application/vnd.slipstream.struct+cbor"
	DeltaEncoding    = "application/vnd.slipstream.struct-delta+cbor"
)

// Schema describes a record's declared field names. It is carried in the
// channel's Header frame; the wire encoding of keyframes and deltas does
// not otherwise depend on it.
type Schema struct {
	Fields []string `cbor:"fields"`
}

// Record is the value type this codec's Instances accept and produce.
type Record = map[string]any

// Factory produces structrecord Instances. It is stateless and registers
// for HeaderEncoding only: a structrecord channel always starts from a
// Header frame carrying its Schema.
type Factory struct{}

func (Factory) Encoding() string       { return "" }
func (Factory) HeaderEncoding() string { return HeaderEncoding }

func (Factory) NewInstance() (slipstream.Instance, error) {
	return nil, fmt.Errorf("structrecord: codec requires a header, use NewHeaderedInstance")
}

func (Factory) DecodeHeader(r io.Reader, length int) (any, bool) {
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, false
	}
	var schema Schema
	if err := cbor.Unmarshal(buf, &schema); err != nil {
		return nil, false
	}
	return schema, true
}

func (Factory) NewHeaderedInstance(header any) (slipstream.Instance, error) {
	schema, ok := header.(Schema)
	if !ok {
		return nil, fmt.Errorf("structrecord: NewHeaderedInstance: %w", slipstream.ErrInvalidArgument)
	}
	return &instance{schema: schema}, nil
}

type instance struct {
	schema Schema
	last   Record // the last fully materialized record, nil until one exists
}

func (in *instance) Encoding() string      { return KeyframeEncoding }
func (in *instance) HeaderEncoding() string { return HeaderEncoding }
func (in *instance) DeltaEncoding() string { return DeltaEncoding }
func (in *instance) Header() any           { return in.schema }

func (in *instance) Accepts(value any) bool {
	_, ok := value.(Record)
	return ok
}

func (in *instance) SizeHeader() (int, error) {
	b, err := cbor.Marshal(in.schema)
	return len(b), err
}

func (in *instance) WriteHeader(w io.Writer) error {
	b, err := cbor.Marshal(in.schema)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func (in *instance) Size(value any) (int, error) {
	rec, ok := value.(Record)
	if !ok {
		return 0, fmt.Errorf("structrecord: Size: %w", slipstream.ErrInvalidArgument)
	}
	b, err := cbor.Marshal(rec)
	return len(b), err
}

func (in *instance) Write(w io.Writer, value any) error {
	rec, ok := value.(Record)
	if !ok {
		return fmt.Errorf("structrecord: Write: %w", slipstream.ErrInvalidArgument)
	}
	b, err := cbor.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	in.last = cloneRecord(rec)
	return nil
}

func (in *instance) Read(r io.Reader, length int) (any, error) {
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	var rec Record
	if err := cbor.Unmarshal(buf, &rec); err != nil {
		return nil, err
	}
	in.last = cloneRecord(rec)
	return rec, nil
}

// delta is the wire shape of a delta payload: the fields that changed
// value, plus the names of any fields present in the last record but
// absent from this one.
type delta struct {
	Changed Record   `cbor:"changed"`
	Removed []string `cbor:"removed,omitempty"`
}

func diffRecord(last, cur Record) delta {
	d := delta{Changed: make(Record)}
	for k, v := range cur {
		if lv, ok := last[k]; !ok || !reflect.DeepEqual(lv, v) {
			d.Changed[k] = v
		}
	}
	for k := range last {
		if _, ok := cur[k]; !ok {
			d.Removed = append(d.Removed, k)
		}
	}
	return d
}

func applyDelta(last Record, d delta) Record {
	out := cloneRecord(last)
	for k, v := range d.Changed {
		out[k] = v
	}
	for _, k := range d.Removed {
		delete(out, k)
	}
	return out
}

func cloneRecord(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (in *instance) SizeDelta(value any) (int, error) {
	rec, ok := value.(Record)
	if !ok {
		return 0, fmt.Errorf("structrecord: SizeDelta: %w", slipstream.ErrInvalidArgument)
	}
	if in.last == nil {
		return 0, slipstream.ErrNoDelta
	}
	b, err := cbor.Marshal(diffRecord(in.last, rec))
	return len(b), err
}

func (in *instance) WriteDelta(w io.Writer, value any) error {
	rec, ok := value.(Record)
	if !ok {
		return fmt.Errorf("structrecord: WriteDelta: %w", slipstream.ErrInvalidArgument)
	}
	if in.last == nil {
		return slipstream.ErrNoDelta
	}
	b, err := cbor.Marshal(diffRecord(in.last, rec))
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	in.last = cloneRecord(rec)
	return nil
}

func (in *instance) ReadDelta(r io.Reader, length int) (any, error) {
	if in.last == nil {
		return nil, slipstream.ErrNoDelta
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	var d delta
	if err := cbor.Unmarshal(buf, &d); err != nil {
		return nil, err
	}
	rec := applyDelta(in.last, d)
	in.last = cloneRecord(rec)
	return rec, nil
}
