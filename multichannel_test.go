// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream_test

import (
	"bytes"
	"testing"

	"code.hybscloud.com/slipstream"
	"code.hybscloud.com/slipstream/codec/structrecord"
	"code.hybscloud.com/slipstream/codec/text"
)

func TestMultiChannelWriterReaderRoutesByChannel(t *testing.T) {
	var buf bytes.Buffer
	registry := slipstream.NewRegistry()
	registry.Register(text.PlainTextFactory{})
	registry.Register(text.BinaryFactory{})

	mw := slipstream.NewMultiChannelWriter(&buf, "app", registry,
		slipstream.WithHostDetector(slipstream.StaticHost("h")))

	if err := mw.Write("logs", "line one", 1, false); err != nil {
		t.Fatal(err)
	}
	if err := mw.Write("metrics", []byte{1, 2, 3}, 2, false); err != nil {
		t.Fatal(err)
	}
	if err := mw.Write("logs", "line two", 3, false); err != nil {
		t.Fatal(err)
	}

	sc := slipstream.NewScanner(bytes.NewReader(buf.Bytes()))
	mr := slipstream.NewMultiChannelReader(sc, registry)

	type seen struct {
		channel string
		value   any
		ts      uint64
	}
	var got []seen
	for {
		id, value, ts, _, ok := mr.Read()
		if !ok {
			break
		}
		got = append(got, seen{id.Channel, value, ts})
	}
	if err := mr.Err(); err != nil {
		t.Fatalf("MultiChannelReader.Err: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("got %d frames, want 3: %+v", len(got), got)
	}
	if got[0].channel != "logs" || got[0].value != "line one" {
		t.Fatalf("frame 0: %+v", got[0])
	}
	if got[1].channel != "metrics" {
		t.Fatalf("frame 1: %+v", got[1])
	}
	if got[2].channel != "logs" || got[2].value != "line two" {
		t.Fatalf("frame 2: %+v", got[2])
	}
}

// TestMultiChannelWriterRegisterHeaderIsEager asserts that RegisterHeader
// emits the channel's Header frame immediately, before any Write to that or
// any other channel — not deferred to the registered channel's first Write.
func TestMultiChannelWriterRegisterHeaderIsEager(t *testing.T) {
	var buf bytes.Buffer
	registry := slipstream.NewRegistry()
	registry.RegisterEncoding(structrecord.DeltaEncoding, structrecord.Factory{})
	registry.Register(structrecord.Factory{})

	mw := slipstream.NewMultiChannelWriter(&buf, "app", registry,
		slipstream.WithHostDetector(slipstream.StaticHost("h")))

	if err := mw.RegisterHeader("session", structrecord.Factory{}, structrecord.Schema{Fields: []string{"user"}}); err != nil {
		t.Fatal(err)
	}

	// The Header frame must already be on the wire, with no Write call made.
	sc := slipstream.NewScanner(bytes.NewReader(buf.Bytes()))
	_, env, ok := sc.PeekEnvelope()
	if !ok {
		t.Fatalf("no frame on the wire after RegisterHeader: %v", sc.Err())
	}
	if env.Kind != slipstream.KindHeader || env.Identifier.Channel != "session" {
		t.Fatalf("first frame = %+v, want a session Header frame", env)
	}
	if sc.Next() {
		t.Fatal("a frame followed the Header before any Write was made")
	}
}
