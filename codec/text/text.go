// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package text provides the two built-in headerless codecs: PlainText for
// string values and Binary for raw []byte values.
package text

import (
	"fmt"
	"io"

	"code.hybscloud.com/slipstream"
)

// PlainTextEncoding is the media type PlainText instances report.
const PlainTextEncoding = "text/plain"

// PlainTextFactory produces Instances that accept string values, written
// out verbatim with no framing of their own.
type PlainTextFactory struct{}

func (PlainTextFactory) Encoding() string       { return PlainTextEncoding }
func (PlainTextFactory) HeaderEncoding() string { return "" }

func (PlainTextFactory) NewInstance() (slipstream.Instance, error) {
	return plainTextInstance{}, nil
}

func (PlainTextFactory) DecodeHeader(io.Reader, int) (any, bool) { return nil, false }
func (PlainTextFactory) NewHeaderedInstance(any) (slipstream.Instance, error) {
	return nil, fmt.Errorf("text: PlainText is headerless")
}

type plainTextInstance struct{}

func (plainTextInstance) Encoding() string { return PlainTextEncoding }

func (plainTextInstance) Accepts(value any) bool {
	_, ok := value.(string)
	return ok
}

func (plainTextInstance) Size(value any) (int, error) {
	s, ok := value.(string)
	if !ok {
		return 0, fmt.Errorf("text: PlainText.Size: %w", slipstream.ErrInvalidArgument)
	}
	return len(s), nil
}

func (plainTextInstance) Write(w io.Writer, value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("text: PlainText.Write: %w", slipstream.ErrInvalidArgument)
	}
	_, err := io.WriteString(w, s)
	return err
}

func (plainTextInstance) Read(r io.Reader, length int) (any, error) {
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return string(buf), nil
}

// BinaryEncoding is the media type Binary instances report.
const BinaryEncoding = "application/octet-stream"

// BinaryFactory produces Instances that accept []byte values.
type BinaryFactory struct{}

func (BinaryFactory) Encoding() string       { return BinaryEncoding }
func (BinaryFactory) HeaderEncoding() string { return "" }

func (BinaryFactory) NewInstance() (slipstream.Instance, error) {
	return binaryInstance{}, nil
}

func (BinaryFactory) DecodeHeader(io.Reader, int) (any, bool) { return nil, false }
func (BinaryFactory) NewHeaderedInstance(any) (slipstream.Instance, error) {
	return nil, fmt.Errorf("text: Binary is headerless")
}

type binaryInstance struct{}

func (binaryInstance) Encoding() string { return BinaryEncoding }

func (binaryInstance) Accepts(value any) bool {
	_, ok := value.([]byte)
	return ok
}

func (binaryInstance) Size(value any) (int, error) {
	b, ok := value.([]byte)
	if !ok {
		return 0, fmt.Errorf("text: Binary.Size: %w", slipstream.ErrInvalidArgument)
	}
	return len(b), nil
}

func (binaryInstance) Write(w io.Writer, value any) error {
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("text: Binary.Write: %w", slipstream.ErrInvalidArgument)
	}
	_, err := w.Write(b)
	return err
}

func (binaryInstance) Read(r io.Reader, length int) (any, error) {
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
