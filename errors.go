// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream

import "errors"

var (
	// ErrInvalidArgument reports an invalid configuration or nil reader/writer.
	ErrInvalidArgument = errors.New("slipstream: invalid argument")

	// ErrTooLong reports that a length field exceeds the wire format's range
	// (envelope: 12 bits, payload: 20 bits).
	ErrTooLong = errors.New("slipstream: length exceeds wire format limit")

	// ErrNoHeader reports that a headered codec was asked to write without a
	// header having been supplied at construction time, or that a reader
	// could not decode the payload of a Header frame.
	ErrNoHeader = errors.New("slipstream: headered codec requires a header")

	// ErrUnknownEncoding reports that no registered codec declares the
	// encoding named in an envelope or that a channel's data does not match
	// the codec already bound to it.
	ErrUnknownEncoding = errors.New("slipstream: unknown or mismatched encoding")

	// ErrNoDelta reports an attempt to encode or decode a delta frame
	// against a codec that has no delta capability, or against a codec
	// instance that has not yet seen a keyframe.
	ErrNoDelta = errors.New("slipstream: no delta available")
)
