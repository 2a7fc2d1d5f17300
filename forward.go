// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream

import "io"

// CopySource is the read-side surface CopyFrames needs.
type CopySource interface {
	FrameSource
	CopyFrame(w io.Writer) (int64, error)
}

// CopyFrames copies every frame from src matching filter (nil matches
// everything) to dst verbatim, without decoding payloads, advancing src to
// EOF. It returns the number of bytes and frames copied.
func CopyFrames(dst io.Writer, src CopySource, filter *Filter) (bytesCopied int64, framesCopied int, err error) {
	for {
		_, env, ok := src.PeekEnvelope()
		if !ok {
			break
		}

		if filter == nil || filter.Match(env.Identifier) {
			n, cerr := src.CopyFrame(dst)
			bytesCopied += n
			if cerr != nil {
				return bytesCopied, framesCopied, cerr
			}
			framesCopied++
			continue
		}

		if !src.Next() {
			break
		}
	}

	return bytesCopied, framesCopied, src.Err()
}
