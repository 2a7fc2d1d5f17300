// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream

import "os"

// HostDetector resolves the local host name. It exists as an injectable
// collaborator (rather than a bare os.Hostname() call) so that tests can
// pin the host name a ChannelWriter stamps into its frames.
type HostDetector interface {
	Hostname() (string, error)
}

type osHostDetector struct{}

func (osHostDetector) Hostname() (string, error) { return os.Hostname() }

// StaticHost is a HostDetector that always returns the same name.
type StaticHost string

func (h StaticHost) Hostname() (string, error) { return string(h), nil }
