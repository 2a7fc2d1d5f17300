// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slipstream

import (
	"io"
	"sort"
)

// ScannerGroup merges several FrameSources into a single time-ordered
// stream: Peek/PeekEnvelope/Read/Skip operate on whichever child currently
// holds the earliest-timestamped frame, and Next advances just that child.
// A child that fails to peek after a Next is dropped (only a SeekerGroup's
// SeekTime reinstates it); once none remain, Peek returns false.
type ScannerGroup struct {
	children []skippableSource
	dead     []bool
	order    []int
	dirty    bool
}

// NewScannerGroup merges children, in the order given (ties in timestamp
// break toward the earlier argument).
func NewScannerGroup(children ...skippableSource) *ScannerGroup {
	return &ScannerGroup{
		children: children,
		dead:     make([]bool, len(children)),
		dirty:    true,
	}
}

func (g *ScannerGroup) resort() {
	type entry struct {
		idx int
		ts  uint64
	}
	entries := make([]entry, 0, len(g.children))
	for i, c := range g.children {
		if g.dead[i] {
			continue
		}
		ts, ok := c.Peek()
		if !ok {
			g.dead[i] = true
			continue
		}
		entries = append(entries, entry{i, ts})
	}
	sort.SliceStable(entries, func(a, b int) bool { return entries[a].ts < entries[b].ts })

	g.order = g.order[:0]
	for _, e := range entries {
		g.order = append(g.order, e.idx)
	}
	g.dirty = false
}

func (g *ScannerGroup) head() (skippableSource, bool) {
	if g.dirty {
		g.resort()
	}
	if len(g.order) == 0 {
		return nil, false
	}
	return g.children[g.order[0]], true
}

func (g *ScannerGroup) Peek() (uint64, bool) {
	h, ok := g.head()
	if !ok {
		return 0, false
	}
	return h.Peek()
}

func (g *ScannerGroup) PeekEnvelope() (uint64, Envelope, bool) {
	h, ok := g.head()
	if !ok {
		return 0, Envelope{}, false
	}
	return h.PeekEnvelope()
}

func (g *ScannerGroup) PayloadLength() uint32 {
	h, ok := g.head()
	if !ok {
		return 0
	}
	return h.PayloadLength()
}

// Next advances the current head child. The permutation is resorted lazily
// on the next Peek.
func (g *ScannerGroup) Next() bool {
	h, ok := g.head()
	if !ok {
		return false
	}
	g.dirty = true
	return h.Next()
}

func (g *ScannerGroup) Read(p []byte) (int, error) {
	h, ok := g.head()
	if !ok {
		return 0, io.EOF
	}
	return h.Read(p)
}

func (g *ScannerGroup) Skip(n int64) error {
	h, ok := g.head()
	if !ok {
		return io.EOF
	}
	return h.Skip(n)
}

// Err returns the first error reported by any child.
func (g *ScannerGroup) Err() error {
	for _, c := range g.children {
		if err := c.Err(); err != nil {
			return err
		}
	}
	return nil
}

// SeekerGroup is a ScannerGroup whose children additionally support
// time-based positioning.
type SeekerGroup struct {
	*ScannerGroup
	children []seekableSource
}

// NewSeekerGroup merges children.
func NewSeekerGroup(children ...seekableSource) *SeekerGroup {
	ss := make([]skippableSource, len(children))
	for i, c := range children {
		ss[i] = c
	}
	return &SeekerGroup{
		ScannerGroup: NewScannerGroup(ss...),
		children:     children,
	}
}

// SeekTime calls SeekTime on every child and resets the permutation. It
// reports whether at least one child successfully positioned at target.
func (g *SeekerGroup) SeekTime(target uint64) bool {
	any := false
	for i, c := range g.children {
		if c.SeekTime(target) {
			any = true
			g.dead[i] = false
		}
	}
	g.dirty = true
	return any
}
