// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package gsd

import "github.com/cockroachdb/swiss"

// frameNames tracks which chunk names have already been written in the
// current, not-yet-committed frame, enforcing spec.md §3.2's "within a
// single frame, each name appears at most once" invariant in O(1)
// amortized per WriteChunk rather than rescanning the buffered index
// entries.
type frameNames struct {
	seen swiss.Map[string, struct{}]
}

func newFrameNames() *frameNames {
	fn := &frameNames{}
	fn.seen.Init(16)
	return fn
}

// mark records name as used in the current frame. It reports false if the
// name was already used this frame.
func (f *frameNames) mark(name string) bool {
	if _, ok := f.seen.Get(name); ok {
		return false
	}
	f.seen.Put(name, struct{}{})
	return true
}

// reset clears the per-frame set; called from EndFrame.
func (f *frameNames) reset() {
	f.seen.All(func(k string, _ struct{}) bool {
		f.seen.Delete(k)
		return true
	})
}
