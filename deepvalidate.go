// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package gsd

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DeepValidate scans every committed index entry and confirms it still
// satisfies isEntryValid, beyond the O(log N) pivot check Open performs.
// This is an optional, caller-invoked extension (spec.md §9 "Open Question:
// should a full scan be offered") for diagnosing a file that opened
// successfully but is suspected of partial corruption outside the pivots
// the binary search happened to visit. It reports the first error
// encountered, if any, and is safe to call concurrently with reads but not
// with writes on the same Handle.
func (h *Handle) DeepValidate(ctx context.Context) error {
	if h.state != stateOpen {
		return invalidArgf("gsd: DeepValidate on a closed handle")
	}
	if h.mode == Append {
		return wrapf(ErrMustBeReadable, "gsd: DeepValidate unavailable on an append-mode handle")
	}
	get := h.indexGet()
	n := h.indexWrittenEntries
	if n == 0 {
		return nil
	}

	const shards = 8
	shardSize := (n + shards - 1) / shards

	g, ctx := errgroup.WithContext(ctx)
	for s := uint64(0); s < n; s += shardSize {
		start, end := s, s+shardSize
		if end > n {
			end = n
		}
		g.Go(func() error {
			var prevFrame uint64
			havePrev := false
			if start > 0 {
				// Seed from the entry immediately preceding this shard so a
				// monotonicity violation straddling the shard boundary is
				// still caught.
				prevFrame, havePrev = get(start-1).Frame, true
			}
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				e := get(i)
				if e.empty() {
					return corruptf("gsd: index entry %d is empty within the committed prefix", i)
				}
				if !isEntryValid(e, h.fileSize, h.indexAllocated, h.names.writtenEntries) {
					return corruptf("gsd: index entry %d failed deep validation", i)
				}
				if havePrev && e.Frame < prevFrame {
					return corruptf("gsd: index entry %d frame %d precedes entry %d frame %d", i, e.Frame, i-1, prevFrame)
				}
				prevFrame, havePrev = e.Frame, true
			}
			return nil
		})
	}
	return g.Wait()
}
