// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package gsd

import (
	"github.com/gsd-format/gsd/gsdvfs"
	"github.com/gsd-format/gsd/internal/base"
)

// Options bundles the tunables and collaborators a Handle needs, grounded
// on the teacher's Options-struct pattern (internal/base.Options,
// tool.New()). A nil *Options passed to Create/Open is valid and means
// "use the defaults."
type Options struct {
	// FS is the filesystem implementation used for all file operations.
	// Defaults to gsdvfs.Default.
	FS gsdvfs.FS

	// Logger receives informational messages about index growth, name
	// commits, and corruption detected at open time. Defaults to
	// base.DefaultLogger.
	Logger base.Logger

	// Metrics, if non-nil, is updated as the Handle commits frames,
	// appends bytes, and grows the index. Nil disables metrics
	// collection entirely (no-op, not a stub registry).
	Metrics *Metrics

	// InitialIndexEntries overrides spec.md §6.4's default of 128,
	// primarily for tests that want to exercise growth without writing
	// 129 chunks.
	InitialIndexEntries uint64

	// InitialNameListEntries overrides spec.md §6.4's default of 65535.
	InitialNameListEntries uint64

	// CopyBufferSize overrides spec.md §6.4's 16 KiB append-mode index
	// relocation buffer size.
	CopyBufferSize int
}

// ensureDefaults returns a copy of o (or a fresh Options if o is nil) with
// every zero-valued field replaced by its default.
func (o *Options) ensureDefaults() *Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.FS == nil {
		out.FS = gsdvfs.Default
	}
	if out.Logger == nil {
		out.Logger = base.DefaultLogger{}
	}
	if out.InitialIndexEntries == 0 {
		out.InitialIndexEntries = InitialIndexEntries
	}
	if out.InitialNameListEntries == 0 {
		out.InitialNameListEntries = InitialNameListEntries
	}
	if out.CopyBufferSize == 0 {
		out.CopyBufferSize = CopyBufferSize
	}
	return &out
}
