// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package gsd

import (
	"github.com/gsd-format/gsd/gsdvfs"
	"github.com/gsd-format/gsd/internal/base"
)

// Handle is an open GSD file. It is not safe for concurrent use from
// multiple goroutines (spec.md §5): all operations on a given Handle are
// expected to come from a single caller at a time.
type Handle struct {
	opts Options
	fs   gsdvfs.FS
	path string
	file gsdvfs.File
	mode OpenMode
	state handleState

	hdr      header
	fileSize uint64
	curFrame uint64

	names      *nameTable
	frameSeen  *frameNames

	indexAllocated      uint64
	indexNumEntries     uint64
	indexWrittenEntries uint64

	// Exactly one of the following three is populated, selected by mode
	// (spec.md §3.4, §9 "Read-only mmap vs. owned buffer"):
	indexMapping *gsdvfs.Mapping // ReadOnly, and transiently during Append's open scan
	indexRegion  []byte          // raw bytes backing indexMapping, or a plain buffer if mmap unsupported
	indexOwned   []IndexEntry    // ReadWrite: the whole index, in memory
	appendBuf    []IndexEntry    // Append: only entries since the last commit

	metrics *Metrics
	logger  base.Logger
}

// Mode reports the mode the Handle was opened in.
func (h *Handle) Mode() OpenMode { return h.mode }

// Application returns the application string recorded when the file was
// created.
func (h *Handle) Application() string { return h.hdr.Application() }

// Schema returns the schema name recorded when the file was created.
func (h *Handle) Schema() string { return h.hdr.Schema() }

// SchemaVersion returns the packed schema version recorded at creation.
func (h *Handle) SchemaVersion() uint32 { return h.hdr.schemaVersion }

// FileVersion returns the packed GSD file-format version.
func (h *Handle) FileVersion() uint32 { return h.hdr.version }

// indexGet returns an indexGetter valid for the Handle's current state. It
// must only be called in ReadOnly or ReadWrite mode.
func (h *Handle) indexGet() indexGetter {
	if h.indexOwned != nil {
		return sliceGetter(h.indexOwned)
	}
	return rawGetter(h.indexRegion)
}
