// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package gsd

// Magic identifies a GSD file. It is the first 8 bytes of every container,
// stored little-endian.
const Magic uint64 = 0x65DF65DF65DF65DF

// Layout constants from spec.md §6.4.
const (
	// InitialIndexEntries is the number of index entries allocated when a
	// file is created.
	InitialIndexEntries = 128
	// InitialNameListEntries is the number of name-list slots allocated
	// when a file is created.
	InitialNameListEntries = 65535
	// CopyBufferSize bounds the buffer used to relocate the on-disk index
	// in append mode during index growth.
	CopyBufferSize = 16 * 1024
	// MaxNameLength is the longest chunk name storable, excluding the
	// terminating NUL.
	MaxNameLength = 63
	// NameListEntrySize is the fixed on-disk size of a name-list slot:
	// MaxNameLength bytes of name plus one NUL terminator.
	NameListEntrySize = MaxNameLength + 1
)

// noID is the sentinel returned by name lookups that fail to find a match.
const noID = 0xFFFF

// OpenMode selects the in-memory representation a Handle uses for the
// index and name list (spec.md §3.4).
type OpenMode int

const (
	// ReadOnly handles never mutate the file. The index block is
	// memory-mapped read-only where the platform supports it.
	ReadOnly OpenMode = iota
	// ReadWrite handles keep the full index and name list resident in
	// memory and may append chunks and frames.
	ReadWrite
	// Append handles keep only the uncommitted tail of the index in
	// memory; FindChunk and ReadChunk are unavailable in this mode.
	Append
)

// String implements fmt.Stringer.
func (m OpenMode) String() string {
	switch m {
	case ReadOnly:
		return "read-only"
	case ReadWrite:
		return "read-write"
	case Append:
		return "append"
	default:
		return "unknown"
	}
}

// handleState tracks where a Handle is in its CREATED -> OPEN -> CLOSED
// lifecycle (spec.md §4.5).
type handleState int

const (
	stateCreated handleState = iota
	stateOpen
	stateClosed
)
