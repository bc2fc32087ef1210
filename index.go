// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package gsd

import "encoding/binary"

// IndexEntrySize is the fixed on-disk size of one index entry
// (spec.md §3.1): frame(8) + location(8) + N(8) + M(4) + id(2) + type(1) +
// flags(1) = 32 bytes of payload, padded to 64 for natural alignment.
const IndexEntrySize = 64

// IndexEntry locates one chunk written at a specific frame. Values
// returned from FindChunk are read-only snapshots, never references into
// live mutable storage, so callers may hold them past subsequent engine
// calls.
type IndexEntry struct {
	Frame    uint64
	Location uint64
	N        uint64
	M        uint32
	ID       uint16
	Type     Type
	Flags    uint8
}

// empty reports whether this is an unused/terminator slot.
func (e IndexEntry) empty() bool { return e.Location == 0 }

// size returns the byte length of the chunk's payload, or 0 if Type is
// unrecognized.
func (e IndexEntry) size() uint64 {
	return e.N * uint64(e.M) * SizeofType(e.Type)
}

func (e IndexEntry) marshal(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], e.Frame)
	binary.LittleEndian.PutUint64(buf[8:16], e.Location)
	binary.LittleEndian.PutUint64(buf[16:24], e.N)
	binary.LittleEndian.PutUint32(buf[24:28], e.M)
	binary.LittleEndian.PutUint16(buf[28:30], e.ID)
	buf[30] = byte(e.Type)
	buf[31] = e.Flags
	for i := 32; i < IndexEntrySize; i++ {
		buf[i] = 0
	}
}

func unmarshalIndexEntry(buf []byte) IndexEntry {
	return IndexEntry{
		Frame:    binary.LittleEndian.Uint64(buf[0:8]),
		Location: binary.LittleEndian.Uint64(buf[8:16]),
		N:        binary.LittleEndian.Uint64(buf[16:24]),
		M:        binary.LittleEndian.Uint32(buf[24:28]),
		ID:       binary.LittleEndian.Uint16(buf[28:30]),
		Type:     Type(buf[30]),
		Flags:    buf[31],
	}
}

// isEntryValid implements spec.md §4.3's gsd_is_entry_valid: a valid type,
// a payload that lies within the file, a frame within the allocated
// index, a committed name id, and zero flags.
func isEntryValid(e IndexEntry, fileSize, indexAllocated, namelistCommitted uint64) bool {
	if SizeofType(e.Type) == 0 {
		return false
	}
	if e.Location+e.size() > fileSize {
		return false
	}
	if e.Frame >= indexAllocated {
		return false
	}
	if uint64(e.ID) >= namelistCommitted {
		return false
	}
	if e.Flags != 0 {
		return false
	}
	return true
}

// indexGetter reads the index entry at absolute position i, for i in
// [0, allocated). Implementations: a memory-mapped region (read-only /
// append-mode open-time scan) or an owned in-memory slice (read-write).
type indexGetter func(i uint64) IndexEntry

// sliceGetter adapts a decoded []IndexEntry to the indexGetter shape.
func sliceGetter(entries []IndexEntry) indexGetter {
	return func(i uint64) IndexEntry { return entries[i] }
}

// rawGetter decodes directly from a byte region containing packed,
// IndexEntrySize-stride entries — used for memory-mapped index blocks,
// where decoding lazily avoids copying the whole block into Go slices.
func rawGetter(region []byte) indexGetter {
	return func(i uint64) IndexEntry {
		off := i * IndexEntrySize
		return unmarshalIndexEntry(region[off : off+IndexEntrySize])
	}
}

// validateIndex implements the open-time validation of spec.md §4.3: an
// O(log allocated) binary-search scan for the first unused slot, checking
// validity and frame monotonicity only at the pivots visited. It returns
// the number of entries in the committed prefix and the frame counter a
// newly opened handle should resume at.
func validateIndex(get indexGetter, allocated, fileSize, namelistCommitted uint64) (numEntries, curFrame uint64, err error) {
	if allocated == 0 {
		return 0, 0, nil
	}

	first := get(0)
	if !first.empty() && !isEntryValid(first, fileSize, allocated, namelistCommitted) {
		return 0, 0, corruptf("gsd: index entry 0 is invalid")
	}
	if first.empty() {
		return 0, 0, nil
	}

	l, r := uint64(0), allocated
	for r-l > 1 {
		m := (l + r) / 2
		e := get(m)
		if !e.empty() {
			if !isEntryValid(e, fileSize, allocated, namelistCommitted) {
				return 0, 0, corruptf("gsd: index entry %d is invalid", m)
			}
			if e.Frame < get(l).Frame {
				return 0, 0, corruptf("gsd: index entry %d frame %d precedes entry %d frame %d", m, e.Frame, l, get(l).Frame)
			}
			l = m
		} else {
			r = m
		}
	}
	numEntries = r
	curFrame = get(numEntries-1).Frame + 1
	return numEntries, curFrame, nil
}

// findChunkInIndex implements spec.md §4.3's gsd_find_chunk search: binary
// search for the rightmost entry with frame <= target, then a linear scan
// leftward over entries at exactly that frame looking for a matching id.
func findChunkInIndex(get indexGetter, numEntries, frame uint64, id uint16) (IndexEntry, bool) {
	if numEntries == 0 {
		return IndexEntry{}, false
	}
	l, r := uint64(0), numEntries
	for r-l > 1 {
		m := (l + r) / 2
		if frame < get(m).Frame {
			r = m
		} else {
			l = m
		}
	}
	for i := int64(l); i >= 0; i-- {
		e := get(uint64(i))
		if e.Frame != frame {
			break
		}
		if e.ID == id {
			return e, true
		}
	}
	return IndexEntry{}, false
}
