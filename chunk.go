// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package gsd

import (
	"time"

	"github.com/gsd-format/gsd/gsdvfs"
)

// WriteChunk appends the payload data as a new chunk named name, of the
// given element type and (N, M) shape, to the current, not-yet-committed
// frame (spec.md §4.1, §4.2). The payload is written to disk immediately
// but without an fsync; it only becomes durable once EndFrame returns.
func (h *Handle) WriteChunk(name string, typ Type, N uint64, M uint32, flags uint8, data []byte) error {
	if h.state != stateOpen {
		return invalidArgf("gsd: WriteChunk on a closed handle")
	}
	if h.mode == ReadOnly {
		return wrapf(ErrMustBeWritable, "gsd: %q is open read-only", h.path)
	}
	if flags != 0 {
		return invalidArgf("gsd: flags must be 0, got %d", flags)
	}
	if N == 0 || M == 0 {
		return invalidArgf("gsd: N and M must be nonzero, got N=%d M=%d", N, M)
	}
	elemSize := SizeofType(typ)
	if elemSize == 0 {
		return invalidArgf("gsd: unknown chunk type %d", typ)
	}
	want := N * uint64(M) * elemSize
	if uint64(len(data)) != want {
		return invalidArgf("gsd: data is %d bytes, want N*M*sizeof(type) = %d", len(data), want)
	}

	truncated := name
	if len(truncated) > MaxNameLength {
		truncated = truncated[:MaxNameLength]
	}
	if !h.frameSeen.mark(truncated) {
		return invalidArgf("gsd: chunk name %q already written in frame %d", truncated, h.curFrame)
	}

	id, err := h.resolveNameID(truncated)
	if err != nil {
		return err
	}

	offset := h.fileSize
	if err := gsdvfs.PWriteRetry(h.file, data, int64(offset)); err != nil {
		return ioErrorf(err, "gsd: write chunk payload")
	}
	h.fileSize += want

	entry := IndexEntry{
		Frame:    h.curFrame,
		Location: offset,
		N:        N,
		M:        M,
		ID:       id,
		Type:     typ,
		Flags:    flags,
	}
	if err := h.appendIndexEntry(entry); err != nil {
		return err
	}

	h.metrics.observeChunk(want)
	return nil
}

// resolveNameID returns the id already assigned to name, whether committed
// or written earlier in the current, still-open frame, registering a new
// name only if neither lookup succeeds.
func (h *Handle) resolveNameID(name string) (uint16, error) {
	if id := h.names.find(name); id != noID {
		return id, nil
	}
	if id, ok := h.names.findUncommitted(name); ok {
		return id, nil
	}
	return h.names.append(name)
}

// appendIndexEntry records e as the next index slot, growing the index
// first if its allocated capacity is exhausted (spec.md §4.1).
func (h *Handle) appendIndexEntry(e IndexEntry) error {
	if h.indexNumEntries >= h.indexAllocated {
		if err := h.growIndex(h.indexNumEntries + 1); err != nil {
			return err
		}
	}
	switch h.mode {
	case ReadWrite:
		// indexOwned holds every allocated slot as loaded at open; only
		// entries past its length (after growth) extend it.
		if h.indexNumEntries < uint64(len(h.indexOwned)) {
			h.indexOwned[h.indexNumEntries] = e
		} else {
			h.indexOwned = append(h.indexOwned, e)
		}
	case Append:
		h.appendBuf = append(h.appendBuf, e)
	default:
		return invalidArgf("gsd: write not supported in %s mode", h.mode)
	}
	h.indexNumEntries++
	return nil
}

// EndFrame commits the current frame: it flushes any names and index
// entries buffered since the last commit to disk and fsyncs the file,
// then advances the frame counter (spec.md §4.4 "Commit Protocol"). This
// is the sole durability boundary; WriteChunk alone guarantees nothing.
func (h *Handle) EndFrame() error {
	if h.state != stateOpen {
		return invalidArgf("gsd: EndFrame on a closed handle")
	}
	if h.mode == ReadOnly {
		return wrapf(ErrMustBeWritable, "gsd: %q is open read-only", h.path)
	}
	start := time.Now()

	buf, namesPending := h.names.uncommittedRegion()
	if namesPending {
		off := h.hdr.namelistLocation + h.names.writtenEntries*NameListEntrySize
		if err := gsdvfs.PWriteRetry(h.file, buf, int64(off)); err != nil {
			return ioErrorf(err, "gsd: write uncommitted names")
		}
	}

	switch h.mode {
	case ReadWrite:
		pending := h.indexOwned[h.indexWrittenEntries:h.indexNumEntries]
		if err := h.flushIndexEntries(pending, h.indexWrittenEntries); err != nil {
			return err
		}
	case Append:
		if err := h.flushIndexEntries(h.appendBuf, h.indexWrittenEntries); err != nil {
			return err
		}
		h.appendBuf = h.appendBuf[:0]
	}
	h.indexWrittenEntries = h.indexNumEntries

	if err := h.file.Sync(); err != nil {
		return ioErrorf(err, "gsd: fsync on commit")
	}

	h.names.commit()
	if namesPending {
		h.logger.Infof("gsd: %q: committed name-list entries through frame %d", h.path, h.curFrame)
	}
	h.frameSeen.reset()
	h.curFrame++

	h.metrics.observeCommit(time.Since(start))
	return nil
}

// flushIndexEntries writes entries to the on-disk index block starting at
// slot startIdx, without syncing; the caller is responsible for the
// eventual fsync.
func (h *Handle) flushIndexEntries(entries []IndexEntry, startIdx uint64) error {
	if len(entries) == 0 {
		return nil
	}
	buf := make([]byte, len(entries)*IndexEntrySize)
	for i, e := range entries {
		e.marshal(buf[i*IndexEntrySize : (i+1)*IndexEntrySize])
	}
	off := h.hdr.indexLocation + startIdx*IndexEntrySize
	return gsdvfs.PWriteRetry(h.file, buf, int64(off))
}

// growIndex relocates the on-disk index block to a new, larger region at
// the current end of file, doubling capacity until it holds at least
// minEntries slots, then rewrites the header to point at it
// (spec.md §4.1 "Index growth"). Only the already-committed prefix is
// copied; entries buffered in memory are simply appended at the new
// capacity once growth completes, since they were never written to the
// old location.
//
// The new index region is fsynced before the header is rewritten, and the
// header is fsynced after: if a crash lands between the two, the file on
// reopen still points at the old, valid, smaller index.
func (h *Handle) growIndex(minEntries uint64) error {
	newAllocated := h.indexAllocated
	if newAllocated == 0 {
		newAllocated = 1
	}
	for newAllocated < minEntries {
		newAllocated *= 2
	}

	newLocation := h.fileSize
	zero := make([]byte, newAllocated*IndexEntrySize)
	if err := gsdvfs.PWriteRetry(h.file, zero, int64(newLocation)); err != nil {
		return ioErrorf(err, "gsd: allocate new index region")
	}

	if err := copyIndexRegion(h.file, h.hdr.indexLocation, newLocation, h.indexWrittenEntries*IndexEntrySize, h.opts.CopyBufferSize); err != nil {
		return ioErrorf(err, "gsd: relocate index entries")
	}

	if err := h.file.Sync(); err != nil {
		return ioErrorf(err, "gsd: fsync new index region")
	}

	h.hdr.indexLocation = newLocation
	h.hdr.indexAllocatedEntries = newAllocated
	if err := gsdvfs.PWriteRetry(h.file, h.hdr.marshal(), 0); err != nil {
		return ioErrorf(err, "gsd: rewrite header after index growth")
	}
	if err := h.file.Sync(); err != nil {
		return ioErrorf(err, "gsd: fsync header after index growth")
	}

	h.indexAllocated = newAllocated
	h.fileSize = newLocation + newAllocated*IndexEntrySize
	h.metrics.observeIndexGrowth()
	h.logger.Infof("gsd: %q: index grown to %d entries at offset %d", h.path, newAllocated, newLocation)
	return nil
}

// copyIndexRegion streams length bytes from oldOff to newOff using a
// bufSize-bounded buffer, so the copy never holds more than bufSize bytes
// of the old index in memory at once.
func copyIndexRegion(f gsdvfs.File, oldOff, newOff, length uint64, bufSize int) error {
	if length == 0 {
		return nil
	}
	if bufSize <= 0 {
		bufSize = CopyBufferSize
	}
	buf := make([]byte, bufSize)
	for remaining := length; remaining > 0; {
		n := uint64(bufSize)
		if n > remaining {
			n = remaining
		}
		chunk := buf[:n]
		if err := gsdvfs.PReadRetry(f, chunk, int64(oldOff)); err != nil {
			return err
		}
		if err := gsdvfs.PWriteRetry(f, chunk, int64(newOff)); err != nil {
			return err
		}
		oldOff += n
		newOff += n
		remaining -= n
	}
	return nil
}

// GetNFrames returns the number of frames committed so far, equal to the
// frame number a chunk written right now would receive.
func (h *Handle) GetNFrames() uint64 { return h.curFrame }

// FindChunk looks up the chunk named name written at the given frame.
// It reports ok=false, with a nil error, if no such chunk exists.
// FindChunk is unavailable on Append-mode handles (spec.md §3.4).
func (h *Handle) FindChunk(name string, frame uint64) (entry IndexEntry, ok bool, err error) {
	if h.state != stateOpen {
		return IndexEntry{}, false, invalidArgf("gsd: FindChunk on a closed handle")
	}
	if h.mode == Append {
		return IndexEntry{}, false, wrapf(ErrMustBeReadable, "gsd: FindChunk unavailable on an append-mode handle")
	}
	id := h.names.find(name)
	if id == noID {
		return IndexEntry{}, false, nil
	}
	entry, ok = findChunkInIndex(h.indexGet(), h.indexNumEntries, frame, id)
	return entry, ok, nil
}

// ReadChunk reads the payload located by entry (as returned by FindChunk)
// into a freshly allocated buffer. ReadChunk is unavailable on Append-mode
// handles.
func (h *Handle) ReadChunk(entry IndexEntry) ([]byte, error) {
	if h.state != stateOpen {
		return nil, invalidArgf("gsd: ReadChunk on a closed handle")
	}
	if h.mode == Append {
		return nil, wrapf(ErrMustBeReadable, "gsd: ReadChunk unavailable on an append-mode handle")
	}

	size := entry.size()
	if size == 0 {
		return nil, corruptf("gsd: chunk has unknown type %d", entry.Type)
	}
	if entry.Location == 0 {
		return nil, corruptf("gsd: chunk has location 0")
	}
	if entry.Location+size > h.fileSize {
		return nil, corruptf("gsd: chunk [%d, %d) extends past file size %d", entry.Location, entry.Location+size, h.fileSize)
	}

	buf := make([]byte, size)
	if err := gsdvfs.PReadRetry(h.file, buf, int64(entry.Location)); err != nil {
		return nil, ioErrorf(err, "gsd: read chunk payload")
	}
	return buf, nil
}

// FindMatchingChunkName enumerates committed chunk names with the given
// prefix in sorted order, resuming after cursor (pass "" to start from the
// beginning); see nameTable.matchingName.
func (h *Handle) FindMatchingChunkName(prefix, cursor string) (string, bool) {
	return h.names.matchingName(prefix, cursor)
}
