// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package gsd

import (
	"github.com/gsd-format/gsd/gsdvfs"
)

// Create initializes a new, empty GSD file at path: a zeroed header, an
// empty index block, and an empty name-list block, synced to disk
// (spec.md §4.5 "Creation").
func Create(path, application, schema string, schemaVersion uint32, opts *Options) error {
	o := opts.ensureDefaults()
	f, err := o.FS.Create(path)
	if err != nil {
		return ioErrorf(err, "gsd: create %q", path)
	}
	defer f.Close()
	return initializeFile(f, application, schema, schemaVersion, o)
}

// CreateAndOpen creates a new GSD file (failing if it already exists when
// exclusive is true) and opens it in the requested mode, combining
// spec.md §6.3's create_and_open into one call.
func CreateAndOpen(path, application, schema string, schemaVersion uint32, mode OpenMode, exclusive bool, opts *Options) (*Handle, error) {
	o := opts.ensureDefaults()
	var f gsdvfs.File
	var err error
	if exclusive {
		f, err = o.FS.CreateExclusive(path)
	} else {
		f, err = o.FS.Create(path)
	}
	if err != nil {
		return nil, ioErrorf(err, "gsd: create %q", path)
	}
	if err := initializeFile(f, application, schema, schemaVersion, o); err != nil {
		f.Close()
		return nil, err
	}
	return openHandle(f, path, mode, o)
}

// Open opens an existing GSD file in the requested mode (spec.md §4.5
// "Open").
func Open(path string, mode OpenMode, opts *Options) (*Handle, error) {
	o := opts.ensureDefaults()
	var f gsdvfs.File
	var err error
	if mode == ReadOnly {
		f, err = o.FS.OpenReadOnly(path)
	} else {
		f, err = o.FS.OpenReadWrite(path)
	}
	if err != nil {
		return nil, ioErrorf(err, "gsd: open %q", path)
	}
	h, err := openHandle(f, path, mode, o)
	if err != nil {
		f.Close()
		return nil, err
	}
	return h, nil
}

// initializeFile implements spec.md §4.5 "Creation": truncate to zero,
// write a zeroed header with the initial layout, write zeroed index and
// name-list blocks, and fsync.
func initializeFile(f gsdvfs.File, application, schema string, schemaVersion uint32, o *Options) error {
	if err := f.Truncate(0); err != nil {
		return ioErrorf(err, "gsd: truncate new file")
	}

	var hdr header
	hdr.magic = Magic
	hdr.version = version1_0
	setString(hdr.application[:], application)
	setString(hdr.schema[:], schema)
	hdr.schemaVersion = schemaVersion
	hdr.indexLocation = HeaderSize
	hdr.indexAllocatedEntries = o.InitialIndexEntries
	hdr.namelistLocation = hdr.indexLocation + hdr.indexAllocatedEntries*IndexEntrySize
	hdr.namelistAllocatedEntries = o.InitialNameListEntries

	if err := gsdvfs.PWriteRetry(f, hdr.marshal(), 0); err != nil {
		return ioErrorf(err, "gsd: write header")
	}

	zeroIndex := make([]byte, hdr.indexAllocatedEntries*IndexEntrySize)
	if err := gsdvfs.PWriteRetry(f, zeroIndex, int64(hdr.indexLocation)); err != nil {
		return ioErrorf(err, "gsd: write empty index")
	}

	zeroNames := make([]byte, hdr.namelistAllocatedEntries*NameListEntrySize)
	if err := gsdvfs.PWriteRetry(f, zeroNames, int64(hdr.namelistLocation)); err != nil {
		return ioErrorf(err, "gsd: write empty namelist")
	}

	if err := f.Sync(); err != nil {
		return ioErrorf(err, "gsd: sync new file")
	}
	return nil
}

// openHandle implements spec.md §4.5 "Open": read and validate the
// header, determine the file size, build the mode-specific index
// representation, load the name list, and run index validation.
func openHandle(f gsdvfs.File, path string, mode OpenMode, o *Options) (*Handle, error) {
	h := &Handle{
		opts:   *o,
		fs:     o.FS,
		path:   path,
		file:   f,
		mode:   mode,
		logger: o.Logger,
		metrics: o.Metrics,
	}

	hdrBuf := make([]byte, HeaderSize)
	if err := gsdvfs.PReadRetry(f, hdrBuf, 0); err != nil {
		return nil, wrapf(ErrNotAGSDFile, "gsd: %q: short header read", path)
	}
	h.hdr.unmarshal(hdrBuf)

	if h.hdr.magic != Magic {
		return nil, wrapf(ErrNotAGSDFile, "gsd: %q: magic mismatch", path)
	}
	if !acceptedVersion(h.hdr.version) {
		return nil, wrapf(ErrInvalidVersion, "gsd: %q: version 0x%08x", path, h.hdr.version)
	}

	size, err := f.Seek(0, seekEnd)
	if err != nil {
		return nil, ioErrorf(err, "gsd: %q: determine file size", path)
	}
	h.fileSize = uint64(size)
	h.indexAllocated = h.hdr.indexAllocatedEntries

	if err := h.loadIndex(); err != nil {
		return nil, err
	}
	if err := h.loadNameList(); err != nil {
		return nil, err
	}

	numEntries, curFrame, err := validateIndex(h.indexGetForValidation(), h.indexAllocated, h.fileSize, h.names.writtenEntries)
	if err != nil {
		h.logger.Infof("gsd: %q: index validation failed at open: %s", path, err)
		return nil, err
	}
	h.indexNumEntries = numEntries
	h.indexWrittenEntries = numEntries
	h.curFrame = curFrame

	if mode == Append {
		// Tear down the temporary mapping/buffer used only to validate
		// the committed prefix, and replace it with a small growable
		// buffer holding just the uncommitted tail (spec.md §3.4, §4.5).
		if h.indexMapping != nil {
			if err := h.indexMapping.Unmap(); err != nil {
				return nil, ioErrorf(err, "gsd: %q: unmap index", path)
			}
			h.indexMapping = nil
		}
		h.indexRegion = nil
		h.appendBuf = make([]IndexEntry, 0, 1)
	}

	if mode != ReadOnly {
		h.frameSeen = newFrameNames()
	}

	h.state = stateOpen
	return h, nil
}

// seekEnd is io.SeekEnd, named locally so open.go doesn't need an "io"
// import solely for this constant.
const seekEnd = 2

// indexGetForValidation returns the getter used only during open-time
// validation, which for Append mode still sees the temporary mapping
// before it is torn down.
func (h *Handle) indexGetForValidation() indexGetter {
	if h.indexOwned != nil {
		return sliceGetter(h.indexOwned)
	}
	return rawGetter(h.indexRegion)
}

// loadIndex implements the per-mode branch of spec.md §4.5 step 3.
func (h *Handle) loadIndex() error {
	switch h.mode {
	case ReadOnly, Append:
		if gsdvfs.MMapSupported {
			if fd, ok := h.file.Fd(); ok {
				m, err := gsdvfs.Mmap(fd, int64(h.hdr.indexLocation), int64(h.indexAllocated*IndexEntrySize))
				if err == nil {
					h.indexMapping = m
					h.indexRegion = m.Region()
					return nil
				}
			}
		}
		// Fall back to an owned buffer when mmap is unsupported or the
		// file has no backing descriptor (e.g. gsdvfs.MemFS in tests).
		buf := make([]byte, h.indexAllocated*IndexEntrySize)
		if h.hdr.indexLocation+h.indexAllocated*IndexEntrySize > h.fileSize {
			return corruptf("gsd: index block [%d, %d) exceeds file size %d", h.hdr.indexLocation, h.hdr.indexLocation+h.indexAllocated*IndexEntrySize, h.fileSize)
		}
		if err := gsdvfs.PReadRetry(h.file, buf, int64(h.hdr.indexLocation)); err != nil {
			return ioErrorf(err, "gsd: read index block")
		}
		h.indexRegion = buf
		return nil

	case ReadWrite:
		if h.hdr.indexLocation+h.indexAllocated*IndexEntrySize > h.fileSize {
			return corruptf("gsd: index block [%d, %d) exceeds file size %d", h.hdr.indexLocation, h.hdr.indexLocation+h.indexAllocated*IndexEntrySize, h.fileSize)
		}
		buf := make([]byte, h.indexAllocated*IndexEntrySize)
		if err := gsdvfs.PReadRetry(h.file, buf, int64(h.hdr.indexLocation)); err != nil {
			return ioErrorf(err, "gsd: read index block")
		}
		entries := make([]IndexEntry, h.indexAllocated)
		for i := range entries {
			entries[i] = unmarshalIndexEntry(buf[i*IndexEntrySize : (i+1)*IndexEntrySize])
		}
		h.indexOwned = entries
		return nil

	default:
		return invalidArgf("gsd: unknown open mode %d", h.mode)
	}
}

// loadNameList implements spec.md §4.5 step 4-5: always read the whole
// name-list block and rebuild the sorted lookup structure.
func (h *Handle) loadNameList() error {
	allocated := h.hdr.namelistAllocatedEntries
	if h.hdr.namelistLocation+allocated*NameListEntrySize > h.fileSize {
		return corruptf("gsd: namelist block [%d, %d) exceeds file size %d", h.hdr.namelistLocation, h.hdr.namelistLocation+allocated*NameListEntrySize, h.fileSize)
	}
	t := newNameTable(allocated)
	if err := gsdvfs.PReadRetry(h.file, t.raw, int64(h.hdr.namelistLocation)); err != nil {
		return ioErrorf(err, "gsd: read namelist block")
	}
	t.loadFromRaw()
	h.names = t
	return nil
}

// Truncate re-initializes the file in place (spec.md §4.5 "Truncate"),
// preserving application/schema metadata, then re-opens it in the
// handle's current mode.
func (h *Handle) Truncate() error {
	if h.state != stateOpen {
		return invalidArgf("gsd: truncate on a closed handle")
	}
	app, schema, schemaVersion := h.Application(), h.Schema(), h.SchemaVersion()

	if err := initializeFile(h.file, app, schema, schemaVersion, &h.opts); err != nil {
		return err
	}

	if h.indexMapping != nil {
		_ = h.indexMapping.Unmap()
		h.indexMapping = nil
	}
	h.indexRegion = nil
	h.indexOwned = nil
	h.appendBuf = nil
	h.names = nil
	h.frameSeen = nil

	reopened, err := openHandle(h.file, h.path, h.mode, &h.opts)
	if err != nil {
		return err
	}
	*h = *reopened
	return nil
}

// Close releases all resources held by the handle: unmapping the index
// if mapped, dropping owned buffers, and closing the file descriptor.
// Close is idempotent.
func (h *Handle) Close() error {
	if h.state == stateClosed {
		return nil
	}
	var err error
	if h.indexMapping != nil {
		err = h.indexMapping.Unmap()
		h.indexMapping = nil
	}
	h.indexRegion = nil
	h.indexOwned = nil
	h.appendBuf = nil
	h.names = nil
	if cerr := h.file.Close(); err == nil {
		err = cerr
	}
	h.state = stateClosed
	if err != nil {
		return ioErrorf(err, "gsd: close %q", h.path)
	}
	return nil
}
