// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

//go:build linux || darwin
// +build linux darwin

package gsdvfs

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// MMapSupported is true on platforms where Mmap is implemented.
const MMapSupported = true

// Mapping is a read-only shared mapping of a region of a file.
type Mapping struct {
	data []byte
	// pageOff is the distance from the page-aligned start of data to the
	// offset the caller requested; Region slices it off.
	pageOff int
}

// PageSize returns the platform's memory page size.
func PageSize() int {
	return unix.Getpagesize()
}

// Mmap maps [offset, offset+length) of the file referenced by fd into a
// read-only shared mapping. Per POSIX, mmap requires the mapping's starting
// file offset to be a multiple of the page size; Mmap rounds offset down to
// the nearest page boundary and returns a Mapping whose Region() already
// accounts for the difference, mirroring gsd_read_header's handling of
// index_location in the original C implementation.
func Mmap(fd uintptr, offset int64, length int64) (*Mapping, error) {
	pageSize := int64(unix.Getpagesize())
	aligned := (offset / pageSize) * pageSize
	extra := int(offset - aligned)

	data, err := unix.Mmap(int(fd), aligned, int(length)+extra, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrap(err, "gsdvfs: mmap failed")
	}
	return &Mapping{data: data, pageOff: extra}, nil
}

// Region returns the byte slice corresponding to the range originally
// requested from Mmap (after removing the page-alignment padding).
func (m *Mapping) Region() []byte {
	return m.data[m.pageOff:]
}

// Unmap releases the mapping.
func (m *Mapping) Unmap() error {
	if m == nil || m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	return err
}
