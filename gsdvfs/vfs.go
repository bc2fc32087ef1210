// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Package gsdvfs is a narrow platform-abstraction layer for the positional
// I/O primitives the GSD storage engine consumes: positional read/write,
// seek-to-end, truncate, fsync, open/close, and memory-mapping the index
// block for read-only and append-mode handles.
package gsdvfs

import (
	"io"
	"os"
)

// File is a readable, writable, positionable sequence of bytes. Typically
// it is an *os.File, but test code may substitute a memory-backed
// implementation (see MemFS).
type File interface {
	io.Closer
	io.ReaderAt
	io.WriterAt

	// Seek repositions the file's end-of-file cursor. Only whence ==
	// io.SeekEnd is used by the engine, to discover the current file size.
	Seek(offset int64, whence int) (int64, error)

	// Truncate changes the size of the file.
	Truncate(size int64) error

	// Sync commits the current contents of the file to stable storage.
	Sync() error

	// Fd returns the underlying file descriptor, used by the mmap helpers.
	// Implementations that cannot be mapped (e.g. MemFS) return 0, false.
	Fd() (fd uintptr, ok bool)
}

// FS is a namespace for files, mirroring the subset of an OS filesystem
// the engine needs to create, open, and remove GSD containers.
type FS interface {
	// Create creates the named file for reading and writing, truncating it
	// if it already exists.
	Create(name string) (File, error)

	// CreateExclusive creates the named file, failing if it already exists.
	CreateExclusive(name string) (File, error)

	// OpenReadWrite opens the named file for reading and writing.
	OpenReadWrite(name string) (File, error)

	// OpenReadOnly opens the named file for reading only.
	OpenReadOnly(name string) (File, error)

	// Remove removes the named file.
	Remove(name string) error

	// Stat returns the size in bytes of the named file.
	Stat(name string) (size int64, err error)
}

// Default is an FS implementation backed by the underlying operating
// system's file system.
var Default FS = defaultFS{}

type defaultFS struct{}

func (defaultFS) Create(name string) (File, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return nil, err
	}
	return osFile{f}, nil
}

func (defaultFS) CreateExclusive(name string) (File, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0666)
	if err != nil {
		return nil, err
	}
	return osFile{f}, nil
}

func (defaultFS) OpenReadWrite(name string) (File, error) {
	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return osFile{f}, nil
}

func (defaultFS) OpenReadOnly(name string) (File, error) {
	f, err := os.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	return osFile{f}, nil
}

func (defaultFS) Remove(name string) error {
	return os.Remove(name)
}

func (defaultFS) Stat(name string) (int64, error) {
	fi, err := os.Stat(name)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// osFile adapts *os.File to the File interface, adding the Fd accessor the
// mmap helpers need.
type osFile struct {
	*os.File
}

func (f osFile) Fd() (uintptr, bool) {
	return f.File.Fd(), true
}
