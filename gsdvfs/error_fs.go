// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package gsdvfs

import (
	"errors"
	"sync/atomic"
)

// ErrorFSMode is a bit field specifying the operation types for which error
// injection is enabled.
type ErrorFSMode int

// ErrorFSMsg is the error message for injected errors.
const ErrorFSMsg = "gsdvfs: injected error"

const (
	// ErrorFSWrite enables errors for WriteAt and Truncate.
	ErrorFSWrite ErrorFSMode = 0x1
	// ErrorFSSync enables errors for Sync, modeling a crash mid-fsync.
	ErrorFSSync ErrorFSMode = 0x2
)

// NewErrorFS wraps fs so that the count'th remaining matching operation
// (and every one after it) fails with an injected error. A nil count
// disables injection; a count of zero or less fails every matching
// operation. This is used to exercise the engine's "crash between
// the two fsyncs of an index relocation" scenario (spec.md §8) and the
// "write_chunk succeeds, end_frame never runs" scenario deterministically.
func NewErrorFS(fs FS, count *int32, mode ErrorFSMode) FS {
	return &errorFS{FS: fs, count: count, mode: mode}
}

type errorFS struct {
	FS
	count *int32
	mode  ErrorFSMode
}

func (fs *errorFS) maybeErr(mode ErrorFSMode) error {
	if fs.mode&mode == 0 || fs.count == nil {
		return nil
	}
	if atomic.AddInt32(fs.count, -1) <= 0 {
		return errors.New(ErrorFSMsg)
	}
	return nil
}

func (fs *errorFS) wrap(f File, err error) (File, error) {
	if err != nil {
		return nil, err
	}
	return &errorFile{File: f, fs: fs}, nil
}

func (fs *errorFS) Create(name string) (File, error) {
	f, err := fs.FS.Create(name)
	return fs.wrap(f, err)
}

func (fs *errorFS) CreateExclusive(name string) (File, error) {
	f, err := fs.FS.CreateExclusive(name)
	return fs.wrap(f, err)
}

func (fs *errorFS) OpenReadWrite(name string) (File, error) {
	f, err := fs.FS.OpenReadWrite(name)
	return fs.wrap(f, err)
}

func (fs *errorFS) OpenReadOnly(name string) (File, error) {
	f, err := fs.FS.OpenReadOnly(name)
	return fs.wrap(f, err)
}

type errorFile struct {
	File
	fs *errorFS
}

func (f *errorFile) WriteAt(p []byte, off int64) (int, error) {
	if err := f.fs.maybeErr(ErrorFSWrite); err != nil {
		return 0, err
	}
	return f.File.WriteAt(p, off)
}

func (f *errorFile) Truncate(size int64) error {
	if err := f.fs.maybeErr(ErrorFSWrite); err != nil {
		return err
	}
	return f.File.Truncate(size)
}

func (f *errorFile) Sync() error {
	if err := f.fs.maybeErr(ErrorFSSync); err != nil {
		return err
	}
	return f.File.Sync()
}
