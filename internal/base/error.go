// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Package base holds the small set of types shared by the gsd package and
// its platform-facing helpers: the error taxonomy and the logger interface.
package base

import (
	"io"

	"github.com/cockroachdb/errors"
)

// corruptionMark is a marker error used with errors.Mark so that corruption
// errors constructed anywhere in the engine can be identified with
// errors.Is, regardless of the message wrapped around them.
var corruptionMark = errors.New("gsd: file corrupt")

// CorruptionErrorf formats according to the given format specifier and
// returns an error marked as a corruption error.
func CorruptionErrorf(format string, args ...interface{}) error {
	return MarkCorruptionError(errors.Newf(format, args...))
}

// MarkCorruptionError marks an existing error as a corruption error so that
// IsCorruptionError will recognize it.
func MarkCorruptionError(err error) error {
	if err == nil {
		return nil
	}
	return errors.Mark(err, corruptionMark)
}

// IsCorruptionError returns true if err (or any error it wraps) was
// constructed via CorruptionErrorf or MarkCorruptionError.
func IsCorruptionError(err error) bool {
	return errors.Is(err, corruptionMark)
}

// Sentinel errors for the remaining taxonomy entries in the GSD error
// model. These are compared with errors.Is; the accompanying *f
// constructors attach contextual detail while preserving the sentinel for
// matching.
var (
	// ErrIO indicates that an underlying syscall failed.
	ErrIO = errors.New("gsd: I/O error")
	// ErrNotAGSDFile indicates a magic mismatch or short header read.
	ErrNotAGSDFile = errors.New("gsd: not a GSD file")
	// ErrInvalidVersion indicates a gsd_version outside the accepted range.
	ErrInvalidVersion = errors.New("gsd: invalid GSD file version")
	// ErrMemoryAllocationFailed indicates the allocator returned nil.
	ErrMemoryAllocationFailed = errors.New("gsd: memory allocation failed")
	// ErrNameListFull indicates the name-list capacity is exhausted.
	ErrNameListFull = errors.New("gsd: namelist full")
	// ErrMustBeWritable indicates a write attempted on a read-only handle.
	ErrMustBeWritable = errors.New("gsd: file must be writable")
	// ErrMustBeReadable indicates a read attempted on an append-only handle.
	ErrMustBeReadable = errors.New("gsd: file must be readable")
	// ErrInvalidArgument indicates a nil/zero/out-of-range argument.
	ErrInvalidArgument = errors.New("gsd: invalid argument")
)

// IOErrorf wraps err as an ErrIO with additional context. An end-of-file
// reached partway through a positional read (io.ErrUnexpectedEOF) is not an
// ordinary I/O failure — it means the file is shorter than the structures
// read from it say it should be — so it is marked as a corruption error
// instead of ErrIO.
func IOErrorf(err error, format string, args ...interface{}) error {
	wrapped := errors.Wrapf(err, format, args...)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return MarkCorruptionError(wrapped)
	}
	return errors.Mark(wrapped, ErrIO)
}

// InvalidArgumentf formats an ErrInvalidArgument with context.
func InvalidArgumentf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidArgument)
}
