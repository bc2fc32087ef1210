// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package gsd

import (
	"github.com/cockroachdb/errors"

	"github.com/gsd-format/gsd/internal/base"
)

// The error taxonomy from spec.md §7. Each is a distinct sentinel,
// comparable with errors.Is; IsCorrupt additionally recognizes any error
// built with base.CorruptionErrorf regardless of message.
var (
	// ErrIO indicates a syscall failed; wrapped errors carry the
	// underlying cause.
	ErrIO = base.ErrIO
	// ErrNotAGSDFile indicates a magic mismatch or a header short read.
	ErrNotAGSDFile = base.ErrNotAGSDFile
	// ErrInvalidVersion indicates a gsd_version outside the accepted
	// range ({0x00003} ∪ [0x10000, 0x20000)).
	ErrInvalidVersion = base.ErrInvalidVersion
	// ErrFileCorrupt indicates a structural invariant was violated:
	// index bounds, frame monotonicity, or payload extent.
	ErrFileCorrupt = base.CorruptionErrorf("gsd: file corrupt")
	// ErrMemoryAllocationFailed indicates an allocation failed.
	ErrMemoryAllocationFailed = base.ErrMemoryAllocationFailed
	// ErrNameListFull indicates a new name was written when name-list
	// capacity was exhausted.
	ErrNameListFull = base.ErrNameListFull
	// ErrMustBeWritable indicates a write attempted on a read-only
	// Handle.
	ErrMustBeWritable = base.ErrMustBeWritable
	// ErrMustBeReadable indicates a read attempted on an append-mode
	// Handle.
	ErrMustBeReadable = base.ErrMustBeReadable
	// ErrInvalidArgument indicates a nil handle, nil data, zero N or M,
	// an unknown type, or nonzero flags.
	ErrInvalidArgument = base.ErrInvalidArgument
)

// IsCorrupt returns true if err (or any error it wraps) indicates the
// file's structural invariants are violated.
func IsCorrupt(err error) bool {
	return base.IsCorruptionError(err)
}

func ioErrorf(err error, format string, args ...interface{}) error {
	return base.IOErrorf(err, format, args...)
}

func invalidArgf(format string, args ...interface{}) error {
	return base.InvalidArgumentf(format, args...)
}

func corruptf(format string, args ...interface{}) error {
	return base.CorruptionErrorf(format, args...)
}

// wrapf attaches additional context to err while preserving its identity
// for errors.Is (e.g. ErrMustBeWritable wrapped with the file name).
func wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
