// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

//go:build !linux && !darwin
// +build !linux,!darwin

package gsdvfs

import "errors"

// MMapSupported is false on platforms without an mmap implementation here
// (e.g. Windows), matching GSD_USE_MMAP being compiled out in the original
// C library. Callers fall back to reading the index into an owned buffer.
const MMapSupported = false

// Mapping is never constructed on platforms without mmap support.
type Mapping struct{}

// PageSize returns a conservative page size guess; it is unused when
// MMapSupported is false.
func PageSize() int { return 4096 }

// Mmap always fails on this platform.
func Mmap(fd uintptr, offset int64, length int64) (*Mapping, error) {
	return nil, errors.New("gsdvfs: mmap not supported on this platform")
}

// Region never runs; present to satisfy the interface used elsewhere.
func (m *Mapping) Region() []byte { return nil }

// Unmap is a no-op on this platform.
func (m *Mapping) Unmap() error { return nil }
