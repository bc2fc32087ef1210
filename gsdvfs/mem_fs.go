// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package gsdvfs

import (
	"io"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
)

// MemFS is a memory-backed FS implementation, grounded on the teacher's
// vfs.MemFS but narrowed to a flat namespace (GSD containers are standalone
// files, never directories). It supports Crash, which discards any bytes
// written since the last Sync on every open file — used to exercise the
// engine's durability ordering (spec.md §5, §8) without touching a real
// disk.
type MemFS struct {
	mu    sync.Mutex
	files map[string]*memFile
}

// NewMemFS returns an empty memory-backed FS.
func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string]*memFile)}
}

type memFile struct {
	mu sync.Mutex
	// synced is the durable image of the file: what Crash() rewinds to.
	synced []byte
	// data is the live image, possibly ahead of synced.
	data []byte
}

func (f *memFile) ReadAt(p []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if off >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (f *memFile) WriteAt(p []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	end := off + int64(len(p))
	if end > int64(len(f.data)) {
		grown := make([]byte, end)
		copy(grown, f.data)
		f.data = grown
	}
	copy(f.data[off:end], p)
	return len(p), nil
}

func (f *memFile) Seek(offset int64, whence int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if whence != io.SeekEnd {
		return 0, errors.New("gsdvfs: MemFS file only supports SEEK_END")
	}
	return int64(len(f.data)) + offset, nil
}

func (f *memFile) Truncate(size int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if size <= int64(len(f.data)) {
		f.data = f.data[:size]
		return nil
	}
	grown := make([]byte, size)
	copy(grown, f.data)
	f.data = grown
	return nil
}

func (f *memFile) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.synced = append([]byte(nil), f.data...)
	return nil
}

func (f *memFile) Close() error { return nil }

// Fd reports that a MemFS file cannot be memory-mapped; the engine falls
// back to owned-buffer index representations, same as on platforms without
// native mmap.
func (f *memFile) Fd() (uintptr, bool) { return 0, false }

func (fs *MemFS) Create(name string) (File, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	f := &memFile{}
	fs.files[name] = f
	return f, nil
}

func (fs *MemFS) CreateExclusive(name string) (File, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.files[name]; ok {
		return nil, os.ErrExist
	}
	f := &memFile{}
	fs.files[name] = f
	return f, nil
}

func (fs *MemFS) OpenReadWrite(name string) (File, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	f, ok := fs.files[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return f, nil
}

func (fs *MemFS) OpenReadOnly(name string) (File, error) {
	return fs.OpenReadWrite(name)
}

func (fs *MemFS) Remove(name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.files[name]; !ok {
		return os.ErrNotExist
	}
	delete(fs.files, name)
	return nil
}

func (fs *MemFS) Stat(name string) (int64, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	f, ok := fs.files[name]
	if !ok {
		return 0, os.ErrNotExist
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.data)), nil
}

// Crash rewinds every file in the filesystem to its last-synced contents,
// simulating a power loss. Tests use this to verify the durability
// invariants in spec.md §5 and the crash-between-fsyncs scenario in §8.
func (fs *MemFS) Crash() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for _, f := range fs.files {
		f.mu.Lock()
		f.data = append([]byte(nil), f.synced...)
		f.mu.Unlock()
	}
}
