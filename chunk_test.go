// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package gsd_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gsd-format/gsd"
	"github.com/gsd-format/gsd/gsdvfs"
)

func float64Bytes(vs ...float64) []byte {
	buf := make([]byte, 8*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func TestWriteReadChunkRoundTrip(t *testing.T) {
	fs := gsdvfs.NewMemFS()
	opts := testOptions(fs)
	require.NoError(t, gsd.Create("run.gsd", "app", "schema", 0, opts))

	h, err := gsd.Open("run.gsd", gsd.ReadWrite, opts)
	require.NoError(t, err)
	defer h.Close()

	payload := float64Bytes(1, 2, 3)
	require.NoError(t, h.WriteChunk("position", gsd.TypeFloat64, 3, 1, 0, payload))
	require.NoError(t, h.EndFrame())

	entry, ok, err := h.FindChunk("position", 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(3), entry.N)

	got, err := h.ReadChunk(entry)
	require.NoError(t, err)
	require.Equal(t, payload, got)

	_, ok, err = h.FindChunk("position", 1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestWriteChunkRejectsDuplicateNameInFrame(t *testing.T) {
	fs := gsdvfs.NewMemFS()
	opts := testOptions(fs)
	require.NoError(t, gsd.Create("run.gsd", "app", "schema", 0, opts))
	h, err := gsd.Open("run.gsd", gsd.ReadWrite, opts)
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.WriteChunk("position", gsd.TypeUint8, 1, 1, 0, []byte{1}))
	err = h.WriteChunk("position", gsd.TypeUint8, 1, 1, 0, []byte{2})
	require.Error(t, err)
}

func TestWriteChunkRejectsNonzeroFlags(t *testing.T) {
	fs := gsdvfs.NewMemFS()
	opts := testOptions(fs)
	require.NoError(t, gsd.Create("run.gsd", "app", "schema", 0, opts))
	h, err := gsd.Open("run.gsd", gsd.ReadWrite, opts)
	require.NoError(t, err)
	defer h.Close()

	err = h.WriteChunk("position", gsd.TypeUint8, 1, 1, 1, []byte{1})
	require.Error(t, err)
	require.ErrorIs(t, err, gsd.ErrInvalidArgument)
}

func TestWriteChunkRejectsShapeMismatch(t *testing.T) {
	fs := gsdvfs.NewMemFS()
	opts := testOptions(fs)
	require.NoError(t, gsd.Create("run.gsd", "app", "schema", 0, opts))
	h, err := gsd.Open("run.gsd", gsd.ReadWrite, opts)
	require.NoError(t, err)
	defer h.Close()

	err = h.WriteChunk("position", gsd.TypeUint8, 3, 1, 0, []byte{1, 2})
	require.Error(t, err)
}

func TestReadOnlyHandleRejectsWrite(t *testing.T) {
	fs := gsdvfs.NewMemFS()
	opts := testOptions(fs)
	require.NoError(t, gsd.Create("run.gsd", "app", "schema", 0, opts))
	h, err := gsd.Open("run.gsd", gsd.ReadOnly, opts)
	require.NoError(t, err)
	defer h.Close()

	err = h.WriteChunk("position", gsd.TypeUint8, 1, 1, 0, []byte{1})
	require.Error(t, err)
	require.ErrorIs(t, err, gsd.ErrMustBeWritable)
}

func TestIndexGrowsAcrossManyFrames(t *testing.T) {
	fs := gsdvfs.NewMemFS()
	opts := testOptions(fs) // InitialIndexEntries: 4
	require.NoError(t, gsd.Create("run.gsd", "app", "schema", 0, opts))
	h, err := gsd.Open("run.gsd", gsd.ReadWrite, opts)
	require.NoError(t, err)
	defer h.Close()

	const frames = 20
	for i := 0; i < frames; i++ {
		require.NoError(t, h.WriteChunk("position", gsd.TypeUint8, 1, 1, 0, []byte{byte(i)}))
		require.NoError(t, h.WriteChunk("velocity", gsd.TypeUint8, 1, 1, 0, []byte{byte(i)}))
		require.NoError(t, h.EndFrame())
	}
	require.Equal(t, uint64(frames), h.GetNFrames())

	for i := 0; i < frames; i++ {
		entry, ok, err := h.FindChunk("position", uint64(i))
		require.NoError(t, err)
		require.True(t, ok)
		data, err := h.ReadChunk(entry)
		require.NoError(t, err)
		require.Equal(t, []byte{byte(i)}, data)
	}
}

func TestReadChunkRejectsCorruptEntry(t *testing.T) {
	fs := gsdvfs.NewMemFS()
	opts := testOptions(fs)
	require.NoError(t, gsd.Create("run.gsd", "app", "schema", 0, opts))
	h, err := gsd.Open("run.gsd", gsd.ReadWrite, opts)
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.WriteChunk("position", gsd.TypeUint8, 1, 1, 0, []byte{1}))
	require.NoError(t, h.EndFrame())

	entry, ok, err := h.FindChunk("position", 0)
	require.NoError(t, err)
	require.True(t, ok)

	unknownType := entry
	unknownType.Type = gsd.Type(0xff)
	_, err = h.ReadChunk(unknownType)
	require.Error(t, err)
	require.True(t, gsd.IsCorrupt(err))

	zeroLocation := entry
	zeroLocation.Location = 0
	_, err = h.ReadChunk(zeroLocation)
	require.Error(t, err)
	require.True(t, gsd.IsCorrupt(err))

	pastEOF := entry
	pastEOF.Location = entry.Location + 1<<30
	_, err = h.ReadChunk(pastEOF)
	require.Error(t, err)
	require.True(t, gsd.IsCorrupt(err))
}

func TestAppendModeCannotFindOrRead(t *testing.T) {
	fs := gsdvfs.NewMemFS()
	opts := testOptions(fs)
	require.NoError(t, gsd.Create("run.gsd", "app", "schema", 0, opts))

	rw, err := gsd.Open("run.gsd", gsd.ReadWrite, opts)
	require.NoError(t, err)
	require.NoError(t, rw.WriteChunk("position", gsd.TypeUint8, 1, 1, 0, []byte{9}))
	require.NoError(t, rw.EndFrame())
	require.NoError(t, rw.Close())

	h, err := gsd.Open("run.gsd", gsd.Append, opts)
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.WriteChunk("position", gsd.TypeUint8, 1, 1, 0, []byte{10}))
	require.NoError(t, h.EndFrame())
	require.Equal(t, uint64(2), h.GetNFrames())

	_, _, err = h.FindChunk("position", 0)
	require.Error(t, err)
	require.ErrorIs(t, err, gsd.ErrMustBeReadable)

	_, err = h.ReadChunk(gsd.IndexEntry{})
	require.ErrorIs(t, err, gsd.ErrMustBeReadable)
}

func TestFindMatchingChunkNameEnumeratesSortedPrefix(t *testing.T) {
	fs := gsdvfs.NewMemFS()
	opts := testOptions(fs)
	require.NoError(t, gsd.Create("run.gsd", "app", "schema", 0, opts))
	h, err := gsd.Open("run.gsd", gsd.ReadWrite, opts)
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.WriteChunk("particles/position", gsd.TypeUint8, 1, 1, 0, []byte{1}))
	require.NoError(t, h.WriteChunk("particles/velocity", gsd.TypeUint8, 1, 1, 0, []byte{2}))
	require.NoError(t, h.WriteChunk("log/step", gsd.TypeUint8, 1, 1, 0, []byte{3}))
	require.NoError(t, h.EndFrame())

	name, ok := h.FindMatchingChunkName("particles/", "")
	require.True(t, ok)
	require.Equal(t, "particles/position", name)

	name, ok = h.FindMatchingChunkName("particles/", name)
	require.True(t, ok)
	require.Equal(t, "particles/velocity", name)

	_, ok = h.FindMatchingChunkName("particles/", name)
	require.False(t, ok)
}
