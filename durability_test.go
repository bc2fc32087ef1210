// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package gsd_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gsd-format/gsd"
	"github.com/gsd-format/gsd/gsdvfs"
)

// TestCrashBeforeEndFrameLosesChunk exercises spec.md §5: a chunk payload
// is written to disk synchronously but is not fsynced until EndFrame, so a
// crash before EndFrame must leave the file exactly as it was at the last
// commit.
func TestCrashBeforeEndFrameLosesChunk(t *testing.T) {
	fs := gsdvfs.NewMemFS()
	opts := testOptions(fs)
	require.NoError(t, gsd.Create("run.gsd", "app", "schema", 0, opts))

	h, err := gsd.Open("run.gsd", gsd.ReadWrite, opts)
	require.NoError(t, err)
	require.NoError(t, h.WriteChunk("position", gsd.TypeUint8, 1, 1, 0, []byte{1}))
	require.NoError(t, h.EndFrame())
	require.NoError(t, h.Close())

	h, err = gsd.Open("run.gsd", gsd.ReadWrite, opts)
	require.NoError(t, err)
	require.NoError(t, h.WriteChunk("position", gsd.TypeUint8, 1, 1, 0, []byte{2}))
	// No EndFrame: the payload above has been written to the file but not
	// fsynced (WriteChunk never syncs), and its index entry lives only in
	// memory.
	require.NoError(t, h.Close())

	fs.Crash()

	h, err = gsd.Open("run.gsd", gsd.ReadOnly, opts)
	require.NoError(t, err)
	defer h.Close()

	require.Equal(t, uint64(1), h.GetNFrames())
	entry, ok, err := h.FindChunk("position", 0)
	require.NoError(t, err)
	require.True(t, ok)
	data, err := h.ReadChunk(entry)
	require.NoError(t, err)
	require.Equal(t, []byte{1}, data)

	_, ok, err = h.FindChunk("position", 1)
	require.NoError(t, err)
	require.False(t, ok)
}

// TestCrashAfterEndFrameKeepsChunk verifies that a frame survives a crash
// once EndFrame has returned.
func TestCrashAfterEndFrameKeepsChunk(t *testing.T) {
	fs := gsdvfs.NewMemFS()
	opts := testOptions(fs)
	require.NoError(t, gsd.Create("run.gsd", "app", "schema", 0, opts))

	h, err := gsd.Open("run.gsd", gsd.ReadWrite, opts)
	require.NoError(t, err)
	require.NoError(t, h.WriteChunk("position", gsd.TypeUint8, 1, 1, 0, []byte{7}))
	require.NoError(t, h.EndFrame())
	require.NoError(t, h.Close())

	fs.Crash()

	h, err = gsd.Open("run.gsd", gsd.ReadOnly, opts)
	require.NoError(t, err)
	defer h.Close()
	require.Equal(t, uint64(1), h.GetNFrames())
}

// TestIndexGrowthSurvivesCrashBetweenFsyncs exercises the two-fsync
// ordering in growIndex: if the header fsync never happens the file must
// reopen using the old, still-valid index location.
func TestIndexGrowthSurvivesCrashBetweenFsyncs(t *testing.T) {
	fs := gsdvfs.NewMemFS()
	opts := testOptions(fs) // InitialIndexEntries: 4

	require.NoError(t, gsd.Create("run.gsd", "app", "schema", 0, opts))
	h, err := gsd.Open("run.gsd", gsd.ReadWrite, opts)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, h.WriteChunk("c", gsd.TypeUint8, 1, 1, 0, []byte{byte(i)}))
		require.NoError(t, h.EndFrame())
	}
	require.NoError(t, h.Close())

	var errCount int32 = 1
	failingFS := gsdvfs.NewErrorFS(fs, &errCount, gsdvfs.ErrorFSSync)

	failOpts := testOptions(failingFS)
	h, err = gsd.Open("run.gsd", gsd.ReadWrite, failOpts)
	require.NoError(t, err)
	// This write forces growth past the 4-entry index; the injected sync
	// failure lands on the new-index-region fsync inside growIndex, so the
	// header must never be rewritten to point at the unsynced region.
	err = h.WriteChunk("c", gsd.TypeUint8, 1, 1, 0, []byte{9})
	_ = err // the failed growth makes this write return an error; only the reopened file is checked
	_ = h.Close()

	h, err = gsd.Open("run.gsd", gsd.ReadOnly, opts)
	require.NoError(t, err)
	defer h.Close()
	require.Equal(t, uint64(4), h.GetNFrames())
}
