// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package gsd_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gsd-format/gsd"
	"github.com/gsd-format/gsd/gsdvfs"
)

func TestLongNameIsTruncated(t *testing.T) {
	fs := gsdvfs.NewMemFS()
	opts := testOptions(fs)
	require.NoError(t, gsd.Create("run.gsd", "app", "schema", 0, opts))
	h, err := gsd.Open("run.gsd", gsd.ReadWrite, opts)
	require.NoError(t, err)
	defer h.Close()

	long := strings.Repeat("a", 100)
	require.NoError(t, h.WriteChunk(long, gsd.TypeUint8, 1, 1, 0, []byte{1}))
	require.NoError(t, h.EndFrame())

	truncated := long[:gsd.MaxNameLength]
	_, ok, err := h.FindChunk(truncated, 0)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestNameListFullReturnsError(t *testing.T) {
	fs := gsdvfs.NewMemFS()
	opts := testOptions(fs)
	opts.InitialNameListEntries = 2
	require.NoError(t, gsd.Create("run.gsd", "app", "schema", 0, opts))
	h, err := gsd.Open("run.gsd", gsd.ReadWrite, opts)
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.WriteChunk("a", gsd.TypeUint8, 1, 1, 0, []byte{1}))
	require.NoError(t, h.WriteChunk("b", gsd.TypeUint8, 1, 1, 0, []byte{2}))
	err = h.WriteChunk("c", gsd.TypeUint8, 1, 1, 0, []byte{3})
	require.Error(t, err)
	require.ErrorIs(t, err, gsd.ErrNameListFull)
}

func TestReusingNameAcrossFramesReusesID(t *testing.T) {
	fs := gsdvfs.NewMemFS()
	opts := testOptions(fs)
	opts.InitialNameListEntries = 3
	require.NoError(t, gsd.Create("run.gsd", "app", "schema", 0, opts))
	h, err := gsd.Open("run.gsd", gsd.ReadWrite, opts)
	require.NoError(t, err)
	defer h.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, h.WriteChunk("position", gsd.TypeUint8, 1, 1, 0, []byte{byte(i)}))
		require.NoError(t, h.EndFrame())
	}

	// Only one name slot should ever have been consumed by "position",
	// regardless of how many frames reused it; capacity 3 would otherwise
	// be exhausted by the third frame, leaving no slot for "velocity".
	require.NoError(t, h.WriteChunk("velocity", gsd.TypeUint8, 1, 1, 0, []byte{9}))
	require.NoError(t, h.EndFrame())
}
