// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package gsdvfs_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gsd-format/gsd/gsdvfs"
)

func TestMemFSCrashRewindsToLastSync(t *testing.T) {
	fs := gsdvfs.NewMemFS()
	f, err := fs.Create("f")
	require.NoError(t, err)

	require.NoError(t, gsdvfs.PWriteRetry(f, []byte("hello"), 0))
	require.NoError(t, f.Sync())
	require.NoError(t, gsdvfs.PWriteRetry(f, []byte("world"), 5))

	size, err := fs.Stat("f")
	require.NoError(t, err)
	require.Equal(t, int64(10), size)

	fs.Crash()

	size, err = fs.Stat("f")
	require.NoError(t, err)
	require.Equal(t, int64(5), size)

	buf := make([]byte, 5)
	require.NoError(t, gsdvfs.PReadRetry(f, buf, 0))
	require.Equal(t, "hello", string(buf))
}

func TestErrorFSInjectsAfterCount(t *testing.T) {
	fs := gsdvfs.NewMemFS()
	f, err := fs.Create("f")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	count := int32(3)
	wrapped := gsdvfs.NewErrorFS(fs, &count, gsdvfs.ErrorFSSync)
	wf, err := wrapped.OpenReadWrite("f")
	require.NoError(t, err)

	require.NoError(t, wf.Sync())
	require.NoError(t, wf.Sync())
	require.Error(t, wf.Sync())
}

func TestCreateExclusiveFailsIfPresent(t *testing.T) {
	fs := gsdvfs.NewMemFS()
	_, err := fs.CreateExclusive("f")
	require.NoError(t, err)
	_, err = fs.CreateExclusive("f")
	require.Error(t, err)
}
