// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package main

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/cobra"

	"github.com/gsd-format/gsd"
)

var hashFrame uint64

// hashCmd computes a content hash of a chunk's payload for the caller to
// compare by hand against another copy of the file (e.g. after a backup or
// transfer). GSD itself stores no checksums (see SPEC_FULL.md §B); this
// is purely a diagnostic convenience, never consulted by the engine.
var hashCmd = &cobra.Command{
	Use:   "hash <file.gsd> <chunk-name>",
	Short: "print the xxhash64 of one chunk's payload (diagnostic only)",
	Args:  cobra.ExactArgs(2),
	RunE:  runHash,
}

func init() {
	hashCmd.Flags().Uint64Var(&hashFrame, "frame", 0, "frame number to hash")
}

func runHash(cmd *cobra.Command, args []string) error {
	h, err := gsd.Open(args[0], gsd.ReadOnly, nil)
	if err != nil {
		return err
	}
	defer h.Close()

	entry, ok, err := h.FindChunk(args[1], hashFrame)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("gsdtool: no chunk %q at frame %d", args[1], hashFrame)
	}
	data, err := h.ReadChunk(entry)
	if err != nil {
		return err
	}

	fmt.Printf("%016x\n", xxhash.Sum64(data))
	return nil
}
