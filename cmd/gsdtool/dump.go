// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gsd-format/gsd"
)

var dumpFrame uint64

var dumpCmd = &cobra.Command{
	Use:   "dump <file.gsd> <chunk-name>",
	Short: "hex-dump the payload of one chunk at one frame",
	Args:  cobra.ExactArgs(2),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().Uint64Var(&dumpFrame, "frame", 0, "frame number to dump")
}

func runDump(cmd *cobra.Command, args []string) error {
	h, err := gsd.Open(args[0], gsd.ReadOnly, nil)
	if err != nil {
		return err
	}
	defer h.Close()

	entry, ok, err := h.FindChunk(args[1], dumpFrame)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("gsdtool: no chunk %q at frame %d", args[1], dumpFrame)
	}
	data, err := h.ReadChunk(entry)
	if err != nil {
		return err
	}

	fmt.Printf("type=%d N=%d M=%d bytes=%d\n", entry.Type, entry.N, entry.M, len(data))
	fmt.Print(hex.Dump(data))
	return nil
}
