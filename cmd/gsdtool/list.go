// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gsd-format/gsd"
)

var listCmd = &cobra.Command{
	Use:   "list <file.gsd>",
	Short: "list every chunk name recorded in a GSD container",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	h, err := gsd.Open(args[0], gsd.ReadOnly, nil)
	if err != nil {
		return err
	}
	defer h.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"name"})

	cursor := ""
	for {
		name, ok := h.FindMatchingChunkName("", cursor)
		if !ok {
			break
		}
		table.Append([]string{name})
		cursor = name
	}
	table.Render()

	fmt.Fprintf(os.Stdout, "application: %s\nschema: %s (version 0x%08x)\nframes: %d\n",
		h.Application(), h.Schema(), h.SchemaVersion(), h.GetNFrames())
	return nil
}
