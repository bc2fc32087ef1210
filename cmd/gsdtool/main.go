// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Command gsdtool is a small introspection utility for GSD containers,
// grounded on the teacher's cmd/pebble tool.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gsdtool [command] (flags)",
	Short: "gsdtool inspects General Simulation Data (.gsd) containers",
	Long:  ``,
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(
		listCmd,
		dumpCmd,
		plotCmd,
		hashCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}
