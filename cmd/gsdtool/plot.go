// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package main

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/gsd-format/gsd"
)

var plotCmd = &cobra.Command{
	Use:   "plot <file.gsd> <chunk-name>",
	Short: "plot the first value of a numeric chunk across every frame",
	Args:  cobra.ExactArgs(2),
	RunE:  runPlot,
}

func runPlot(cmd *cobra.Command, args []string) error {
	h, err := gsd.Open(args[0], gsd.ReadOnly, nil)
	if err != nil {
		return err
	}
	defer h.Close()

	var series []float64
	for frame := uint64(0); frame < h.GetNFrames(); frame++ {
		entry, ok, err := h.FindChunk(args[1], frame)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		data, err := h.ReadChunk(entry)
		if err != nil {
			return err
		}
		v, err := firstScalar(entry.Type, data)
		if err != nil {
			return err
		}
		series = append(series, v)
	}
	if len(series) == 0 {
		return fmt.Errorf("gsdtool: chunk %q has no plottable frames", args[1])
	}

	fmt.Println(asciigraph.Plot(series, asciigraph.Height(15)))
	return nil
}

// firstScalar decodes the first element of a chunk's payload as a float64,
// for plotting purposes only; integer types are widened, not scaled.
func firstScalar(t gsd.Type, data []byte) (float64, error) {
	switch t {
	case gsd.TypeFloat32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data))), nil
	case gsd.TypeFloat64:
		return math.Float64frombits(binary.LittleEndian.Uint64(data)), nil
	case gsd.TypeUint8:
		return float64(data[0]), nil
	case gsd.TypeUint16:
		return float64(binary.LittleEndian.Uint16(data)), nil
	case gsd.TypeUint32:
		return float64(binary.LittleEndian.Uint32(data)), nil
	case gsd.TypeUint64:
		return float64(binary.LittleEndian.Uint64(data)), nil
	case gsd.TypeInt8:
		return float64(int8(data[0])), nil
	case gsd.TypeInt16:
		return float64(int16(binary.LittleEndian.Uint16(data))), nil
	case gsd.TypeInt32:
		return float64(int32(binary.LittleEndian.Uint32(data))), nil
	case gsd.TypeInt64:
		return float64(int64(binary.LittleEndian.Uint64(data))), nil
	default:
		return 0, fmt.Errorf("gsdtool: unsupported chunk type %d", t)
	}
}
