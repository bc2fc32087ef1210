// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

// Package gsd implements the General Simulation Data (GSD) container
// format: an append-oriented, frame-structured binary file for recording
// time series of named, typed, rectangular numeric arrays ("chunks").
//
// A GSD file is written one frame at a time. Within a frame, a caller
// writes zero or more named chunks with WriteChunk and then commits them
// durably with EndFrame. Readers locate a chunk by (frame, name) with
// FindChunk and pull its bytes with ReadChunk.
//
// The package is single-writer, many-reader: a Handle has no internal
// locking, and a writer must not be used concurrently with any other
// writer or reader on the same underlying file. Multiple read-only
// Handles may safely coexist.
package gsd
