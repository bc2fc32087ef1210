// Copyright 2024 The GSD Authors. All rights reserved. Use of this source
// code is governed by a BSD-style license that can be found in the LICENSE
// file.

package gsdvfs

import "io"

// maxIOChunk caps the size of a single ReadAt/WriteAt call. Some platforms
// reject or short-transfer requests larger than roughly 2 GiB; chunking
// transfers here keeps every call well under that threshold regardless of
// what the underlying implementation supports.
const maxIOChunk = 1 << 30

// PWriteRetry writes buf to f at offset, reissuing WriteAt as many times as
// necessary to complete a transfer larger than a single call can accept.
// On regular files, WriteAt never legitimately returns a short write without
// an error; this loop exists for implementations (or platforms) that cap
// single-call transfer sizes.
func PWriteRetry(f File, buf []byte, offset int64) error {
	for len(buf) > 0 {
		toWrite := buf
		if len(toWrite) > maxIOChunk {
			toWrite = toWrite[:maxIOChunk]
		}
		n, err := f.WriteAt(toWrite, offset)
		if err != nil {
			return err
		}
		buf = buf[n:]
		offset += int64(n)
	}
	return nil
}

// PReadRetry reads len(buf) bytes from f at offset into buf, reissuing
// ReadAt as many times as necessary. Unlike PWriteRetry, end-of-file is a
// legitimate outcome for reads: PReadRetry returns a nil error only when
// all len(buf) bytes were read; an
// end-of-file mid-read returns io.ErrUnexpectedEOF, which callers treat as
// corruption rather than a plain I/O error.
func PReadRetry(f File, buf []byte, offset int64) error {
	total := 0
	for total < len(buf) {
		toRead := buf[total:]
		if len(toRead) > maxIOChunk {
			toRead = toRead[:maxIOChunk]
		}
		n, err := f.ReadAt(toRead, offset+int64(total))
		total += n
		if err != nil {
			if err == io.EOF {
				if total == len(buf) {
					return nil
				}
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
	return nil
}
