// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report writes nanook analysis reports.
package report

import (
	"bufio"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// Ext is the file extension added to compressed report files.
const Ext = ".zst"

// File is a buffered report file, optionally zstd compressed.
type File struct {
	*bufio.Writer

	// Name is the path of the file.
	Name string

	zw *zstd.Encoder
	f  *os.File
}

// Create creates the report file at path. If compress is true the file is
// zstd compressed and Ext is appended to path.
func Create(path string, compress bool) (*File, error) {
	if compress {
		path += Ext
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	r := &File{Name: path, f: f}
	var w io.Writer = f
	if compress {
		r.zw, err = zstd.NewWriter(f, zstd.WithEncoderConcurrency(1), zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			f.Close()
			return nil, err
		}
		w = r.zw
	}
	r.Writer = bufio.NewWriter(w)
	return r, nil
}

// Close flushes and closes the file.
func (f *File) Close() error {
	err := f.Flush()
	if f.zw != nil {
		zerr := f.zw.Close()
		if err == nil {
			err = zerr
		}
	}
	cerr := f.f.Close()
	if err == nil {
		err = cerr
	}
	return err
}
