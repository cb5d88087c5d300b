// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blocks

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

// RecordReader is a source of SAM records. It is satisfied by *sam.Reader
// and *bam.Reader.
type RecordReader interface {
	Read() (*sam.Record, error)
}

// Group is the set of consecutive records of a single read.
type Group struct {
	Name    string
	Records []*sam.Record
}

// Mapped returns whether any record in the group is mapped.
func (g Group) Mapped() bool {
	return g.Primary() != nil
}

// Primary returns the first mapped record of the group that is not a
// secondary alignment, or nil if there is none. The primary record's
// reference is the reference the read is merged against.
func (g Group) Primary() *sam.Record {
	for _, r := range g.Records {
		if usable(r) {
			return r
		}
	}
	return nil
}

// Alignments returns the mapped, non-secondary records of the group
// aligned to ref, in input order.
func (g Group) Alignments(ref *sam.Reference) []*sam.Record {
	var recs []*sam.Record
	for _, r := range g.Records {
		if usable(r) && r.Ref.Name() == ref.Name() {
			recs = append(recs, r)
		}
	}
	return recs
}

// QueryLength returns the length of the read, including hard clipped
// bases, taken from the first record holding a sequence.
func (g Group) QueryLength() int {
	for _, r := range g.Records {
		if r.Seq.Length != 0 {
			return QueryLength(r)
		}
	}
	return 0
}

func usable(r *sam.Record) bool {
	return r.Flags&(sam.Unmapped|sam.Secondary) == 0 && r.Ref != nil && r.Seq.Length != 0
}

// Reader groups consecutive records sharing a read name.
type Reader struct {
	r    RecordReader
	next *sam.Record
	err  error
}

// NewReader returns a Reader reading records from r.
func NewReader(r RecordReader) *Reader {
	return &Reader{r: r}
}

// Read returns the next group of records. At the end of the input Read
// returns io.EOF.
func (r *Reader) Read() (Group, error) {
	if r.next == nil && r.err == nil {
		r.next, r.err = r.r.Read()
	}
	if r.next == nil {
		return Group{}, r.err
	}
	g := Group{Name: r.next.Name, Records: []*sam.Record{r.next}}
	for {
		r.next, r.err = r.r.Read()
		if r.err != nil {
			r.next = nil
			return g, nil
		}
		if r.next.Name != g.Name {
			return g, nil
		}
		g.Records = append(g.Records, r.next)
	}
}

// File is an open SAM or BAM file.
type File struct {
	*Reader

	Header *sam.Header

	f     *os.File
	close func() error
}

// Open opens the alignment file at path. Files with a .bam extension are
// read as BAM, all others as SAM.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".bam") {
		br, err := bam.NewReader(f, 0)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &File{Reader: NewReader(br), Header: br.Header(), f: f, close: br.Close}, nil
	}
	sr, err := sam.NewReader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, err
	}
	return &File{Reader: NewReader(sr), Header: sr.Header(), f: f}, nil
}

// Close closes the file.
func (f *File) Close() error {
	var err error
	if f.close != nil {
		err = f.close()
	}
	cerr := f.f.Close()
	if err == nil {
		err = cerr
	}
	return err
}

var _ io.Closer = (*File)(nil)
