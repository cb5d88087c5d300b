// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package reference loads reference sequences from fasta files.
package reference

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// ErrNoSequences is returned when a reference file holds no sequences.
var ErrNoSequences = errors.New("reference: no sequences")

// Sequence is a reference sequence.
type Sequence struct {
	ID   int
	Name string
	Seq  []byte
}

// Len returns the length of the sequence.
func (s *Sequence) Len() int { return len(s.Seq) }

// Set is an ordered collection of uniquely named reference sequences.
type Set struct {
	seqs   []*Sequence
	byName map[string]*Sequence
}

// ReadFile reads the fasta file at path.
func ReadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read reads fasta formatted DNA sequences from r.
func Read(r io.Reader) (*Set, error) {
	set := &Set{byName: make(map[string]*Sequence)}
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNA)))
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		name := s.Name()
		if _, ok := set.byName[name]; ok {
			return nil, fmt.Errorf("reference: duplicate sequence name: %q", name)
		}
		b := make([]byte, len(s.Seq))
		for i, l := range s.Seq {
			b[i] = byte(l)
		}
		seq := &Sequence{ID: len(set.seqs), Name: name, Seq: b}
		set.seqs = append(set.seqs, seq)
		set.byName[name] = seq
	}
	err := sc.Error()
	if err != nil {
		return nil, fmt.Errorf("reference: error during fasta read: %w", err)
	}
	if len(set.seqs) == 0 {
		return nil, ErrNoSequences
	}
	return set, nil
}

// Get returns the sequence with the given name.
func (s *Set) Get(name string) (*Sequence, bool) {
	seq, ok := s.byName[name]
	return seq, ok
}

// All returns the sequences in file order.
func (s *Set) All() []*Sequence { return s.seqs }

// Len returns the number of sequences in the set.
func (s *Set) Len() int { return len(s.seqs) }
