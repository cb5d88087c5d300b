// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stats provides concurrent aggregate statistics for reads merged
// against reference sequences.
package stats

import (
	"fmt"
	"math"
	"sync"

	"github.com/biogo/store/interval"

	"github.com/kortschak/nanook/merge"
)

var _ merge.ReferenceSink = (*Stats)(nil)

// Stats holds the statistics of one read type aligned against one
// reference. It is safe for concurrent use.
type Stats struct {
	// Type is the read type of the statistics.
	Type ReadType
	// Size is the length of the reference.
	Size int

	contexts *KmerTable

	mu sync.Mutex

	perfect  Histogram
	readBest Histogram

	reads                int
	readBases            int
	alignedBases         int
	alignedWithoutIndels int
	identical            int

	insertions    int
	inserted      int
	deletions     int
	deleted       int
	substitutions int
	substitution  map[[2]byte]int

	spans  interval.IntTree
	nextID uintptr
}

// NewStats returns a Stats for the given read type and reference size,
// counting error contexts in k-mers of length k.
func NewStats(typ ReadType, size, k int) *Stats {
	return &Stats{
		Type:         typ,
		Size:         size,
		contexts:     NewKmerTable(k),
		substitution: make(map[[2]byte]int),
	}
}

// AddPerfectKmer records a completed perfect-match run.
func (s *Stats) AddPerfectKmer(length int) {
	s.mu.Lock()
	s.perfect.Add(length)
	s.mu.Unlock()
}

// AddIndelError records an insertion or deletion error.
func (s *Stats) AddIndelError(kind merge.ErrorKind, length int, context string) {
	s.contexts.CountSuffix(context)
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case merge.Insertion:
		s.insertions++
		s.inserted += length
	case merge.Deletion:
		s.deletions++
		s.deleted += length
	default:
		panic(fmt.Sprintf("stats: invalid indel kind: %v", kind))
	}
}

// AddSubstitutionError records a substitution error.
func (s *Stats) AddSubstitutionError(context string, refBase, readBase byte) {
	s.contexts.CountSuffix(context)
	s.mu.Lock()
	s.substitutions++
	s.substitution[[2]byte{upper(refBase), upper(readBase)}]++
	s.mu.Unlock()
}

// AddAlignmentTotals records the totals of a read with an alignment.
func (s *Stats) AddAlignmentTotals(querySize, alignedSize, alignedSizeWithoutIndels, identical int) {
	s.mu.Lock()
	s.reads++
	s.readBases += querySize
	s.alignedBases += alignedSize
	s.alignedWithoutIndels += alignedSizeWithoutIndels
	s.identical += identical
	s.mu.Unlock()
}

// AddReadBestKmer records the longest perfect-match run of a read.
func (s *Stats) AddReadBestKmer(length int) {
	s.mu.Lock()
	s.readBest.Add(length)
	s.mu.Unlock()
}

// AddCoverage records the reference span [start, end) covered by a read.
// Empty spans are ignored.
func (s *Stats) AddCoverage(start, end int) {
	if end <= start {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	err := s.spans.Insert(span{start: start, end: end, id: s.nextID}, false)
	if err != nil {
		panic(fmt.Sprintf("stats: failed to insert coverage span [%d,%d): %v", start, end, err))
	}
}

// Contexts returns the error context k-mer table.
func (s *Stats) Contexts() *KmerTable { return s.contexts }

// PerfectKmers returns the histogram of perfect-match run lengths.
func (s *Stats) PerfectKmers() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.perfect.Counts()
}

// ReadBestKmers returns the histogram of per-read longest perfect-match
// run lengths and its cumulative form.
func (s *Stats) ReadBestKmers() (counts, cumulative []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readBest.Counts(), s.readBest.Cumulative()
}

// Substitution is a count of reference to read base substitutions.
type Substitution struct {
	Ref, Read byte
	Count     int
}

// Substitutions returns the substitution counts ordered by reference
// and then read base.
func (s *Stats) Substitutions() []Substitution {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := make([]Substitution, 0, len(s.substitution))
	for k, n := range s.substitution {
		subs = append(subs, Substitution{Ref: k[0], Read: k[1], Count: n})
	}
	sortSubstitutions(subs)
	return subs
}

// Coverage returns the mean depth of coverage in consecutive bins of the
// reference of the given width. A trailing partial bin is included.
func (s *Stats) Coverage(bin int) []float64 {
	if bin <= 0 {
		panic("stats: non-positive coverage bin width")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var depth []float64
	for start := 0; start < s.Size; start += bin {
		end := start + bin
		if end > s.Size {
			end = s.Size
		}
		var bases int
		for _, h := range s.spans.Get(span{start: start, end: end}) {
			r := h.Range()
			bases += min(r.End, end) - max(r.Start, start)
		}
		depth = append(depth, float64(bases)/float64(end-start))
	}
	return depth
}

// Summary is a snapshot of the scalar statistics of a Stats.
type Summary struct {
	Type ReadType
	Size int

	ReadsWithAlignments  int
	ReadBases            int
	AlignedBases         int
	AlignedWithoutIndels int
	IdenticalBases       int
	LongestPerfectKmer   int

	Insertions    int
	InsertedBases int
	Deletions     int
	DeletedBases  int
	Substitutions int
}

// Summary returns a snapshot of the scalar statistics.
func (s *Stats) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	longest := s.perfect.Max()
	if longest < 0 {
		longest = 0
	}
	return Summary{
		Type: s.Type,
		Size: s.Size,

		ReadsWithAlignments:  s.reads,
		ReadBases:            s.readBases,
		AlignedBases:         s.alignedBases,
		AlignedWithoutIndels: s.alignedWithoutIndels,
		IdenticalBases:       s.identical,
		LongestPerfectKmer:   longest,

		Insertions:    s.insertions,
		InsertedBases: s.inserted,
		Deletions:     s.deletions,
		DeletedBases:  s.deleted,
		Substitutions: s.substitutions,
	}
}

// AlignedIdentity returns the percentage of aligned bases that are
// identical.
func (s Summary) AlignedIdentity() float64 { return percent(s.IdenticalBases, s.AlignedBases) }

// ReadIdentity returns the percentage of read bases that are identical.
func (s Summary) ReadIdentity() float64 { return percent(s.IdenticalBases, s.ReadBases) }

// InsertionRate returns insertion errors as a percentage of aligned bases.
func (s Summary) InsertionRate() float64 { return percent(s.Insertions, s.AlignedBases) }

// DeletionRate returns deletion errors as a percentage of aligned bases.
func (s Summary) DeletionRate() float64 { return percent(s.Deletions, s.AlignedBases) }

// SubstitutionRate returns substitution errors as a percentage of aligned
// bases.
func (s Summary) SubstitutionRate() float64 { return percent(s.Substitutions, s.AlignedBases) }

// ErrorsPer100Bases returns the total number of errors per 100 aligned
// bases.
func (s Summary) ErrorsPer100Bases() float64 {
	return percent(s.Insertions+s.Deletions+s.Substitutions, s.AlignedBases)
}

// percent returns 100*n/d, or NaN if d is zero.
func percent(n, d int) float64 {
	if d == 0 {
		return math.NaN()
	}
	return 100 * float64(n) / float64(d)
}

type span struct {
	start, end int
	id         uintptr
}

func (s span) ID() uintptr { return s.id }
func (s span) Range() interval.IntRange {
	return interval.IntRange{Start: s.start, End: s.end}
}
func (s span) Overlap(b interval.IntRange) bool {
	// Half-open interval indexing.
	return s.end > b.Start && s.start < b.End
}

func upper(c byte) byte {
	if 'a' <= c && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
