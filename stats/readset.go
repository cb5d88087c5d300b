// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/kortschak/nanook/merge"
)

var _ merge.ReadSetSink = (*ReadSet)(nil)

// ReadSet holds the statistics of a set of reads of one type. It is safe
// for concurrent use.
type ReadSet struct {
	Type ReadType

	mu sync.Mutex

	reads            int
	withAlignment    int
	withoutAlignment int
	failed           int

	readBest   Histogram
	kmerCounts []KmerSizeCounts
	identities []float64
}

// NewReadSet returns an empty ReadSet for the read type.
func NewReadSet(typ ReadType) *ReadSet {
	return &ReadSet{Type: typ}
}

// KmerSizeCounts is the number of perfect-match runs of a read reaching
// each k size.
type KmerSizeCounts struct {
	Read      string
	QuerySize int
	KmerSizes []int
	Counts    []int
}

// AddKmerSizeCounts records the per k size run counts of a read.
func (s *ReadSet) AddKmerSizeCounts(read string, querySize int, kSizes, counts []int) {
	c := KmerSizeCounts{
		Read:      read,
		QuerySize: querySize,
		KmerSizes: append([]int(nil), kSizes...),
		Counts:    append([]int(nil), counts...),
	}
	s.mu.Lock()
	s.kmerCounts = append(s.kmerCounts, c)
	s.mu.Unlock()
}

// AddReadWithAlignment records a read with an alignment.
func (s *ReadSet) AddReadWithAlignment() {
	s.mu.Lock()
	s.withAlignment++
	s.mu.Unlock()
}

// AddReadBestKmer records the longest perfect-match run of a read.
func (s *ReadSet) AddReadBestKmer(length int) {
	s.mu.Lock()
	s.readBest.Add(length)
	s.mu.Unlock()
}

// AddRead records a read presented for analysis.
func (s *ReadSet) AddRead() {
	s.mu.Lock()
	s.reads++
	s.mu.Unlock()
}

// AddReadWithoutAlignment records a read with no mapped alignment.
func (s *ReadSet) AddReadWithoutAlignment() {
	s.mu.Lock()
	s.withoutAlignment++
	s.mu.Unlock()
}

// AddFailedRead records a read whose merge failed.
func (s *ReadSet) AddFailedRead() {
	s.mu.Lock()
	s.failed++
	s.mu.Unlock()
}

// AddIdentity records the percentage identity of a merged read.
// NaN identities are ignored.
func (s *ReadSet) AddIdentity(percent float64) {
	if math.IsNaN(percent) {
		return
	}
	s.mu.Lock()
	s.identities = append(s.identities, percent)
	s.mu.Unlock()
}

// KmerSizeCounts returns the per read k size counts sorted by read name.
func (s *ReadSet) KmerSizeCounts() []KmerSizeCounts {
	s.mu.Lock()
	c := append([]KmerSizeCounts(nil), s.kmerCounts...)
	s.mu.Unlock()
	sort.Slice(c, func(i, j int) bool { return c[i].Read < c[j].Read })
	return c
}

// ReadBestKmers returns the histogram of per-read longest perfect-match
// run lengths and its cumulative form.
func (s *ReadSet) ReadBestKmers() (counts, cumulative []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readBest.Counts(), s.readBest.Cumulative()
}

// ReadSetSummary is a snapshot of the scalar statistics of a ReadSet.
type ReadSetSummary struct {
	Type ReadType

	Reads            int
	WithAlignment    int
	WithoutAlignment int
	Failed           int

	LongestPerfectKmer int

	// MeanIdentity, StdDevIdentity and MedianIdentity describe
	// the distribution of merged read identities. They are NaN when
	// no identity has been recorded.
	MeanIdentity   float64
	StdDevIdentity float64
	MedianIdentity float64
}

// Summary returns a snapshot of the scalar statistics.
func (s *ReadSet) Summary() ReadSetSummary {
	s.mu.Lock()
	sum := ReadSetSummary{
		Type:               s.Type,
		Reads:              s.reads,
		WithAlignment:      s.withAlignment,
		WithoutAlignment:   s.withoutAlignment,
		Failed:             s.failed,
		LongestPerfectKmer: s.readBest.Max(),
	}
	ids := append([]float64(nil), s.identities...)
	s.mu.Unlock()

	if sum.LongestPerfectKmer < 0 {
		sum.LongestPerfectKmer = 0
	}
	switch len(ids) {
	case 0:
		sum.MeanIdentity = math.NaN()
		sum.StdDevIdentity = math.NaN()
		sum.MedianIdentity = math.NaN()
	case 1:
		sum.MeanIdentity = ids[0]
		sum.StdDevIdentity = 0
		sum.MedianIdentity = ids[0]
	default:
		sort.Float64s(ids)
		sum.MeanIdentity, sum.StdDevIdentity = stat.MeanStdDev(ids, nil)
		sum.MedianIdentity = stat.Quantile(0.5, stat.Empirical, ids, nil)
	}
	return sum
}
