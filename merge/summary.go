// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package merge

import "math"

// Summary is the result of a merge session.
type Summary struct {
	HitName   string
	HitSize   int
	QueryName string
	QuerySize int

	// QueryStart, QueryEnd, HitStart and HitEnd are the
	// union coordinates of the accepted blocks.
	QueryStart, QueryEnd int
	HitStart, HitEnd     int

	IdenticalBases     int
	LongestPerfectKmer int
	PerfectKmerSum     int
	PerfectKmerCount   int

	// AlignmentSize counts all classified columns while
	// AlignmentSizeWithoutIndels counts only match and
	// substitution columns.
	AlignmentSize              int
	AlignmentSizeWithoutIndels int

	// KmerCounts[i] is the number of perfect-match runs
	// at least KmerSizes[i] long.
	KmerSizes  []int
	KmerCounts []int

	// Accepted and Rejected are the numbers of blocks
	// accepted and rejected by the session.
	Accepted int
	Rejected int
}

// QuerySpan returns the length of the read covered by the merged alignment.
func (s *Summary) QuerySpan() int { return s.QueryEnd - s.QueryStart }

// HitSpan returns the length of the reference covered by the merged alignment.
func (s *Summary) HitSpan() int { return s.HitEnd - s.HitStart }

// AlignmentIdentity returns the percentage of aligned columns that are
// identical. It returns NaN for an empty alignment.
func (s *Summary) AlignmentIdentity() float64 {
	return percent(s.IdenticalBases, s.AlignmentSize)
}

// QueryIdentity returns the percentage of read bases that are identical
// to the reference. It returns NaN for an empty read.
func (s *Summary) QueryIdentity() float64 {
	return percent(s.IdenticalBases, s.QuerySize)
}

// PercentQueryAligned returns the percentage of the read covered by the
// merged alignment. It returns NaN for an empty read.
func (s *Summary) PercentQueryAligned() float64 {
	return percent(s.QuerySpan(), s.QuerySize)
}

// MeanPerfectKmer returns the mean length of the perfect-match runs. It
// returns NaN if there are no runs.
func (s *Summary) MeanPerfectKmer() float64 {
	if s.PerfectKmerCount == 0 {
		return math.NaN()
	}
	return float64(s.PerfectKmerSum) / float64(s.PerfectKmerCount)
}

func percent(n, d int) float64 {
	if d == 0 {
		return math.NaN()
	}
	return 100 * float64(n) / float64(d)
}
