// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package blocks extracts alignment blocks from SAM and BAM records.
package blocks

import (
	"errors"
	"fmt"

	"github.com/biogo/hts/sam"

	"github.com/kortschak/nanook/merge"
)

var (
	ErrNoSequence       = errors.New("blocks: record has no sequence")
	ErrUnmapped         = errors.New("blocks: record is unmapped")
	ErrUnsupportedCigar = errors.New("blocks: unsupported CIGAR operation")
	ErrQueryBounds      = errors.New("blocks: CIGAR exceeds query sequence")
	ErrReferenceBounds  = errors.New("blocks: CIGAR exceeds reference sequence")
)

// FromRecord returns the alignment block described by r against the
// reference sequence ref. Query coordinates are in the frame of the
// sequence stored in the record, including hard clipped bases.
func FromRecord(r *sam.Record, ref []byte) (merge.Block, error) {
	if r.Flags&sam.Unmapped != 0 || r.Ref == nil || r.Pos < 0 {
		return merge.Block{}, fmt.Errorf("%w: %s", ErrUnmapped, r.Name)
	}
	if r.Seq.Length == 0 {
		return merge.Block{}, fmt.Errorf("%w: %s", ErrNoSequence, r.Name)
	}
	seq := r.Seq.Expand()

	var (
		query, hit []byte

		qpos int
		rpos = r.Pos

		leading = true
		start   int
		hard    int
	)
	for _, co := range r.Cigar {
		n := co.Len()
		switch t := co.Type(); t {
		case sam.CigarHardClipped:
			hard += n
			if leading {
				start += n
			}
			continue
		case sam.CigarSoftClipped:
			if qpos+n > len(seq) {
				return merge.Block{}, fmt.Errorf("%w: %s", ErrQueryBounds, r.Name)
			}
			qpos += n
			if leading {
				start += n
			}
			continue
		case sam.CigarPadded:
			continue
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			if qpos+n > len(seq) {
				return merge.Block{}, fmt.Errorf("%w: %s", ErrQueryBounds, r.Name)
			}
			if rpos+n > len(ref) {
				return merge.Block{}, fmt.Errorf("%w: %s", ErrReferenceBounds, r.Name)
			}
			query = append(query, seq[qpos:qpos+n]...)
			hit = append(hit, ref[rpos:rpos+n]...)
		case sam.CigarInsertion:
			if qpos+n > len(seq) {
				return merge.Block{}, fmt.Errorf("%w: %s", ErrQueryBounds, r.Name)
			}
			query = append(query, seq[qpos:qpos+n]...)
			hit = appendGaps(hit, n)
		case sam.CigarDeletion:
			if rpos+n > len(ref) {
				return merge.Block{}, fmt.Errorf("%w: %s", ErrReferenceBounds, r.Name)
			}
			query = appendGaps(query, n)
			hit = append(hit, ref[rpos:rpos+n]...)
		default:
			return merge.Block{}, fmt.Errorf("%w: %v in %s", ErrUnsupportedCigar, t, r.Name)
		}
		leading = false
		consume := co.Type().Consumes()
		qpos += n * consume.Query
		rpos += n * consume.Reference
	}

	return merge.Block{
		QueryName:         r.Name,
		QuerySequence:     query,
		QueryStart:        start,
		QuerySequenceSize: len(seq) + hard,

		HitName:         r.Ref.Name(),
		HitSequence:     hit,
		HitStart:        r.Pos,
		HitSequenceSize: len(ref),
	}, nil
}

func appendGaps(b []byte, n int) []byte {
	for i := 0; i < n; i++ {
		b = append(b, merge.Gap)
	}
	return b
}

// QueryLength returns the length of the query sequence of r, including
// hard clipped bases.
func QueryLength(r *sam.Record) int {
	n := r.Seq.Length
	for _, co := range r.Cigar {
		if co.Type() == sam.CigarHardClipped {
			n += co.Len()
		}
	}
	return n
}
