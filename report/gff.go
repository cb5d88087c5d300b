// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"io"
	"math"

	"github.com/biogo/biogo/feat"
	"github.com/biogo/biogo/io/featio/gff"
	"github.com/biogo/biogo/seq"

	"github.com/kortschak/nanook/merge"
	"github.com/kortschak/nanook/stats"
)

// GFF writes merged alignment spans as GFF features on the reference.
type GFF struct {
	w *gff.Writer
}

// NewGFF returns a GFF writing to w.
func NewGFF(w io.Writer) *GFF {
	return &GFF{w: gff.NewWriter(w, 60, true)}
}

// Write writes the reference span of the merged alignment s of a read of
// the given type. The strand of the query is given by strand, 1 for plus
// and -1 for minus.
func (g *GFF) Write(s *merge.Summary, typ stats.ReadType, strand int8) error {
	if s.HitSpan() <= 0 {
		return nil
	}
	f := &gff.Feature{
		SeqName:    s.HitName,
		Source:     "nanook",
		Feature:    "alignment",
		FeatStart:  s.HitStart,
		FeatEnd:    s.HitEnd,
		FeatStrand: seq.Strand(strand),
		FeatFrame:  gff.NoFrame,
		FeatAttributes: gff.Attributes{
			{Tag: "Read", Value: fmt.Sprintf("%s %d %d", s.QueryName, feat.ZeroToOne(s.QueryStart), s.QueryEnd)},
			{Tag: "Type", Value: typ.String()},
		},
	}
	if id := s.AlignmentIdentity(); !math.IsNaN(id) {
		f.FeatScore = &id
	}
	_, err := g.w.Write(f)
	return err
}
