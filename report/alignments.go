// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/kortschak/nanook/merge"
)

var alignmentColumns = []string{
	"Filename",
	"QueryName",
	"QueryStart",
	"QueryBasesCovered",
	"QueryStrand",
	"QueryLength",
	"HitName",
	"HitStart",
	"HitBasesCovered",
	"HitStrand",
	"HitLength",
	"AlignmentSize",
	"IdenticalBases",
	"AlignmentPercentIdentity",
	"QueryPercentIdentity",
	"LongestPerfectKmer",
	"MeanPerfectKmer",
	"PercentQueryAligned",
}

// AlignmentsTable writes one row per analysed read.
type AlignmentsTable struct {
	w      io.Writer
	source string
}

// NewAlignmentsTable returns an AlignmentsTable writing to w after writing
// the table header. Rows are labelled with the source file name.
func NewAlignmentsTable(w io.Writer, source string) (*AlignmentsTable, error) {
	_, err := fmt.Fprintln(w, strings.Join(alignmentColumns, "\t"))
	if err != nil {
		return nil, err
	}
	return &AlignmentsTable{w: w, source: source}, nil
}

// Write writes the merged alignment summary s. The strand of the query is
// given by strand, 1 for plus and -1 for minus.
func (t *AlignmentsTable) Write(s *merge.Summary, strand int8) error {
	_, err := fmt.Fprintf(t.w, "%s\t%s\t%d\t%d\t%s\t%d\t%s\t%d\t%d\t%s\t%d\t%d\t%d\t%.2f\t%.2f\t%d\t%.2f\t%.2f\n",
		t.source,
		s.QueryName, s.QueryStart, s.QuerySpan(), strandString(strand), s.QuerySize,
		s.HitName, s.HitStart, s.HitSpan(), "+", s.HitSize,
		s.AlignmentSize, s.IdenticalBases,
		s.AlignmentIdentity(), s.QueryIdentity(),
		s.LongestPerfectKmer, s.MeanPerfectKmer(), s.PercentQueryAligned(),
	)
	return err
}

// WriteNoAlignments writes a row for a read without alignments.
func (t *AlignmentsTable) WriteNoAlignments(read string) error {
	_, err := fmt.Fprintf(t.w, "%s\t%s\tNO ALIGNMENTS\n", t.source, read)
	return err
}

// WriteFailed writes a row for a read whose merge failed.
func (t *AlignmentsTable) WriteFailed(read string, cause error) error {
	_, err := fmt.Fprintf(t.w, "%s\t%s\tFAILED\t%v\n", t.source, read, cause)
	return err
}

func strandString(s int8) string {
	if s < 0 {
		return "-"
	}
	return "+"
}
