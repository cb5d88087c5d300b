// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"io"
	"math"

	"github.com/kortschak/nanook/stats"
)

// WriteReferenceSummary writes the per reference statistics for a read
// type.
func WriteReferenceSummary(w io.Writer, refs []*stats.Reference, typ stats.ReadType) error {
	_, err := fmt.Fprintln(w, "Name\tSize\tReadsWithAlignments\tLongestPerfectKmer\t"+
		"AlignedBases\tIdenticalBases\tAlignedPercentIdentity\tReadPercentIdentity\t"+
		"Insertions\tInsertedBases\tInsertionsPer100Bases\t"+
		"Deletions\tDeletedBases\tDeletionsPer100Bases\t"+
		"Substitutions\tSubstitutionsPer100Bases\tErrorsPer100Bases")
	if err != nil {
		return err
	}
	for _, r := range refs {
		s := r.Stats(typ).Summary()
		_, err = fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%s\t%s\t%d\t%d\t%s\t%d\t%d\t%s\t%d\t%s\t%s\n",
			r.Name, r.Size, s.ReadsWithAlignments, s.LongestPerfectKmer,
			s.AlignedBases, s.IdenticalBases, pc(s.AlignedIdentity()), pc(s.ReadIdentity()),
			s.Insertions, s.InsertedBases, pc(s.InsertionRate()),
			s.Deletions, s.DeletedBases, pc(s.DeletionRate()),
			s.Substitutions, pc(s.SubstitutionRate()), pc(s.ErrorsPer100Bases()),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteReadSetSummary writes the read set statistics for each read type.
func WriteReadSetSummary(w io.Writer, sets []*stats.ReadSet) error {
	_, err := fmt.Fprintln(w, "Type\tReads\tWithAlignments\tWithoutAlignments\tFailed\t"+
		"LongestPerfectKmer\tMeanIdentity\tStdDevIdentity\tMedianIdentity")
	if err != nil {
		return err
	}
	for _, set := range sets {
		s := set.Summary()
		_, err = fmt.Fprintf(w, "%v\t%d\t%d\t%d\t%d\t%d\t%s\t%s\t%s\n",
			s.Type, s.Reads, s.WithAlignment, s.WithoutAlignment, s.Failed,
			s.LongestPerfectKmer, pc(s.MeanIdentity), pc(s.StdDevIdentity), pc(s.MedianIdentity),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteHistogram writes counts from length 1 to the longest length with
// a non-zero count.
func WriteHistogram(w io.Writer, counts []int) error {
	for i := 1; i < len(counts); i++ {
		_, err := fmt.Fprintf(w, "%d\t%d\n", i, counts[i])
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteReadHistogram writes counts from length 1 to the longest length
// with a non-zero count along with the percentage of reads each count
// represents.
func WriteReadHistogram(w io.Writer, counts []int, reads int) error {
	for i := 1; i < len(counts); i++ {
		var p float64
		if counts[i] > 0 && reads > 0 {
			p = 100 * float64(counts[i]) / float64(reads)
		}
		_, err := fmt.Fprintf(w, "%d\t%d\t%.2f\n", i, counts[i], p)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteCoverage writes binned mean coverage depths labelled by bin start.
func WriteCoverage(w io.Writer, bin int, depth []float64) error {
	for i, d := range depth {
		_, err := fmt.Fprintf(w, "%d\t%.2f\n", i*bin, d)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteKmerSizeCounts writes the per read perfect-match run counts for
// each k size. The k sizes of the first entry label the columns.
func WriteKmerSizeCounts(w io.Writer, counts []stats.KmerSizeCounts) error {
	_, err := io.WriteString(w, "Read\tQuerySize")
	if err != nil {
		return err
	}
	if len(counts) != 0 {
		for _, k := range counts[0].KmerSizes {
			_, err = fmt.Fprintf(w, "\t%d", k)
			if err != nil {
				return err
			}
		}
	}
	_, err = io.WriteString(w, "\n")
	if err != nil {
		return err
	}
	for _, c := range counts {
		_, err = fmt.Fprintf(w, "%s\t%d", c.Read, c.QuerySize)
		if err != nil {
			return err
		}
		for _, n := range c.Counts {
			_, err = fmt.Fprintf(w, "\t%d", n)
			if err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, "\n")
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteKmers writes k-mer counts.
func WriteKmers(w io.Writer, counts []stats.KmerCount) error {
	for _, c := range counts {
		_, err := fmt.Fprintf(w, "%s\t%d\n", c.Kmer, c.Count)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteSubstitutions writes reference to read base substitution counts.
func WriteSubstitutions(w io.Writer, subs []stats.Substitution) error {
	for _, s := range subs {
		_, err := fmt.Fprintf(w, "%c\t%c\t%d\n", s.Ref, s.Read, s.Count)
		if err != nil {
			return err
		}
	}
	return nil
}

// pc formats a percentage, writing undefined values as NA.
func pc(f float64) string {
	if math.IsNaN(f) {
		return "NA"
	}
	return fmt.Sprintf("%.2f", f)
}
