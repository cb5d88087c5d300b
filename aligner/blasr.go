// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package aligner

import (
	"os/exec"

	"github.com/biogo/external"
)

// BLASR defines parameters for the blasr aligner.
type BLASR struct {
	// Usage: blasr reads.{bam|fasta|bax.h5|fofn} genome.fasta [-options]
	//
	Cmd string `buildarg:"{{if .}}{{.}}{{else}}blasr{{end}}"` // blasr

	// Input Files:
	Reads  string `buildarg:"{{.}}"` // "reads.{bam|fasta|bax.h5|fofn}"
	Genome string `buildarg:"{{.}}"` // "genome.fasta"

	SuffixArray string `buildarg:"{{if .}}--sa{{split}}{{.}}{{end}}"`   // -sa: suffix array file
	TupleCounts string `buildarg:"{{if .}}--ctab{{split}}{{.}}{{end}}"` // -ctab: table of tuple counts

	// Output file options:
	Aligned   string `buildarg:"{{if .}}--out{{split}}{{.}}{{end}}"`       // -out: outfile (stdout if empty)
	Unaligned string `buildarg:"{{if .}}--unaligned{{split}}{{.}}{{end}}"` // -unaligned: outfile for unaligned reads

	// SAM output options:
	SAM           bool   `buildarg:"{{if .}}--sam{{end}}"`                    // -sam: write output in SAM format
	Clipping      string `buildarg:"{{if .}}--clipping{{split}}{{.}}{{end}}"` // -clipping: no/hard/subread/soft clipping for SAM
	CIGARSeqMatch bool   `buildarg:"{{if .}}--cigarUseSeqMatch{{end}}"`       // -cigarUseSeqMatch: use '=' and 'X' to represent match

	// Alignment options:
	MinSeedLength int  `buildarg:"{{if .}}--minMatch{{split}}{{.}}{{end}}"`    // -minMatch: minimum seed length
	Candidates    int  `buildarg:"{{if .}}--nCandidates{{split}}{{.}}{{end}}"` // -nCandidates: candidates to keep for the best alignment
	AffineAlign   bool `buildarg:"{{if .}}--affineAlign{{end}}"`               // -affineAlign

	// Read and alignment filtering and reporting options:
	BestN              int     `buildarg:"{{if .}}--bestn{{split}}{{.}}{{end}}"`            // -bestn: report the top 'n' alignments
	HitPolicy          string  `buildarg:"{{if .}}--hitPolicy{{split}}{{.}}{{end}}"`        // -hitPolicy: policy to treat multiple hits
	MinReadLength      int     `buildarg:"{{if .}}--minReadLength{{split}}{{.}}{{end}}"`    // -minReadLength
	MinAlignmentLength int     `buildarg:"{{if .}}--minAlnLength{{split}}{{.}}{{end}}"`     // -minAlnLength
	MinSimilarity      float64 `buildarg:"{{if .}}--minPctSimilarity{{split}}{{.}}{{end}}"` // -minPctSimilarity
	MinAccuracy        float64 `buildarg:"{{if .}}--minPctAccuracy{{split}}{{.}}{{end}}"`   // -minPctAccuracy

	// Parallel alignment options:
	Procs int `buildarg:"{{if .}}--nproc{{split}}{{.}}{{end}}"` // -nproc: number of processes
}

// BuildCommand returns an exec.Cmd built from the parameters in b.
func (b BLASR) BuildCommand() (*exec.Cmd, error) {
	if b.Reads == "" || b.Genome == "" {
		return nil, ErrMissingRequired
	}
	cl := external.Must(external.Build(b))
	return exec.Command(cl[0], cl[1:]...), nil
}
