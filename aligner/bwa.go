// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package aligner

import (
	"os/exec"

	"github.com/biogo/external"
)

// ONT2D is the bwa mem preset for Oxford Nanopore 2D reads.
const ONT2D = "ont2d"

// BWA defines parameters for the bwa mem aligner. The SAM output of bwa
// mem is written to the command's standard output.
type BWA struct {
	// Usage: bwa mem [options] <idxbase> <in1.fq> [in2.fq]
	//
	Cmd  string `buildarg:"{{if .}}{{.}}{{else}}bwa{{end}}"` // bwa
	Mode string `buildarg:"{{if .}}{{.}}{{else}}mem{{end}}"` // mem

	// Algorithm options:
	Threads       int    `buildarg:"{{if .}}-t{{split}}{{.}}{{end}}"` // -t: number of threads
	MinSeedLength int    `buildarg:"{{if .}}-k{{split}}{{.}}{{end}}"` // -k: minimum seed length
	BandWidth     int    `buildarg:"{{if .}}-w{{split}}{{.}}{{end}}"` // -w: band width for banded alignment
	Preset        string `buildarg:"{{if .}}-x{{split}}{{.}}{{end}}"` // -x: read type preset

	// Input/output options:
	MinScore      int    `buildarg:"{{if .}}-T{{split}}{{.}}{{end}}"` // -T: minimum score to output
	All           bool   `buildarg:"{{if .}}-a{{end}}"`               // -a: output all alignments
	MarkSecondary bool   `buildarg:"{{if .}}-M{{end}}"`               // -M: mark shorter split hits as secondary
	ReadGroup     string `buildarg:"{{if .}}-R{{split}}{{.}}{{end}}"` // -R: read group header line

	// Input files:
	Index string `buildarg:"{{.}}"` // "idxbase"
	Reads string `buildarg:"{{.}}"` // "in1.fq"
}

// BuildCommand returns an exec.Cmd built from the parameters in b. If
// no preset is given, the ont2d preset is used.
func (b BWA) BuildCommand() (*exec.Cmd, error) {
	if b.Reads == "" || b.Index == "" {
		return nil, ErrMissingRequired
	}
	if b.Preset == "" {
		b.Preset = ONT2D
	}
	cl := external.Must(external.Build(b))
	return exec.Command(cl[0], cl[1:]...), nil
}
