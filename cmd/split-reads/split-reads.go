// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// split-reads splits a multiple fasta read file into a number of multiple
// fasta read files that are no greater in total read length than a defined
// threshold, for parallel aligner runs. Reads shorter than a minimum length
// or below a minimum sequence complexity are discarded.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/complexity"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq"
	"github.com/biogo/biogo/seq/linear"
)

var (
	in     = flag.String("in", "", "specifies the input read fasta file name (required)")
	outDir = flag.String("out", ".", "specifies the output directory")
	minLen = flag.Int("min-length", 0, "specifies the minimum read length for inclusion")
	bundle = flag.Int("bundle", 100e6, "specifies the sum of read length in a bundle")
	thresh = flag.Float64("complexity", 0, "specifies the minimum total read complexity (0 - no filter)")
	typ    = flag.Int("complexity-type", 0, "specifies complexity calculation function (0 - WF, 1 - entropic, 2 - Z)")
)

type complexityFunc func(s seq.Sequence, start, end int) (float64, error)

var complexityFuncs = []complexityFunc{
	0: complexity.WF,
	1: complexity.Entropic,
	2: complexity.Z,
}

func main() {
	flag.Parse()
	if *in == "" || *typ < 0 || len(complexityFuncs) <= *typ {
		flag.Usage()
		os.Exit(1)
	}

	inFile, err := os.Open(*in)
	if err != nil {
		log.Fatalf("failed to open input: %v", err)
	}
	defer inFile.Close()

	prefix := filepath.Join(*outDir, filepath.Base(*in))
	n, err := split(inFile, prefix, filter(*minLen, complexityFuncs[*typ], *thresh), *bundle)
	if err != nil {
		log.Fatalf("failed to split reads: %v", err)
	}
	log.Printf("wrote %d read bundles with prefix %q", n, prefix)
}

// filter returns a function reporting whether a read is at least minLen
// long and, if thresh is positive, has a complexity of at least thresh
// calculated by cfn.
func filter(minLen int, cfn complexityFunc, thresh float64) func(seq.Sequence) bool {
	return func(s seq.Sequence) bool {
		if s.Len() < minLen {
			return false
		}
		if thresh <= 0 {
			return true
		}
		// err is always nil for a linear.Seq Start() and End().
		c, _ := cfn(s, s.Start(), s.End())
		return c >= thresh
	}
}

// split writes reads from r that keep accepts to fasta bundles named
// with the given prefix, each holding at most size bases unless a single
// read is longer. It returns the number of bundles written.
func split(r io.Reader, prefix string, keep func(seq.Sequence) bool, size int) (int, error) {
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNAgapped)))

	var (
		out   *os.File
		i     int
		bases int
		err   error
	)
	for sc.Next() {
		s := sc.Seq()
		if !keep(s) {
			continue
		}
		if out == nil || (bases != 0 && bases+s.Len() > size) {
			if out != nil {
				err = out.Close()
				if err != nil {
					return i, fmt.Errorf("failed to close bundle %d: %w", i-1, err)
				}
			}
			out, err = os.Create(bundleName(prefix, i))
			if err != nil {
				return i, fmt.Errorf("failed to create bundle %d: %w", i, err)
			}
			i++
			bases = 0
		}
		bases += s.Len()
		_, err = fmt.Fprintf(out, "%60a\n", s)
		if err != nil {
			out.Close()
			return i, err
		}
	}
	if err := sc.Error(); err != nil {
		if out != nil {
			out.Close()
		}
		return i, err
	}
	if out != nil {
		err = out.Close()
		if err != nil {
			return i, fmt.Errorf("failed to close bundle %d: %w", i-1, err)
		}
	}
	return i, nil
}

func bundleName(prefix string, i int) string {
	return fmt.Sprintf("%s-%d.fa", prefix, i)
}
