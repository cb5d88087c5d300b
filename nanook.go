// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// nanook merges long read alignments against a set of reference sequences
// and reports per read and per reference identity, error and perfect-match
// run statistics.
//
// Alignments are taken from SAM or BAM output of an aligner, optionally
// running blasr or bwa mem first. Each read is merged against the reference
// of its first primary or supplementary alignment.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/kortschak/nanook/aligner"
	"github.com/kortschak/nanook/blocks"
	"github.com/kortschak/nanook/merge"
	"github.com/kortschak/nanook/reference"
	"github.com/kortschak/nanook/report"
	"github.com/kortschak/nanook/stats"
)

var (
	reads      = flag.String("reads", "", "input fasta sequence read file name (required to run the aligner)")
	ref        = flag.String("reference", "", "input reference sequence file name (required)")
	alignName  = flag.String("aligner", "bwa", "aligner to run: blasr or bwa")
	alignPath  = flag.String("aligner-path", "", "path to the aligner if not in $PATH")
	runAligner = flag.Bool("run-aligner", true, `actually run the aligner
    	false is useful to reanalyse existing aligner output`,
	)
	alignments = flag.String("alignments", "", "SAM or BAM alignment file (default derived from reads)")
	readType   = flag.String("type", "2d", "read type: template, complement or 2d")
	procs      = flag.Int("procs", 0, "number of aligner threads and merge workers (default all CPUs)")

	outPrefix = flag.String("out", "", "output file prefix (default derived from alignments)")
	errFile   = flag.String("err", "", "log file name (default to stderr)")

	ksizes     = flag.String("ksizes", "", "comma separated ascending perfect k-mer sizes to count (default 15,17,19,21,23,25)")
	maxRun     = flag.Int("max-run", 0, "maximum perfect-match run length (0 is unlimited)")
	contextLen = flag.Int("context", 0, "number of bases of perfect-match context recorded for errors (0 is the complete run)")
	contextK   = flag.Int("context-k", stats.DefaultContextK, "length of error context k-mers counted")
	bin        = flag.Int("bin", 100, "reference coverage bin width")
	gffOut     = flag.Bool("gff", false, "output GFF file of merged alignment spans")
	compress   = flag.Bool("zstd", false, "zstd compress report files")
	verbose    = flag.Bool("v", false, "log merge diagnostics")
)

func main() {
	flag.Parse()
	if *ref == "" || (*alignments == "" && *reads == "") || (*runAligner && *reads == "") {
		fmt.Fprintln(os.Stderr, "invalid argument: must have reference and either reads or alignments set")
		flag.Usage()
		os.Exit(1)
	}
	typ, err := stats.ParseReadType(*readType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid argument: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}
	kSizes, err := parseKmerSizes(*ksizes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid argument: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}
	if *bin <= 0 || *contextK <= 0 {
		fmt.Fprintln(os.Stderr, "invalid argument: bin and context-k must be positive")
		flag.Usage()
		os.Exit(1)
	}
	if *procs <= 0 {
		*procs = runtime.NumCPU()
	}

	if *errFile != "" {
		w, err := os.Create(*errFile)
		if err != nil {
			// Oh, the irony.
			log.Fatalf("failed to create log file: %v", err)
		}
		defer w.Close()
		log.SetOutput(w)
	}

	cfg := merge.Config{
		KmerSizes:     kSizes,
		MaxRunLength:  *maxRun,
		ContextLength: *contextLen,
	}
	if *verbose {
		cfg.Log = log.New(log.Writer(), "merge: ", log.Flags())
	}

	log.Printf("reading reference sequences from %q", *ref)
	seqs, err := reference.ReadFile(*ref)
	if err != nil {
		log.Fatalf("failed to read reference: %v", err)
	}
	refs, err := newReferences(seqs, *contextK)
	if err != nil {
		log.Fatalf("failed to prepare reference statistics: %v", err)
	}

	if *alignments == "" {
		*alignments = filepath.Base(*reads) + "." + *alignName + ".sam"
	}
	if *runAligner {
		log.Printf("aligning reads in %q to %q with %s", *reads, *ref, *alignName)
		err = align(*alignName, *alignPath, *reads, *ref, *alignments, *procs)
		if err != nil {
			log.Fatalf("failed mapping: %v", err)
		}
	}

	if *outPrefix == "" {
		*outPrefix = strings.TrimSuffix(filepath.Base(*alignments), filepath.Ext(*alignments))
	}
	*outPrefix += "_" + typ.String()

	f, err := blocks.Open(*alignments)
	if err != nil {
		log.Fatalf("failed to open alignments: %v", err)
	}
	defer f.Close()

	tf, err := report.Create(*outPrefix+"_alignments.txt", *compress)
	if err != nil {
		log.Fatalf("failed to create alignments table: %v", err)
	}
	table, err := report.NewAlignmentsTable(tf, filepath.Base(*alignments))
	if err != nil {
		log.Fatalf("failed to write alignments table: %v", err)
	}
	var g *report.GFF
	var gf *report.File
	if *gffOut {
		gf, err = report.Create(*outPrefix+".gff", *compress)
		if err != nil {
			log.Fatalf("failed to create GFF outfile: %v", err)
		}
		g = report.NewGFF(gf)
	}

	a := &analyser{
		typ:  typ,
		seqs: seqs,
		refs: refs,
		set:  stats.NewReadSet(typ),
		cfg:  cfg,
	}
	log.Printf("merging %s alignments from %q", typ, *alignments)
	err = analyseAll(f.Reader, a, table, g, *procs)
	if err != nil {
		log.Fatalf("failed to analyse alignments: %v", err)
	}
	err = tf.Close()
	if err != nil {
		log.Fatalf("failed to close alignments table: %v", err)
	}
	if gf != nil {
		err = gf.Close()
		if err != nil {
			log.Fatalf("failed to close GFF outfile: %v", err)
		}
	}

	sum := a.set.Summary()
	log.Printf("analysed %d reads: %d with alignments, %d without, %d failed",
		sum.Reads, sum.WithAlignment, sum.WithoutAlignment, sum.Failed)

	err = writeReports(*outPrefix, typ, refs, a.set, *bin, *compress)
	if err != nil {
		log.Fatalf("failed to write reports: %v", err)
	}
}

// align runs the named aligner, writing SAM output to out.
func align(name, path, reads, genome, out string, procs int) error {
	switch name {
	case "blasr":
		b := aligner.BLASR{
			Cmd: path,

			Reads: reads, Genome: genome,
			BestN: 1,

			SAM:           true,
			Clipping:      "soft",
			CIGARSeqMatch: true,

			Aligned: out,

			Procs: procs,
		}
		return aligner.Run(b, os.Stderr, os.Stderr)
	case "bwa":
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		b := aligner.BWA{
			Cmd: path,

			Threads: procs,
			Preset:  aligner.ONT2D,

			Index: genome,
			Reads: reads,
		}
		err = aligner.Run(b, f, os.Stderr)
		if err != nil {
			f.Close()
			return err
		}
		return f.Close()
	default:
		return fmt.Errorf("unknown aligner %q", name)
	}
}

// parseKmerSizes parses a comma separated list of k sizes. An empty list
// returns nil.
func parseKmerSizes(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var k []int
	for _, f := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("bad k size %q: %w", f, err)
		}
		k = append(k, v)
	}
	return k, nil
}

// writeReports writes the per reference and read set reports with the
// given file prefix.
func writeReports(prefix string, typ stats.ReadType, refs *stats.References, set *stats.ReadSet, bin int, compress bool) error {
	err := writeReport(prefix+"_summary.txt", compress, func(w io.Writer) error {
		return report.WriteReferenceSummary(w, refs.All(), typ)
	})
	if err != nil {
		return err
	}
	err = writeReport(prefix+"_reads.txt", compress, func(w io.Writer) error {
		return report.WriteReadSetSummary(w, []*stats.ReadSet{set})
	})
	if err != nil {
		return err
	}
	err = writeReport(prefix+"_kcounts.txt", compress, func(w io.Writer) error {
		return report.WriteKmerSizeCounts(w, set.KmerSizeCounts())
	})
	if err != nil {
		return err
	}
	counts, cumulative := set.ReadBestKmers()
	reads := set.Summary().WithAlignment
	err = writeReport(prefix+"_all_best_perfect_kmers.txt", compress, func(w io.Writer) error {
		return report.WriteReadHistogram(w, counts, reads)
	})
	if err != nil {
		return err
	}
	err = writeReport(prefix+"_all_cumulative_perfect_kmers.txt", compress, func(w io.Writer) error {
		return report.WriteReadHistogram(w, cumulative, reads)
	})
	if err != nil {
		return err
	}

	for _, r := range refs.All() {
		s := r.Stats(typ)
		if s.Summary().ReadsWithAlignments == 0 {
			continue
		}
		err = writeReferenceReports(prefix+"_"+r.Name, s, bin, compress)
		if err != nil {
			return err
		}
	}
	return nil
}

// writeReferenceReports writes the histogram, coverage and error reports
// of a single reference.
func writeReferenceReports(prefix string, s *stats.Stats, bin int, compress bool) error {
	reads := s.Summary().ReadsWithAlignments
	counts, cumulative := s.ReadBestKmers()
	for _, r := range []struct {
		suffix string
		write  func(io.Writer) error
	}{
		{"_perfect_kmers.txt", func(w io.Writer) error { return report.WriteHistogram(w, s.PerfectKmers()) }},
		{"_best_perfect_kmers.txt", func(w io.Writer) error { return report.WriteReadHistogram(w, counts, reads) }},
		{"_cumulative_perfect_kmers.txt", func(w io.Writer) error { return report.WriteReadHistogram(w, cumulative, reads) }},
		{"_coverage.txt", func(w io.Writer) error { return report.WriteCoverage(w, bin, s.Coverage(bin)) }},
		{"_error_kmers.txt", func(w io.Writer) error { return report.WriteKmers(w, s.Contexts().Counts()) }},
		{"_substitutions.txt", func(w io.Writer) error { return report.WriteSubstitutions(w, s.Substitutions()) }},
	} {
		err := writeReport(prefix+r.suffix, compress, r.write)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeReport(path string, compress bool, write func(io.Writer) error) error {
	f, err := report.Create(path, compress)
	if err != nil {
		return err
	}
	err = write(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", f.Name, err)
	}
	return f.Close()
}
