// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/biogo/hts/sam"
	"github.com/exascience/pargo/pipeline"

	"github.com/kortschak/nanook/blocks"
	"github.com/kortschak/nanook/merge"
	"github.com/kortschak/nanook/reference"
	"github.com/kortschak/nanook/report"
	"github.com/kortschak/nanook/stats"
)

// groupSource is a pipeline.Source of read record groups.
type groupSource struct {
	r    *blocks.Reader
	data []blocks.Group
	err  error
}

// Err implements the corresponding method of pipeline.Source
func (s *groupSource) Err() error {
	if s.err != io.EOF {
		return s.err
	}
	return nil
}

// Prepare implements the corresponding method of pipeline.Source
func (s *groupSource) Prepare(_ context.Context) (size int) {
	return -1
}

// Fetch implements the corresponding method of pipeline.Source
func (s *groupSource) Fetch(size int) (fetched int) {
	if s.err != nil {
		s.data = nil
		return 0
	}
	if size < 1 {
		size = 1
	}
	s.data = make([]blocks.Group, 0, size)
	for len(s.data) < size {
		g, err := s.r.Read()
		if err != nil {
			s.err = err
			break
		}
		s.data = append(s.data, g)
	}
	return len(s.data)
}

// Data implements the corresponding method of pipeline.Source
func (s *groupSource) Data() interface{} {
	return s.data
}

// analyser merges reads of a single type against their primary reference.
type analyser struct {
	typ  stats.ReadType
	seqs *reference.Set
	refs *stats.References
	set  *stats.ReadSet
	cfg  merge.Config
}

// newReferences returns a stats reference set holding the sequences in seqs.
func newReferences(seqs *reference.Set, k int) (*stats.References, error) {
	refs := stats.NewReferences(k)
	for _, s := range seqs.All() {
		_, err := refs.Add(s.Name, s.Len())
		if err != nil {
			return nil, err
		}
	}
	return refs, nil
}

// result is the outcome of analysing a single read.
type result struct {
	read    string
	summary *merge.Summary
	strand  int8
	err     error
}

// analyse merges the alignments of g against the reference of its primary
// alignment.
func (a *analyser) analyse(g blocks.Group) result {
	a.set.AddRead()
	p := g.Primary()
	if p == nil {
		a.set.AddReadWithoutAlignment()
		return result{read: g.Name}
	}
	s, err := a.merge(g, p)
	if err != nil {
		a.set.AddFailedRead()
		return result{read: g.Name, err: err}
	}
	a.set.AddIdentity(s.AlignmentIdentity())
	return result{read: g.Name, summary: s, strand: p.Strand()}
}

func (a *analyser) merge(g blocks.Group, primary *sam.Record) (*merge.Summary, error) {
	name := primary.Ref.Name()
	seq, ok := a.seqs.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown reference %q", name)
	}
	ref, ok := a.refs.Get(name)
	if !ok {
		return nil, fmt.Errorf("no statistics for reference %q", name)
	}
	m, err := merge.New(g.QueryLength(), ref.Stats(a.typ), a.set, a.cfg)
	if err != nil {
		return nil, err
	}
	for _, r := range g.Alignments(primary.Ref) {
		b, err := blocks.FromRecord(r, seq.Seq)
		if err != nil {
			return nil, err
		}
		_, err = m.Add(b)
		if err != nil {
			return nil, err
		}
	}
	return m.Finalize()
}

// write writes the result to the alignments table and, if it is not nil,
// the GFF writer.
func (r result) write(table *report.AlignmentsTable, g *report.GFF, typ stats.ReadType) error {
	switch {
	case r.err != nil:
		return table.WriteFailed(r.read, r.err)
	case r.summary == nil:
		return table.WriteNoAlignments(r.read)
	}
	err := table.Write(r.summary, r.strand)
	if err != nil || g == nil {
		return err
	}
	return g.Write(r.summary, typ, r.strand)
}

// analyseAll merges all the reads from r in parallel using up to procs
// workers, writing per read results in input order.
func analyseAll(r *blocks.Reader, a *analyser, table *report.AlignmentsTable, g *report.GFF, procs int) error {
	var p pipeline.Pipeline
	p.Source(&groupSource{r: r})
	p.Add(pipeline.LimitedPar(procs, pipeline.Receive(func(_ int, data interface{}) interface{} {
		groups := data.([]blocks.Group)
		results := make([]result, len(groups))
		for i, grp := range groups {
			results[i] = a.analyse(grp)
		}
		return results
	})))
	p.Add(pipeline.Ord(pipeline.Receive(func(_ int, data interface{}) interface{} {
		for _, res := range data.([]result) {
			err := res.write(table, g, a.typ)
			if err != nil {
				p.SetErr(err)
				break
			}
		}
		return data
	})))
	p.Run()
	return p.Err()
}
