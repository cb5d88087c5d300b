// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package merge

import (
	"errors"
	"fmt"
	"log"
)

var (
	ErrNameMismatch = errors.New("merge: block name mismatch")
	ErrBlockBounds  = errors.New("merge: block outside read")
	ErrRunCapacity  = errors.New("merge: perfect run exceeds capacity")
	ErrConfig       = errors.New("merge: invalid configuration")
)

// DefaultKmerSizes is the default set of perfect-match run length
// thresholds counted for each read.
var DefaultKmerSizes = []int{15, 17, 19, 21, 23, 25}

// Config holds merge session parameters.
type Config struct {
	// KmerSizes is the ascending set of perfect-match
	// run length thresholds. If nil, DefaultKmerSizes
	// is used.
	KmerSizes []int

	// MaxRunLength is the longest perfect-match run
	// a session may report. Zero is unlimited.
	MaxRunLength int

	// ContextLength limits the error context to the
	// trailing bases of the preceding perfect-match
	// run. Zero keeps the complete run.
	ContextLength int

	// Log receives merge diagnostics if not nil.
	Log *log.Logger
}

func (c Config) validate() error {
	for i, k := range c.KmerSizes {
		if k <= 0 {
			return fmt.Errorf("%w: non-positive k size %d", ErrConfig, k)
		}
		if i != 0 && k <= c.KmerSizes[i-1] {
			return fmt.Errorf("%w: k sizes not ascending: %v", ErrConfig, c.KmerSizes)
		}
	}
	if c.MaxRunLength < 0 {
		return fmt.Errorf("%w: negative maximum run length %d", ErrConfig, c.MaxRunLength)
	}
	if c.ContextLength < 0 {
		return fmt.Errorf("%w: negative context length %d", ErrConfig, c.ContextLength)
	}
	return nil
}

type state int

const (
	empty state = iota
	merging
	finalized
	failed
)

// Merger merges the alignment blocks of a single read against a single
// reference into one non-overlapping alignment, classifying each aligned
// column as a match, substitution, insertion or deletion.
//
// A Merger is not safe for concurrent use. Statistics are held by the
// Merger until Finalize is called, so a session that fails does not
// update its sinks.
type Merger struct {
	cfg Config
	ref ReferenceSink
	set ReadSetSink

	state state
	err   error

	cov  *Coverage
	runs *runs

	named     bool
	queryName string
	hitName   string
	querySize int
	hitSize   int

	queryStart, queryEnd int
	hitStart, hitEnd     int

	identical     int
	alignmentSize int
	withoutIndels int

	accepted int
	rejected int
}

// New returns a Merger for a read of the given length. Statistics are
// sent to ref and set when the session is finalized; either may be nil.
func New(readLength int, ref ReferenceSink, set ReadSetSink, cfg Config) (*Merger, error) {
	if readLength < 0 {
		return nil, fmt.Errorf("%w: negative read length %d", ErrConfig, readLength)
	}
	if cfg.KmerSizes == nil {
		cfg.KmerSizes = DefaultKmerSizes
	}
	err := cfg.validate()
	if err != nil {
		return nil, err
	}
	return &Merger{
		cfg:        cfg,
		ref:        ref,
		set:        set,
		cov:        NewCoverage(readLength),
		runs:       newRuns(cfg.KmerSizes, cfg.ContextLength),
		queryStart: -1,
		queryEnd:   -1,
		hitStart:   -1,
		hitEnd:     -1,
	}, nil
}

func (m *Merger) logf(format string, args ...interface{}) {
	if m.cfg.Log != nil {
		m.cfg.Log.Printf(format, args...)
	}
}

func (m *Merger) fail(err error) error {
	m.state = failed
	m.err = err
	return err
}

// Add merges the block b into the session. It returns whether the block
// was accepted; blocks whose position is inconsistent with the blocks
// already merged are silently rejected. A non-nil error is fatal to the
// session and is returned by all subsequent calls.
//
// Add panics if called after Finalize.
func (m *Merger) Add(b Block) (accepted bool, err error) {
	switch m.state {
	case finalized:
		panic("merge: block added to finalized merger")
	case failed:
		return false, m.err
	}

	if !m.named {
		m.queryName = b.QueryName
		m.hitName = b.HitName
		m.querySize = b.QuerySequenceSize
		m.hitSize = b.HitSequenceSize
		m.named = true
	}
	if b.HitName != m.hitName {
		return false, m.fail(fmt.Errorf("%w: hit name %q does not match %q", ErrNameMismatch, b.HitName, m.hitName))
	}
	if b.QueryName != m.queryName {
		return false, m.fail(fmt.Errorf("%w: query name %q does not match %q", ErrNameMismatch, b.QueryName, m.queryName))
	}

	m.logf("merging block %v", &b)
	if !m.accept(&b) {
		m.rejected++
		return false, nil
	}
	if b.QueryStart < 0 || b.HitStart < 0 || b.QueryStart+b.queryBases() > m.cov.Len() {
		return false, m.fail(fmt.Errorf("%w: %v for read length %d", ErrBlockBounds, &b, m.cov.Len()))
	}
	m.accepted++
	m.state = merging

	if m.queryStart == -1 || b.QueryStart < m.queryStart {
		m.queryStart = b.QueryStart
	}
	if m.hitStart == -1 || b.HitStart < m.hitStart {
		m.hitStart = b.HitStart
	}

	q, h := m.walk(&b)

	if m.queryEnd == -1 || q > m.queryEnd {
		m.queryEnd = q
	}
	if m.hitEnd == -1 || h > m.hitEnd {
		m.hitEnd = h
	}
	m.logf("merged to query [%d,%d) hit [%d,%d)", m.queryStart, m.queryEnd, m.hitStart, m.hitEnd)

	return true, nil
}

// accept returns whether b is positioned consistently with the blocks
// already merged.
func (m *Merger) accept(b *Block) bool {
	remaining := b.QuerySequenceSize - (m.queryEnd - m.queryStart)
	maxDistance := 2 * remaining

	if m.hitStart != -1 && b.HitStart < m.hitStart && m.hitStart-b.HitStart > maxDistance {
		m.logf("rejected block: hit start %d too far (>%d) from overall hit start %d", b.HitStart, maxDistance, m.hitStart)
		return false
	}
	if m.hitEnd != -1 && b.HitStart > m.hitEnd && b.HitStart-m.hitEnd > maxDistance {
		m.logf("rejected block: hit start %d too far (>%d) from overall hit end %d", b.HitStart, maxDistance, m.hitEnd)
		return false
	}
	if m.queryStart >= 0 {
		qDist := abs(b.QueryStart - m.queryStart)
		hDist := abs(b.HitStart - m.hitStart)
		if float64(abs(qDist-hDist)) > 0.2*float64(qDist) {
			m.logf("rejected block: query offset %d inconsistent with hit offset %d", qDist, hDist)
			return false
		}
	}
	return true
}

// walk classifies the columns of b that lie on uncovered read positions
// and returns the query and hit positions following the last walked column.
func (m *Merger) walk(b *Block) (q, h int) {
	hit, query := b.HitSequence, b.QuerySequence
	if len(hit) != len(query) {
		m.logf("hit length %d not equal to query length %d", len(hit), len(query))
	}
	n := b.columns()
	q, h = b.QueryStart, b.HitStart

	m.runs.reset()

	// Skip the leading columns that overlap an already merged block.
	i := 0
	for ; i < n && m.covered(q); i++ {
		switch {
		case hit[i] == Gap && query[i] == Gap:
			continue
		case hit[i] == Gap:
			q++
		case query[i] == Gap:
			h++
		default:
			q++
			h++
		}
	}
	m.logf("walking columns [%d,%d)", i, n)

	stopped := false
	for ; i < n; i++ {
		if m.covered(q) {
			stopped = true
			break
		}
		hc, qc := upper(hit[i]), upper(query[i])
		switch {
		case hc == Gap && qc == Gap:
			continue
		case hc == qc:
			m.runs.match(qc)
			m.cov.Cover(q)
			q++
			h++
			m.identical++
			m.withoutIndels++
		case hc == Gap:
			m.runs.insert()
			q++
		case qc == Gap:
			m.runs.delete()
			h++
		default:
			m.runs.substitute(hc, qc)
			m.cov.Cover(q)
			q++
			h++
			m.withoutIndels++
		}
		m.alignmentSize++
	}
	if stopped {
		m.runs.stop()
	} else {
		m.runs.finish()
	}

	return q, h
}

// covered returns whether read position q has been merged. Positions
// beyond the end of the read are never covered.
func (m *Merger) covered(q int) bool {
	return q < m.cov.Len() && m.cov.Covered(q)
}

// Span returns the union coordinates of the accepted blocks. The values
// are -1 before any block has been accepted.
func (m *Merger) Span() (queryStart, queryEnd, hitStart, hitEnd int) {
	return m.queryStart, m.queryEnd, m.hitStart, m.hitEnd
}

// Coverage returns the read coverage mask of the session.
func (m *Merger) Coverage() *Coverage { return m.cov }

// Finalize ends the session, sending the accumulated statistics to the
// sinks and returning the alignment summary. If no block was accepted no
// statistics are sent.
//
// Finalize panics if called more than once.
func (m *Merger) Finalize() (*Summary, error) {
	switch m.state {
	case finalized:
		panic("merge: merger finalized twice")
	case failed:
		return nil, m.err
	}
	r := m.runs
	if m.cfg.MaxRunLength > 0 && r.longest > m.cfg.MaxRunLength {
		return nil, m.fail(fmt.Errorf("%w: run of %d in %s longer than %d", ErrRunCapacity, r.longest, m.queryName, m.cfg.MaxRunLength))
	}
	wasEmpty := m.state == empty
	m.state = finalized

	s := &Summary{
		HitName:                    m.hitName,
		HitSize:                    m.hitSize,
		QueryName:                  m.queryName,
		QuerySize:                  m.querySize,
		QueryStart:                 m.queryStart,
		QueryEnd:                   m.queryEnd,
		HitStart:                   m.hitStart,
		HitEnd:                     m.hitEnd,
		IdenticalBases:             m.identical,
		LongestPerfectKmer:         r.longest,
		PerfectKmerSum:             r.sum,
		PerfectKmerCount:           r.count,
		AlignmentSize:              m.alignmentSize,
		AlignmentSizeWithoutIndels: m.withoutIndels,
		KmerSizes:                  append([]int(nil), r.kSizes...),
		KmerCounts:                 append([]int(nil), r.kCounts...),
		Accepted:                   m.accepted,
		Rejected:                   m.rejected,
	}
	if wasEmpty {
		return s, nil
	}

	if m.ref != nil {
		for _, e := range r.events {
			switch e.kind {
			case perfectRun:
				m.ref.AddPerfectKmer(e.length)
			case Insertion, Deletion:
				m.ref.AddIndelError(e.kind, e.length, e.context)
			case Substitution:
				m.ref.AddSubstitutionError(e.context, e.refBase, e.readBase)
			}
		}
	}
	r.events = nil

	if m.set != nil {
		m.set.AddKmerSizeCounts(m.queryName, m.querySize, s.KmerSizes, s.KmerCounts)
		m.set.AddReadWithAlignment()
		m.set.AddReadBestKmer(r.longest)
	}
	if m.ref != nil {
		m.ref.AddAlignmentTotals(m.querySize, m.alignmentSize, m.withoutIndels, m.identical)
		m.ref.AddReadBestKmer(r.longest)
		m.ref.AddCoverage(m.hitStart, m.hitEnd)
	}

	return s, nil
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
