// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package merge

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"
)

// recorder records sink calls in the order they are made.
type recorder struct {
	calls []string
}

func (r *recorder) add(format string, args ...interface{}) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

type refRecorder struct{ *recorder }

func (r refRecorder) AddPerfectKmer(length int) { r.add("perfect %d", length) }
func (r refRecorder) AddIndelError(kind ErrorKind, length int, context string) {
	r.add("%v %d %q", kind, length, context)
}
func (r refRecorder) AddSubstitutionError(context string, refBase, readBase byte) {
	r.add("substitution %q %c>%c", context, refBase, readBase)
}
func (r refRecorder) AddAlignmentTotals(querySize, alignedSize, alignedSizeWithoutIndels, identical int) {
	r.add("totals %d %d %d %d", querySize, alignedSize, alignedSizeWithoutIndels, identical)
}
func (r refRecorder) AddReadBestKmer(length int) { r.add("ref best %d", length) }
func (r refRecorder) AddCoverage(start, end int) { r.add("coverage %d %d", start, end) }

type setRecorder struct{ *recorder }

func (r setRecorder) AddKmerSizeCounts(read string, querySize int, kSizes, counts []int) {
	r.add("kcounts %s %d %v %v", read, querySize, kSizes, counts)
}
func (r setRecorder) AddReadWithAlignment() { r.add("aligned") }
func (r setRecorder) AddReadBestKmer(length int) { r.add("set best %d", length) }

func newRecordingMerger(t *testing.T, readLength int, cfg Config) (*Merger, *recorder) {
	rec := &recorder{}
	m, err := New(readLength, refRecorder{rec}, setRecorder{rec}, cfg)
	if err != nil {
		t.Fatalf("unexpected error creating merger: %v", err)
	}
	return m, rec
}

func block(query, hit string, queryStart, hitStart, querySize int) Block {
	return Block{
		QueryName:         "read",
		QuerySequence:     []byte(query),
		QueryStart:        queryStart,
		QuerySequenceSize: querySize,
		HitName:           "ref",
		HitSequence:       []byte(hit),
		HitStart:          hitStart,
		HitSequenceSize:   1000,
	}
}

func mustAdd(t *testing.T, m *Merger, b Block) bool {
	ok, err := m.Add(b)
	if err != nil {
		t.Fatalf("unexpected error adding block %v: %v", &b, err)
	}
	return ok
}

func mustFinalize(t *testing.T, m *Merger) *Summary {
	s, err := m.Finalize()
	if err != nil {
		t.Fatalf("unexpected error finalizing: %v", err)
	}
	return s
}

const noKmers = "[15 17 19 21 23 25] [0 0 0 0 0 0]"

func TestIdentical(t *testing.T) {
	m, rec := newRecordingMerger(t, 4, Config{})
	if !mustAdd(t, m, block("ACGT", "ACGT", 0, 0, 4)) {
		t.Fatal("first block rejected")
	}
	s := mustFinalize(t, m)
	if s.IdenticalBases != 4 || s.AlignmentSize != 4 || s.AlignmentSizeWithoutIndels != 4 || s.LongestPerfectKmer != 4 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if s.QuerySpan() != 4 || s.HitSpan() != 4 {
		t.Errorf("unexpected spans: query=%d hit=%d", s.QuerySpan(), s.HitSpan())
	}
	if s.AlignmentIdentity() != 100 {
		t.Errorf("unexpected identity: %v", s.AlignmentIdentity())
	}
	want := []string{
		"perfect 4",
		"kcounts read 4 " + noKmers,
		"aligned",
		"set best 4",
		"totals 4 4 4 4",
		"ref best 4",
		"coverage 0 4",
	}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("unexpected sink calls:\ngot: %q\nwant:%q", rec.calls, want)
	}
}

func TestIdenticalMixedCase(t *testing.T) {
	m, _ := newRecordingMerger(t, 8, Config{})
	mustAdd(t, m, block("ACGTacgt", "acgtACGT", 0, 0, 8))
	s := mustFinalize(t, m)
	if s.IdenticalBases != 8 || s.LongestPerfectKmer != 8 {
		t.Errorf("case sensitive comparison: %+v", s)
	}
}

func TestInsertion(t *testing.T) {
	m, rec := newRecordingMerger(t, 5, Config{})
	mustAdd(t, m, block("ACTGT", "AC-GT", 0, 0, 5))
	s := mustFinalize(t, m)
	if s.AlignmentSizeWithoutIndels != 4 || s.AlignmentSize != 5 || s.IdenticalBases != 4 {
		t.Errorf("unexpected summary: %+v", s)
	}
	want := []string{
		"perfect 2",
		`insertion 1 "AC"`,
		"perfect 2",
		"kcounts read 5 " + noKmers,
		"aligned",
		"set best 2",
		"totals 5 5 4 4",
		"ref best 2",
		"coverage 0 4",
	}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("unexpected sink calls:\ngot: %q\nwant:%q", rec.calls, want)
	}
}

func TestLongInsertion(t *testing.T) {
	m, rec := newRecordingMerger(t, 6, Config{})
	mustAdd(t, m, block("ACTTGT", "AC--GT", 0, 0, 6))
	mustFinalize(t, m)
	var n int
	for _, c := range rec.calls {
		if strings.HasPrefix(c, "insertion") {
			n++
			if c != `insertion 2 "AC"` {
				t.Errorf("unexpected insertion: %s", c)
			}
		}
	}
	if n != 1 {
		t.Errorf("unexpected number of insertions: got:%d want:1", n)
	}
}

func TestDeletion(t *testing.T) {
	m, rec := newRecordingMerger(t, 4, Config{})
	mustAdd(t, m, block("AC-TT", "ACGTT", 0, 0, 4))
	s := mustFinalize(t, m)
	if s.AlignmentSize != 5 || s.AlignmentSizeWithoutIndels != 4 || s.IdenticalBases != 4 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if s.HitEnd != 5 || s.QueryEnd != 4 {
		t.Errorf("unexpected ends: query=%d hit=%d", s.QueryEnd, s.HitEnd)
	}
	if rec.calls[1] != `deletion 1 "AC"` {
		t.Errorf("unexpected deletion call: %s", rec.calls[1])
	}
}

func TestInsertionThenDeletion(t *testing.T) {
	m, rec := newRecordingMerger(t, 5, Config{})
	mustAdd(t, m, block("ACT-GT", "AC-AGT", 0, 0, 5))
	mustFinalize(t, m)
	want := []string{
		"perfect 2",
		`insertion 1 "AC"`,
		`deletion 1 ""`,
		"perfect 2",
	}
	if !reflect.DeepEqual(rec.calls[:len(want)], want) {
		t.Errorf("unexpected sink calls:\ngot: %q\nwant:%q", rec.calls[:len(want)], want)
	}
}

func TestSubstitution(t *testing.T) {
	m, rec := newRecordingMerger(t, 4, Config{})
	mustAdd(t, m, block("ACAT", "ACGT", 0, 0, 4))
	s := mustFinalize(t, m)
	if s.IdenticalBases != 3 || s.AlignmentSizeWithoutIndels != 4 || s.AlignmentSize != 4 {
		t.Errorf("unexpected summary: %+v", s)
	}
	want := []string{
		"perfect 2",
		`substitution "AC" G>A`,
		"perfect 1",
	}
	if !reflect.DeepEqual(rec.calls[:len(want)], want) {
		t.Errorf("unexpected sink calls:\ngot: %q\nwant:%q", rec.calls[:len(want)], want)
	}
	if m.Coverage().Count() != 4 {
		t.Errorf("substituted base not covered: got:%d want:4", m.Coverage().Count())
	}
}

func TestContextLength(t *testing.T) {
	m, rec := newRecordingMerger(t, 6, Config{ContextLength: 2})
	mustAdd(t, m, block("ACGTAT", "ACGTGT", 0, 0, 6))
	mustFinalize(t, m)
	if rec.calls[1] != `substitution "GT" G>A` {
		t.Errorf("unexpected truncated context: %s", rec.calls[1])
	}
}

func TestSkipForward(t *testing.T) {
	const read = "ACGTTGCAAGTCCATGGACT"
	m, _ := newRecordingMerger(t, len(read), Config{})
	mustAdd(t, m, block(read[:10], read[:10], 0, 0, len(read)))
	if !mustAdd(t, m, block(read[6:16], read[6:16], 6, 6, len(read))) {
		t.Fatal("overlapping block rejected")
	}
	s := mustFinalize(t, m)
	if s.IdenticalBases != 16 {
		t.Errorf("overlap double counted: got:%d want:16", s.IdenticalBases)
	}
	if s.AlignmentSize != 16 {
		t.Errorf("unexpected alignment size: got:%d want:16", s.AlignmentSize)
	}
	if s.QueryStart != 0 || s.QueryEnd != 16 {
		t.Errorf("unexpected query span: [%d,%d)", s.QueryStart, s.QueryEnd)
	}
	if s.LongestPerfectKmer != 10 || s.PerfectKmerCount != 2 || s.PerfectKmerSum != 16 {
		t.Errorf("unexpected runs: %+v", s)
	}
	if m.Coverage().Count() != 16 {
		t.Errorf("unexpected coverage: got:%d want:16", m.Coverage().Count())
	}
}

func TestSkipForwardThroughGaps(t *testing.T) {
	m, _ := newRecordingMerger(t, 13, Config{})
	mustAdd(t, m, block("ACGTACGT", "ACGTACGT", 0, 0, 13))
	// The leading covered columns include a deletion
	// and an insertion which must move the cursors.
	mustAdd(t, m, block("AC-GTTTAC", "ACA-TTTAC", 5, 5, 13))
	s := mustFinalize(t, m)
	if s.QueryEnd != 13 || s.HitEnd != 13 {
		t.Errorf("unexpected ends: query=%d hit=%d", s.QueryEnd, s.HitEnd)
	}
	if s.IdenticalBases != 13 || s.AlignmentSize != 13 {
		t.Errorf("unexpected counts: identical=%d size=%d", s.IdenticalBases, s.AlignmentSize)
	}
}

func TestSkipForwardGapGap(t *testing.T) {
	m, _ := newRecordingMerger(t, 5, Config{})
	mustAdd(t, m, block("ACGT", "ACGT", 0, 0, 5))
	// A gap/gap column inside the covered prefix
	// must not move the query cursor.
	if !mustAdd(t, m, block("A-CGTA", "A-CGTA", 0, 0, 5)) {
		t.Fatal("overlapping block rejected")
	}
	s := mustFinalize(t, m)
	if s.QueryEnd != 5 || s.HitEnd != 5 {
		t.Errorf("unexpected ends: query=%d hit=%d", s.QueryEnd, s.HitEnd)
	}
	if s.IdenticalBases != 5 || s.AlignmentSize != 5 {
		t.Errorf("unexpected counts: identical=%d size=%d", s.IdenticalBases, s.AlignmentSize)
	}
	if m.Coverage().Count() != 5 {
		t.Errorf("unexpected coverage: got:%d want:5", m.Coverage().Count())
	}
}

func TestStopAtCovered(t *testing.T) {
	m, _ := newRecordingMerger(t, 20, Config{})
	mustAdd(t, m, block("AAAAA", "AAAAA", 10, 10, 20))
	if !mustAdd(t, m, block("CCCCCCCCCCCCCCC", "CCCCCCCCCCCCCCC", 0, 0, 20)) {
		t.Fatal("block rejected")
	}
	s := mustFinalize(t, m)
	if s.IdenticalBases != 15 {
		t.Errorf("walk did not stop at covered position: got:%d want:15", s.IdenticalBases)
	}
	if s.QueryStart != 0 || s.QueryEnd != 15 {
		t.Errorf("unexpected query span: [%d,%d)", s.QueryStart, s.QueryEnd)
	}
	if s.LongestPerfectKmer != 5 || s.PerfectKmerCount != 1 || s.PerfectKmerSum != 5 {
		t.Errorf("run open at covered position recorded: %+v", s)
	}
}

func TestStopAtCoveredDropsKmers(t *testing.T) {
	m, rec := newRecordingMerger(t, 40, Config{})
	mustAdd(t, m, block("AAAAA", "AAAAA", 20, 20, 40))
	mustAdd(t, m, block(strings.Repeat("C", 20), strings.Repeat("C", 20), 0, 0, 40))
	s := mustFinalize(t, m)
	if s.IdenticalBases != 25 || s.AlignmentSize != 25 {
		t.Errorf("unexpected counts: identical=%d size=%d", s.IdenticalBases, s.AlignmentSize)
	}
	want := []string{
		"perfect 5",
		"kcounts read 40 " + noKmers,
		"aligned",
		"set best 5",
	}
	if len(rec.calls) < len(want) || !reflect.DeepEqual(rec.calls[:len(want)], want) {
		t.Errorf("unexpected sink calls:\ngot: %q\nwant:%q", rec.calls, want)
	}
}

func TestStopAtCoveredFlushesIndels(t *testing.T) {
	m, rec := newRecordingMerger(t, 12, Config{})
	mustAdd(t, m, block("ACGT", "ACGT", 8, 8, 12))
	mustAdd(t, m, block("ACGTACGTACGT", "ACG--CGTACGT", 0, 0, 12))
	s := mustFinalize(t, m)
	if s.LongestPerfectKmer != 4 || s.PerfectKmerCount != 2 || s.PerfectKmerSum != 7 {
		t.Errorf("unexpected runs: %+v", s)
	}
	if rec.calls[2] != `insertion 2 "ACG"` {
		t.Errorf("insertion before covered position not recorded: %q", rec.calls)
	}
}

func TestRejectFar(t *testing.T) {
	m, rec := newRecordingMerger(t, 20, Config{})
	mustAdd(t, m, block("ACGTACGTAC", "ACGTACGTAC", 0, 0, 20))
	qs, qe, hs, he := m.Span()
	if mustAdd(t, m, block("ACGTACGTAC", "ACGTACGTAC", 10, 1000, 20)) {
		t.Fatal("distant block accepted")
	}
	if mustAdd(t, m, block("ACGTACGTAC", "ACGTACGTAC", 10, 15, 20)) {
		t.Fatal("off-diagonal block accepted")
	}
	nqs, nqe, nhs, nhe := m.Span()
	if nqs != qs || nqe != qe || nhs != hs || nhe != he {
		t.Errorf("rejected block changed span: got:[%d,%d) [%d,%d) want:[%d,%d) [%d,%d)",
			nqs, nqe, nhs, nhe, qs, qe, hs, he)
	}
	s := mustFinalize(t, m)
	if s.IdenticalBases != 10 || s.AlignmentSize != 10 {
		t.Errorf("rejected block changed counts: %+v", s)
	}
	if s.Accepted != 1 || s.Rejected != 2 {
		t.Errorf("unexpected block counts: accepted=%d rejected=%d", s.Accepted, s.Rejected)
	}
	if rec.calls[0] != "perfect 10" || len(rec.calls) != 7 {
		t.Errorf("unexpected sink calls: %q", rec.calls)
	}
}

func TestRejectBeforeStart(t *testing.T) {
	m, _ := newRecordingMerger(t, 20, Config{})
	mustAdd(t, m, block("ACGTACGTAC", "ACGTACGTAC", 10, 5000, 20))
	if mustAdd(t, m, block("ACGTACGTAC", "ACGTACGTAC", 0, 100, 20)) {
		t.Error("block far before overall hit start accepted")
	}
}

func TestAcceptOnDiagonal(t *testing.T) {
	m, _ := newRecordingMerger(t, 40, Config{})
	mustAdd(t, m, block("ACGTACGTAC", "ACGTACGTAC", 0, 100, 40))
	// Query offset 20, hit offset 22: within 20%.
	if !mustAdd(t, m, block("ACGTACGTAC", "ACGTACGTAC", 20, 122, 40)) {
		t.Error("block on diagonal rejected")
	}
	qs, qe, hs, he := m.Span()
	if qs != 0 || qe != 30 || hs != 100 || he != 132 {
		t.Errorf("unexpected span: [%d,%d) [%d,%d)", qs, qe, hs, he)
	}
}

func TestSpanMonotonic(t *testing.T) {
	const read = "ACGTTGCAAGTCCATGGACTTGCA"
	m, _ := newRecordingMerger(t, len(read), Config{})
	last := 0
	for _, start := range []int{8, 0, 4, 16, 12} {
		mustAdd(t, m, block(read[start:start+8], read[start:start+8], start, start, len(read)))
		qs, qe, _, _ := m.Span()
		if qe-qs < last {
			t.Errorf("query span decreased: got:%d previous:%d", qe-qs, last)
		}
		last = qe - qs
	}
	s := mustFinalize(t, m)
	if s.IdenticalBases > len(read) || m.Coverage().Count() != s.AlignmentSizeWithoutIndels {
		t.Errorf("coverage inconsistent with counts: covered=%d identical=%d", m.Coverage().Count(), s.IdenticalBases)
	}
}

func TestKmerCounts(t *testing.T) {
	a := strings.Repeat("A", 20)
	c := strings.Repeat("C", 16)
	query := a + "G" + c + "G" + "TTTT"
	hit := a + "T" + c + "T" + "TTTT"
	m, _ := newRecordingMerger(t, len(query), Config{})
	mustAdd(t, m, block(query, hit, 0, 0, len(query)))
	s := mustFinalize(t, m)
	want := []int{2, 1, 1, 0, 0, 0}
	if !reflect.DeepEqual(s.KmerCounts, want) {
		t.Errorf("unexpected k counts: got:%v want:%v", s.KmerCounts, want)
	}
	for i := 1; i < len(s.KmerCounts); i++ {
		if s.KmerCounts[i] > s.KmerCounts[i-1] {
			t.Errorf("k counts not monotonic: %v", s.KmerCounts)
		}
	}
	if s.PerfectKmerCount != 3 || s.PerfectKmerSum != 40 {
		t.Errorf("unexpected run totals: count=%d sum=%d", s.PerfectKmerCount, s.PerfectKmerSum)
	}
	if got := s.MeanPerfectKmer(); got != 40.0/3 {
		t.Errorf("unexpected mean run: %v", got)
	}
}

func TestCustomKmerSizes(t *testing.T) {
	m, rec := newRecordingMerger(t, 6, Config{KmerSizes: []int{2, 4}})
	mustAdd(t, m, block("ACGTAC", "ACGTAC", 0, 0, 6))
	s := mustFinalize(t, m)
	if !reflect.DeepEqual(s.KmerCounts, []int{1, 1}) {
		t.Errorf("unexpected k counts: %v", s.KmerCounts)
	}
	if rec.calls[1] != "kcounts read 6 [2 4] [1 1]" {
		t.Errorf("unexpected k count call: %s", rec.calls[1])
	}
}

func TestNameMismatch(t *testing.T) {
	m, rec := newRecordingMerger(t, 20, Config{})
	mustAdd(t, m, block("ACAT", "ACGT", 0, 0, 20))
	b := block("ACGT", "ACGT", 4, 4, 20)
	b.HitName = "other"
	_, err := m.Add(b)
	if !errors.Is(err, ErrNameMismatch) {
		t.Fatalf("unexpected error for hit name mismatch: %v", err)
	}
	_, err = m.Finalize()
	if !errors.Is(err, ErrNameMismatch) {
		t.Errorf("error not retained: %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("failed session updated sinks: %q", rec.calls)
	}

	m, _ = newRecordingMerger(t, 20, Config{})
	mustAdd(t, m, block("ACGT", "ACGT", 0, 0, 20))
	b = block("ACGT", "ACGT", 4, 4, 20)
	b.QueryName = "other"
	_, err = m.Add(b)
	if !errors.Is(err, ErrNameMismatch) {
		t.Errorf("unexpected error for query name mismatch: %v", err)
	}
}

func TestBlockBounds(t *testing.T) {
	m, rec := newRecordingMerger(t, 4, Config{})
	_, err := m.Add(block("ACGT", "ACGT", 2, 0, 4))
	if !errors.Is(err, ErrBlockBounds) {
		t.Errorf("unexpected error for block beyond read: %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("failed session updated sinks: %q", rec.calls)
	}
}

func TestRejectBeforeBounds(t *testing.T) {
	m, _ := newRecordingMerger(t, 20, Config{})
	mustAdd(t, m, block("ACGTACGTAC", "ACGTACGTAC", 0, 0, 20))
	// Beyond the read end, but far enough from the
	// merged hit span to be rejected.
	ok, err := m.Add(block("ACGTACGTAC", "ACGTACGTAC", 15, 5000, 20))
	if err != nil {
		t.Fatalf("unexpected error for rejected block: %v", err)
	}
	if ok {
		t.Fatal("distant block accepted")
	}
	s := mustFinalize(t, m)
	if s.Accepted != 1 || s.Rejected != 1 {
		t.Errorf("unexpected block counts: accepted=%d rejected=%d", s.Accepted, s.Rejected)
	}
	if s.IdenticalBases != 10 {
		t.Errorf("rejected block changed counts: %+v", s)
	}
}

func TestTrailingDeletionAtReadEnd(t *testing.T) {
	m, rec := newRecordingMerger(t, 4, Config{})
	mustAdd(t, m, block("ACGT--", "ACGTAA", 0, 0, 4))
	s := mustFinalize(t, m)
	if s.HitEnd != 6 || s.AlignmentSize != 6 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if rec.calls[1] != `deletion 2 "ACGT"` {
		t.Errorf("trailing deletion not recorded: %q", rec.calls)
	}
}

func TestRunCapacity(t *testing.T) {
	m, rec := newRecordingMerger(t, 4, Config{MaxRunLength: 3})
	mustAdd(t, m, block("ACGT", "ACGT", 0, 0, 4))
	_, err := m.Finalize()
	if !errors.Is(err, ErrRunCapacity) {
		t.Errorf("unexpected error for long run: %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("failed session updated sinks: %q", rec.calls)
	}
}

func TestConfig(t *testing.T) {
	for _, cfg := range []Config{
		{KmerSizes: []int{17, 15}},
		{KmerSizes: []int{15, 15}},
		{KmerSizes: []int{0, 15}},
		{MaxRunLength: -1},
		{ContextLength: -1},
	} {
		_, err := New(10, nil, nil, cfg)
		if !errors.Is(err, ErrConfig) {
			t.Errorf("expected configuration error for %+v: got:%v", cfg, err)
		}
	}
}

func TestEmptyFinalize(t *testing.T) {
	m, rec := newRecordingMerger(t, 4, Config{})
	s := mustFinalize(t, m)
	if s.QuerySpan() != 0 || s.AlignmentSize != 0 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if len(rec.calls) != 0 {
		t.Errorf("empty session updated sinks: %q", rec.calls)
	}
	if got := s.AlignmentIdentity(); !math.IsNaN(got) {
		t.Errorf("expected NaN identity for empty alignment: got:%v", got)
	}
}

func TestNilSinks(t *testing.T) {
	m, err := New(4, nil, nil, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mustAdd(t, m, block("ACAT", "ACGT", 0, 0, 4))
	s := mustFinalize(t, m)
	if s.IdenticalBases != 3 {
		t.Errorf("unexpected identical bases: %d", s.IdenticalBases)
	}
}

func panics(fn func()) (panicked bool) {
	defer func() {
		panicked = recover() != nil
	}()
	fn()
	return false
}

func TestStateOrder(t *testing.T) {
	m, _ := newRecordingMerger(t, 4, Config{})
	mustAdd(t, m, block("ACGT", "ACGT", 0, 0, 4))
	mustFinalize(t, m)
	if !panics(func() { m.Add(block("ACGT", "ACGT", 0, 0, 4)) }) {
		t.Error("expected panic for add after finalize")
	}
	if !panics(func() { m.Finalize() }) {
		t.Error("expected panic for second finalize")
	}
}
