// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package merge

// ErrorKind is the class of an alignment error.
type ErrorKind int

const (
	Insertion ErrorKind = iota
	Deletion
	Substitution
)

func (k ErrorKind) String() string {
	switch k {
	case Insertion:
		return "insertion"
	case Deletion:
		return "deletion"
	case Substitution:
		return "substitution"
	default:
		return "unknown"
	}
}

// ReferenceSink receives statistics for a single reference and read type.
// Implementations must be safe for concurrent use since a ReferenceSink
// is shared by all sessions aligning reads of the same type to the same
// reference.
type ReferenceSink interface {
	// AddPerfectKmer records a completed perfect-match run.
	AddPerfectKmer(length int)
	// AddIndelError records an insertion or deletion run of the given
	// length preceded by the context perfect-match sequence.
	AddIndelError(kind ErrorKind, length int, context string)
	// AddSubstitutionError records a single base substitution.
	AddSubstitutionError(context string, refBase, readBase byte)
	// AddAlignmentTotals records the totals of a finished read.
	AddAlignmentTotals(querySize, alignedSize, alignedSizeWithoutIndels, identical int)
	// AddReadBestKmer records the longest perfect-match run of a read.
	AddReadBestKmer(length int)
	// AddCoverage records the reference span [start, end) covered by
	// a merged alignment.
	AddCoverage(start, end int)
}

// ReadSetSink receives statistics for a set of reads of a single type.
// Implementations must be safe for concurrent use.
type ReadSetSink interface {
	// AddKmerSizeCounts records the number of perfect-match runs of the
	// read that reach each of the k sizes.
	AddKmerSizeCounts(read string, querySize int, kSizes, counts []int)
	// AddReadWithAlignment records that a read had an alignment.
	AddReadWithAlignment()
	// AddReadBestKmer records the longest perfect-match run of a read.
	AddReadBestKmer(length int)
}

// event is a buffered reference sink update.
type event struct {
	kind     ErrorKind
	length   int
	context  string
	refBase  byte
	readBase byte
}
