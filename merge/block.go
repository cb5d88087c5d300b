// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package merge

import "fmt"

// Gap is the alignment gap character.
const Gap = '-'

// Block is a single contiguous pairwise alignment between a substring of
// a read (the query) and a substring of a reference (the hit).
//
// HitSequence and QuerySequence are the gapped aligned strings. A gap in
// HitSequence is an insertion in the query and a gap in QuerySequence is
// a deletion from the reference.
type Block struct {
	HitName           string
	HitSequence       []byte
	HitStart          int
	HitSequenceSize   int
	QueryName         string
	QuerySequence     []byte
	QueryStart        int
	QuerySequenceSize int
}

// columns returns the number of aligned columns that can be walked.
func (b *Block) columns() int {
	if len(b.HitSequence) < len(b.QuerySequence) {
		return len(b.HitSequence)
	}
	return len(b.QuerySequence)
}

// queryBases returns the number of query bases consumed by the walkable
// columns of the block.
func (b *Block) queryBases() int {
	var n int
	for _, c := range b.QuerySequence[:b.columns()] {
		if c != Gap {
			n++
		}
	}
	return n
}

func (b *Block) String() string {
	return fmt.Sprintf("%s:%d %s:%d (%d columns)", b.QueryName, b.QueryStart, b.HitName, b.HitStart, b.columns())
}

// upper returns the upper case of an ASCII letter.
func upper(c byte) byte {
	if 'a' <= c && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
