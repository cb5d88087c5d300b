// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package merge

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Coverage is a mask over read positions marking the positions that
// have already been attributed to a merged alignment block.
type Coverage struct {
	n    int
	mask *bitset.BitSet
}

// NewCoverage returns a Coverage for a read of length n.
func NewCoverage(n int) *Coverage {
	if n < 0 {
		panic(fmt.Sprintf("merge: negative read length: %d", n))
	}
	return &Coverage{n: n, mask: bitset.New(uint(n))}
}

// Len returns the length of the read the mask covers.
func (c *Coverage) Len() int { return c.n }

// Count returns the number of covered positions.
func (c *Coverage) Count() int { return int(c.mask.Count()) }

// Covered returns whether pos has been covered.
func (c *Coverage) Covered(pos int) bool {
	c.check(pos)
	return c.mask.Test(uint(pos))
}

// Cover marks pos as covered. A position may only be covered once.
func (c *Coverage) Cover(pos int) {
	c.check(pos)
	if c.mask.Test(uint(pos)) {
		panic(fmt.Sprintf("merge: position %d covered twice", pos))
	}
	c.mask.Set(uint(pos))
}

func (c *Coverage) check(pos int) {
	if pos < 0 || c.n <= pos {
		panic(fmt.Sprintf("merge: position %d out of range [0,%d)", pos, c.n))
	}
}
