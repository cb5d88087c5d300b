// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import "fmt"

// Histogram is a count histogram over non-negative lengths. It grows to
// hold the longest length added. Histogram is not safe for concurrent use.
type Histogram struct {
	counts []int
}

// Add increments the count for length n.
func (h *Histogram) Add(n int) {
	if n < 0 {
		panic(fmt.Sprintf("stats: negative histogram length: %d", n))
	}
	if n >= len(h.counts) {
		t := make([]int, n+1)
		copy(t, h.counts)
		h.counts = t
	}
	h.counts[n]++
}

// Count returns the count for length n.
func (h *Histogram) Count(n int) int {
	if n < 0 || n >= len(h.counts) {
		return 0
	}
	return h.counts[n]
}

// Max returns the longest length added, or -1 if the histogram is empty.
func (h *Histogram) Max() int {
	return len(h.counts) - 1
}

// Total returns the sum of all counts.
func (h *Histogram) Total() int {
	var n int
	for _, c := range h.counts {
		n += c
	}
	return n
}

// Counts returns a copy of the histogram counts indexed by length.
func (h *Histogram) Counts() []int {
	return append([]int(nil), h.counts...)
}

// Cumulative returns the number of entries at least as long as each
// length, indexed by length.
func (h *Histogram) Cumulative() []int {
	c := make([]int, len(h.counts))
	var n int
	for i := len(h.counts) - 1; i >= 0; i-- {
		n += h.counts[i]
		c[i] = n
	}
	return c
}
