// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"sort"
	"sync/atomic"

	"github.com/cespare/xxhash"
	"github.com/exascience/pargo/sync"
)

// DefaultContextK is the default length of the error context k-mers.
const DefaultContextK = 5

type kmer string

func (k kmer) Hash() uint64 { return xxhash.Sum64([]byte(k)) }

// KmerTable counts k-mers. It is safe for concurrent use.
type KmerTable struct {
	k      int
	counts *sync.Map
}

// NewKmerTable returns a KmerTable for k-mers of length k.
func NewKmerTable(k int) *KmerTable {
	return &KmerTable{k: k, counts: sync.NewMap(0)}
}

// K returns the k-mer length of the table.
func (t *KmerTable) K() int { return t.k }

// Count increments the count of s.
func (t *KmerTable) Count(s string) {
	c, _ := t.counts.LoadOrStore(kmer(s), new(int64))
	atomic.AddInt64(c.(*int64), 1)
}

// CountSuffix counts the trailing k-mer of s. Sequences shorter than k
// are not counted.
func (t *KmerTable) CountSuffix(s string) {
	if len(s) < t.k {
		return
	}
	t.Count(s[len(s)-t.k:])
}

// Get returns the count of s.
func (t *KmerTable) Get(s string) int64 {
	c, ok := t.counts.Load(kmer(s))
	if !ok {
		return 0
	}
	return atomic.LoadInt64(c.(*int64))
}

// KmerCount is a k-mer and its count.
type KmerCount struct {
	Kmer  string
	Count int64
}

// Counts returns the counted k-mers sorted by descending count and then
// lexically.
func (t *KmerTable) Counts() []KmerCount {
	all := t.counts.ParallelReduce(
		func(m map[interface{}]interface{}) interface{} {
			var counts []KmerCount
			for k, v := range m {
				counts = append(counts, KmerCount{Kmer: string(k.(kmer)), Count: atomic.LoadInt64(v.(*int64))})
			}
			return counts
		},
		func(x, y interface{}) interface{} {
			return append(x.([]KmerCount), y.([]KmerCount)...)
		},
	)
	counts, _ := all.([]KmerCount)
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Kmer < counts[j].Kmer
	})
	return counts
}
