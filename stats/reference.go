// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import (
	"fmt"
	"sort"
)

// Reference holds the per read type statistics for a reference sequence.
type Reference struct {
	ID   int
	Name string
	Size int

	stats [NumReadTypes]*Stats
}

// Stats returns the statistics for read type t.
func (r *Reference) Stats(t ReadType) *Stats {
	if t < 0 || NumReadTypes <= t {
		panic(fmt.Sprintf("stats: invalid read type: %v", t))
	}
	return r.stats[t]
}

// References is a set of references. References are added before analysis
// begins; only the per reference Stats may be mutated concurrently.
type References struct {
	k      int
	refs   []*Reference
	byName map[string]*Reference
}

// NewReferences returns an empty reference set counting error contexts
// in k-mers of length k.
func NewReferences(k int) *References {
	return &References{k: k, byName: make(map[string]*Reference)}
}

// Add adds a reference with the given name and length.
func (r *References) Add(name string, size int) (*Reference, error) {
	if _, ok := r.byName[name]; ok {
		return nil, fmt.Errorf("stats: duplicate reference name: %q", name)
	}
	ref := &Reference{ID: len(r.refs), Name: name, Size: size}
	for t := range ref.stats {
		ref.stats[t] = NewStats(ReadType(t), size, r.k)
	}
	r.refs = append(r.refs, ref)
	r.byName[name] = ref
	return ref, nil
}

// Get returns the reference with the given name.
func (r *References) Get(name string) (*Reference, bool) {
	ref, ok := r.byName[name]
	return ref, ok
}

// All returns all references in the order they were added.
func (r *References) All() []*Reference { return r.refs }

// Len returns the number of references.
func (r *References) Len() int { return len(r.refs) }

func sortSubstitutions(subs []Substitution) {
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].Ref != subs[j].Ref {
			return subs[i].Ref < subs[j].Ref
		}
		return subs[i].Read < subs[j].Read
	})
}
