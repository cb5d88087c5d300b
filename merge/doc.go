// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package merge reduces the alignment blocks of a read against a reference
// to a single non-overlapping alignment and classifies each aligned base.
//
// Blocks are added to a Merger in the order they are reported by the
// aligner. The first block is always accepted; each following block is
// compared with the union of the blocks accepted so far and dropped if its
// position on the reference is too far from the union or its diagonal is
// inconsistent with the first block. Read positions already claimed by an
// earlier block are skipped, so no base is counted twice.
//
// Every walked column is a match, a substitution (two unequal bases), an
// insertion (gap in the reference) or a deletion (gap in the read).
// Contiguous matches form perfect-match runs, and the bases of the run
// preceding an error are reported with the error as its context.
package merge
