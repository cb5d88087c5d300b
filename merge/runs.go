// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package merge

// perfectRun marks a buffered completed perfect-match run event.
const perfectRun ErrorKind = -1

// runs tracks the open perfect-match run and the open insertion or
// deletion run of a merge session and accumulates the completed runs.
type runs struct {
	// run holds the bases of the current perfect-match
	// run. It is cleared after every non-match column,
	// while runLen is cleared when the run is flushed.
	run    []byte
	runLen int

	// context is the perfect-match sequence preceding
	// the open insertion or deletion run.
	context    string
	contextLen int

	insertion int
	deletion  int

	longest int
	sum     int
	count   int

	kSizes  []int
	kCounts []int

	// events is the ordered list of sink updates held
	// until the session is finalized.
	events []event
}

func newRuns(kSizes []int, contextLen int) *runs {
	return &runs{
		kSizes:     kSizes,
		kCounts:    make([]int, len(kSizes)),
		contextLen: contextLen,
	}
}

// reset clears the transient run state at the start of a block.
func (r *runs) reset() {
	r.run = r.run[:0]
	r.runLen = 0
	r.context = ""
	r.insertion = 0
	r.deletion = 0
}

// match extends the current perfect-match run with c.
func (r *runs) match(c byte) {
	r.flushIndels()
	r.runLen++
	r.run = append(r.run, c)
}

// flushPerfectRun records the current perfect-match run if one is open.
func (r *runs) flushPerfectRun() {
	if r.runLen == 0 {
		return
	}
	for i, k := range r.kSizes {
		if r.runLen >= k {
			r.kCounts[i]++
		}
	}
	r.sum += r.runLen
	r.count++
	if r.runLen > r.longest {
		r.longest = r.runLen
	}
	r.events = append(r.events, event{kind: perfectRun, length: r.runLen})
	r.runLen = 0
}

// flushIndels records the open insertion or deletion run if there is one.
func (r *runs) flushIndels() {
	if r.deletion > 0 {
		r.events = append(r.events, event{kind: Deletion, length: r.deletion, context: r.context})
		r.deletion = 0
	}
	if r.insertion > 0 {
		r.events = append(r.events, event{kind: Insertion, length: r.insertion, context: r.context})
		r.insertion = 0
	}
	r.context = ""
}

// insert extends the open insertion run, starting one if necessary.
func (r *runs) insert() {
	r.flushPerfectRun()
	if r.insertion == 0 {
		r.flushIndels()
		r.context = r.currentContext()
	}
	r.insertion++
	r.run = r.run[:0]
}

// delete extends the open deletion run, starting one if necessary.
func (r *runs) delete() {
	r.flushPerfectRun()
	if r.deletion == 0 {
		r.flushIndels()
		r.context = r.currentContext()
	}
	r.deletion++
	r.run = r.run[:0]
}

// substitute records a single base substitution of the reference base
// ref by the read base read.
func (r *runs) substitute(ref, read byte) {
	r.flushPerfectRun()
	r.flushIndels()
	r.context = r.currentContext()
	r.events = append(r.events, event{kind: Substitution, length: 1, context: r.context, refBase: ref, readBase: read})
	r.run = r.run[:0]
}

// finish flushes all open runs at the end of a block.
func (r *runs) finish() {
	r.flushPerfectRun()
	r.flushIndels()
	r.run = r.run[:0]
}

// stop ends a block walk that reached an already merged position.
// The open perfect-match run is discarded; only a run reaching the
// last column of a block is recorded.
func (r *runs) stop() {
	r.runLen = 0
	r.flushIndels()
	r.run = r.run[:0]
}

// currentContext returns the bases of the current perfect-match run,
// truncated to the trailing contextLen bases if contextLen is positive.
func (r *runs) currentContext() string {
	c := r.run
	if r.contextLen > 0 && len(c) > r.contextLen {
		c = c[len(c)-r.contextLen:]
	}
	return string(c)
}
