// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stats

import "fmt"

// ReadType is the nanopore base calling read type.
type ReadType int

const (
	Template ReadType = iota
	Complement
	TwoD

	NumReadTypes
)

var readTypeNames = [...]string{
	Template:   "Template",
	Complement: "Complement",
	TwoD:       "2D",
}

func (t ReadType) String() string {
	if t < 0 || NumReadTypes <= t {
		return fmt.Sprintf("ReadType(%d)", int(t))
	}
	return readTypeNames[t]
}

// ParseReadType returns the ReadType named by s.
func ParseReadType(s string) (ReadType, error) {
	switch s {
	case "template", "Template":
		return Template, nil
	case "complement", "Complement":
		return Complement, nil
	case "2d", "2D":
		return TwoD, nil
	default:
		return -1, fmt.Errorf("stats: unknown read type %q", s)
	}
}
