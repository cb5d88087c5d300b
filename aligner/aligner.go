// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package aligner provides command construction for the long read aligners
// that produce the SAM alignments analysed by nanook.
package aligner

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
)

var ErrMissingRequired = errors.New("aligner: missing required argument")

// Builder is an aligner command builder.
type Builder interface {
	BuildCommand() (*exec.Cmd, error)
}

// Run builds and runs the command described by b. The command's standard
// output and standard error are written to stdout and stderr if they are
// not nil.
func Run(b Builder, stdout, stderr io.Writer) error {
	cmd, err := b.BuildCommand()
	if err != nil {
		return err
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	err = cmd.Run()
	if err != nil {
		return fmt.Errorf("aligner: failed to run %s: %w", cmd.Path, err)
	}
	return nil
}
