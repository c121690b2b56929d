// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"os"
)

// Streams are the standard streams a command reads and writes. Tests
// substitute buffers.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StandardStreams returns the process's stdin, stdout, and stderr.
func StandardStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// terminalFD returns the file descriptor behind w when w is an
// *os.File, or -1.
func terminalFD(value any) int {
	if file, ok := value.(*os.File); ok {
		return int(file.Fd())
	}
	return -1
}
