// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// maxSecretSize bounds how much is read from a token file.
const maxSecretSize = 64 << 10

// ReadFromPath reads a secret from a file, or the first line of stdin
// when path is "-". Surrounding whitespace is trimmed; an empty result
// is an error.
func ReadFromPath(path string) (*Buffer, error) {
	if path == "-" {
		return ReadLine(os.Stdin)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading secret: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSecretSize))
	if err != nil {
		clear(data)
		return nil, fmt.Errorf("reading secret from %s: %w", path, err)
	}
	return fromRaw(data)
}

// ReadLine reads the first line of reader as a secret.
func ReadLine(reader io.Reader) (*Buffer, error) {
	scanner := bufio.NewScanner(reader)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading secret: %w", err)
		}
		return nil, fmt.Errorf("secret input is empty")
	}
	return fromRaw(scanner.Bytes())
}

// ReadFromTerminal prints prompt to output and reads a line from the
// terminal on fd with echo disabled.
func ReadFromTerminal(fd int, prompt string, output io.Writer) (*Buffer, error) {
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("secret: file descriptor %d is not a terminal", fd)
	}
	fmt.Fprint(output, prompt)
	data, err := term.ReadPassword(fd)
	fmt.Fprintln(output)
	if err != nil {
		clear(data)
		return nil, fmt.Errorf("reading secret from terminal: %w", err)
	}
	return fromRaw(data)
}

// fromRaw trims data, moves it into a Buffer, and zeros every byte of
// data including the trimmed whitespace.
func fromRaw(data []byte) (*Buffer, error) {
	defer clear(data)
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("secret is empty")
	}
	return NewFromBytes(trimmed)
}
