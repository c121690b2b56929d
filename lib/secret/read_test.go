// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadFromPath(t *testing.T) {
	tempDir := t.TempDir()
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"plain value", "tok-123", "tok-123"},
		{"trailing newline", "tok-123\n", "tok-123"},
		{"surrounding whitespace", "  tok-123 \n", "tok-123"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(tempDir, test.name)
			if err := os.WriteFile(path, []byte(test.content), 0o600); err != nil {
				t.Fatalf("writing test file: %v", err)
			}
			buffer, err := ReadFromPath(path)
			if err != nil {
				t.Fatalf("ReadFromPath: %v", err)
			}
			defer buffer.Close()
			if buffer.String() != test.expected {
				t.Errorf("ReadFromPath = %q, want %q", buffer.String(), test.expected)
			}
		})
	}
}

func TestReadFromPathErrors(t *testing.T) {
	tempDir := t.TempDir()
	empty := filepath.Join(tempDir, "empty")
	whitespace := filepath.Join(tempDir, "whitespace")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(whitespace, []byte(" \n\t"), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{filepath.Join(tempDir, "missing"), empty, whitespace} {
		if _, err := ReadFromPath(path); err == nil {
			t.Errorf("ReadFromPath(%s): expected error", filepath.Base(path))
		}
	}
}

func TestReadLine(t *testing.T) {
	buffer, err := ReadLine(strings.NewReader("first-line\nsecond-line\n"))
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	defer buffer.Close()
	if buffer.String() != "first-line" {
		t.Fatalf("ReadLine = %q, want first-line", buffer.String())
	}

	if _, err := ReadLine(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestReadFromTerminalRejectsNonTerminal(t *testing.T) {
	file, err := os.CreateTemp(t.TempDir(), "not-a-tty")
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	var output strings.Builder
	if _, err := ReadFromTerminal(int(file.Fd()), "Token: ", &output); err == nil {
		t.Fatal("expected error for non-terminal fd")
	}
}
