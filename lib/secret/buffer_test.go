// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import "testing"

func TestNewRejectsNonPositiveSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := New(size); err == nil {
			t.Errorf("New(%d): expected error", size)
		}
	}
}

func TestNewIsZeroFilled(t *testing.T) {
	buffer, err := New(32)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer buffer.Close()

	if buffer.Len() != 32 {
		t.Fatalf("Len = %d, want 32", buffer.Len())
	}
	for index, value := range buffer.Bytes() {
		if value != 0 {
			t.Fatalf("byte %d = %d, want 0", index, value)
		}
	}
}

func TestNewFromBytesZerosSource(t *testing.T) {
	source := []byte("bearer-token-value")
	buffer, err := NewFromBytes(source)
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	defer buffer.Close()

	if buffer.String() != "bearer-token-value" {
		t.Fatalf("String = %q", buffer.String())
	}
	for index, value := range source {
		if value != 0 {
			t.Fatalf("source byte %d not zeroed", index)
		}
	}
	if _, err := NewFromBytes(nil); err == nil {
		t.Fatal("expected error for empty source")
	}
}

func TestEqual(t *testing.T) {
	buffer, err := NewFromBytes([]byte("abc"))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	if !buffer.Equal([]byte("abc")) || buffer.Equal([]byte("abd")) || buffer.Equal([]byte("ab")) {
		t.Fatal("Equal gave wrong answer")
	}
	buffer.Close()
	if buffer.Equal([]byte("abc")) {
		t.Fatal("closed buffer must not compare equal")
	}
}

func TestCloseIsIdempotentAndReleases(t *testing.T) {
	buffer, err := New(16)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if buffer.Len() != 0 || buffer.Locked() {
		t.Fatal("closed buffer still reports contents")
	}
}

func TestAccessAfterClosePanics(t *testing.T) {
	for name, access := range map[string]func(*Buffer){
		"Bytes":  func(buffer *Buffer) { buffer.Bytes() },
		"String": func(buffer *Buffer) { _ = buffer.String() },
	} {
		t.Run(name, func(t *testing.T) {
			buffer, err := New(8)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			buffer.Close()
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic from %s after Close", name)
				}
			}()
			access(buffer)
		})
	}
}
