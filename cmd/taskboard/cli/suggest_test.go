// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"list", "", 4},
		{"list", "list", 0},
		{"lsit", "list", 2},
		{"archive", "archve", 1},
		{"kitten", "sitting", 3},
	}
	for _, tc := range cases {
		if got := levenshtein(tc.a, tc.b); got != tc.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{{Name: "list"}, {Name: "projects"}, {Name: "bulk"}}
	if got := suggestCommand("lst", commands); got != "list" {
		t.Errorf("suggestCommand(lst) = %q", got)
	}
	if got := suggestCommand("somethingelse", commands); got != "" {
		t.Errorf("suggestCommand(somethingelse) = %q, want none", got)
	}
}

func TestSuggestFlag(t *testing.T) {
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flagSet.Bool("visible", false, "")
	flagSet.BoolP("yes", "y", false, "")

	if got := suggestFlag([]string{"-y", "--visble"}, flagSet); got != "--visible" {
		t.Errorf("suggestFlag = %q, want --visible", got)
	}
	if got := suggestFlag([]string{"--completely-different"}, flagSet); got != "" {
		t.Errorf("suggestFlag = %q, want none", got)
	}
}
