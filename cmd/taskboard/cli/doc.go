// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the taskboard CLI.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a parameter struct bound to
// flags through struct tags ([BindFlags]), and a Run function. Commands
// are assembled into a tree in cmd/taskboard/commands and dispatched via
// [Command.Execute], which handles flag parsing, subcommand routing, and
// structured help output with examples.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3).
//
// Errors returned by commands are classified with [ToolError]
// categories. [Classify] maps task API status codes and transport
// failures onto those categories so scripts can decide whether to
// retry.
package cli
