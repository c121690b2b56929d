// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds the API bearer token outside the Go heap.
//
// [Buffer] stores its bytes in an anonymous mmap region excluded from
// core dumps, locked into RAM where the process's memlock limit allows,
// and zeroed on Close. [ReadFromPath] loads a token from a file or
// stdin; [ReadFromTerminal] prompts for one without echo.
package secret
