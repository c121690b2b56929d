// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] and [RequireNoReceive] wrap the select-with-timeout
// pattern so tests never block forever on a channel. [Collector]
// records values sent from other goroutines (notifications, log lines)
// and lets a test wait for a given count. [WriteFile] writes fixture
// files such as configs and token files.
//
// All helpers call t.Fatalf on failure rather than returning errors.
package testutil
