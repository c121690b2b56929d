// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for taskboard.
//
// Configuration is loaded from a single file specified by either the
// TASKBOARD_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There are no fallbacks, no ~/.config
// discovery, and no automatic file search.
//
// The configuration file supports environment-specific sections
// (development, staging, production) that override base values when
// [Config].Environment matches. Production without an explicit
// section defaults to warn-level logging and at most eight concurrent
// requests per bulk operation.
//
// Variable expansion is performed on paths and the base URL after
// loading: ${HOME}, ${TASKBOARD_ROOT}, and ${VAR:-default} patterns are
// expanded. No other environment variables override config values.
//
// This package depends on no other taskboard packages.
package config
