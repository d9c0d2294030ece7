// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package cli parses the command line, merges flags over job files and maps
// failures to process exit codes.
package cli
