// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package config defines the settings of a tomoflow run and loads them from
// HCL job files.
//
// Settings are layered: Defaults, then every job file in the order given, then
// whatever the command line sets explicitly. A job file only overrides the
// attributes it mentions.
package config
