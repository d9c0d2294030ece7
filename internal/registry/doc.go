// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package registry maps task kinds to the engine plugins that implement them.
//
// The Registry is populated by modules at startup, each registering the
// plugins its backend provides, and is then validated so that every kind the
// orchestrator may request has both a plugin and a configuration schema that
// agrees with its Go type. It is passed explicitly to whatever assembles
// graphs; there is no process-wide instance.
package registry
