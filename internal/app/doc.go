// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package app contains the core application logic. It wires configuration,
// logging, the engine backend and the orchestration packages together and
// runs one command, decoupled from any specific entrypoint like a CLI.
package app
