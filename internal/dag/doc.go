// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package dag is the structural layer under engine graphs. It stores nodes by
// ID and directed edges that target a numbered input port of the destination,
// rejects self-references, duplicate ports and cycles, and yields a
// deterministic topological order.
package dag
