// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package dag

import "sync"

// DefaultPort asks AddEdge to use the lowest free input port of the
// destination.
const DefaultPort = -1

// Graph is a collection of nodes and their dependencies, representing a DAG.
// All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
	// order records insertion order so traversals are deterministic.
	order []string
}

// Edge is a directed connection from the output of From to input Port of To.
type Edge struct {
	From string
	To   string
	Port int
}

// node represents a single vertex in the graph. It is un-exported to
// enforce interaction with the graph via the public API (using string IDs),
// not by direct struct manipulation.
type node struct {
	// id is the unique identifier for the node.
	id string
	// inputs maps an input port to the upstream node feeding it.
	inputs map[int]*node
	// dependents holds the set of nodes that consume this node's output.
	dependents map[string]*node
}
