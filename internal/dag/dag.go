// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package dag

import (
	"fmt"
	"sort"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node{
		id:         id,
		inputs:     make(map[int]*node),
		dependents: make(map[string]*node),
	}
	g.order = append(g.order, id)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// AddEdge creates a directed edge from the `fromID` node to input `port` of
// the `toID` node and returns the port actually used. DefaultPort selects the
// lowest free port. An error is returned if either node does not exist, if the
// edge would create a self-reference or if the port is already taken.
func (g *Graph) AddEdge(fromID, toID string, port int) (int, error) {
	if fromID == toID {
		return 0, fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}
	if port < DefaultPort {
		return 0, fmt.Errorf("invalid port %d for edge %s -> %s", port, fromID, toID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return 0, fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return 0, fmt.Errorf("destination node not found: %s", toID)
	}

	if port == DefaultPort {
		port = 0
		for {
			if _, taken := toNode.inputs[port]; !taken {
				break
			}
			port++
		}
	} else if prev, taken := toNode.inputs[port]; taken {
		return 0, fmt.Errorf("input port %d of %s already fed by %s", port, toID, prev.id)
	}

	toNode.inputs[port] = fromNode
	fromNode.dependents[toID] = toNode

	return port, nil
}

// Inputs returns the edges feeding the given node, ordered by port.
func (g *Graph) Inputs(id string) ([]Edge, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}

	edges := make([]Edge, 0, len(n.inputs))
	for port, dep := range n.inputs {
		edges = append(edges, Edge{From: dep.id, To: id, Port: port})
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].Port < edges[j].Port })
	return edges, nil
}

// Dependents returns the IDs of the nodes consuming the given node's output,
// sorted.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}

	dependents := make([]string, 0, len(n.dependents))
	for depID := range n.dependents {
		dependents = append(dependents, depID)
	}
	sort.Strings(dependents)
	return dependents, nil
}

// Sinks returns the nodes without dependents, in insertion order.
func (g *Graph) Sinks() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var sinks []string
	for _, id := range g.order {
		if len(g.nodes[id].dependents) == 0 {
			sinks = append(sinks, id)
		}
	}
	return sinks
}

// DetectCycles checks the graph for any cycles. It returns a non-nil error
// if a cycle is found, indicating the first node involved in the detected cycle.
func (g *Graph) DetectCycles() error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	// Use classic depth-first search with three sets of nodes:
	// permanent: nodes that have been fully visited and are not part of a cycle.
	// temporary: nodes currently in the recursion stack for the current traversal.
	// unvisited: all other nodes.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *node) error
	visit = func(n *node) error {
		if permanent[n.id] {
			return nil
		}
		if temporary[n.id] {
			return fmt.Errorf("cycle detected involving node '%s'", n.id)
		}

		temporary[n.id] = true

		for _, dependent := range n.dependents {
			if err := visit(dependent); err != nil {
				return err
			}
		}

		delete(temporary, n.id)
		permanent[n.id] = true

		return nil
	}

	for _, id := range g.order {
		if err := visit(g.nodes[id]); err != nil {
			return err
		}
	}

	return nil
}

// TopologicalOrder returns every node ID such that each node appears after
// all of its inputs. Ties are broken by insertion order.
func (g *Graph) TopologicalOrder() ([]string, error) {
	if err := g.DetectCycles(); err != nil {
		return nil, err
	}

	g.mutex.RLock()
	defer g.mutex.RUnlock()

	pending := make(map[string]int, len(g.nodes))
	for id, n := range g.nodes {
		pending[id] = len(n.inputs)
	}

	done := make(map[string]bool, len(g.nodes))
	out := make([]string, 0, len(g.nodes))
	for len(out) < len(g.order) {
		for _, id := range g.order {
			if done[id] || pending[id] > 0 {
				continue
			}
			done[id] = true
			out = append(out, id)
			for depID := range g.nodes[id].dependents {
				for _, in := range g.nodes[depID].inputs {
					if in.id == id {
						pending[depID]--
					}
				}
			}
			break
		}
	}
	return out, nil
}
