// Package engine is the boundary to the external dataflow engine.
//
// The engine itself (graph execution, buffer management, image kernels) is
// opaque. This package only models what the orchestrator hands to it:
//
//   - Task: one instance of a task kind with a typed, validated configuration.
//   - Graph: a single-use DAG of tasks whose edges target numbered input ports.
//   - Scheduler: a backend that runs a graph to completion.
//
// Schedulers are never called directly. Execute claims the graph, runs it and
// collects the notifications emitted for watched events into a Result, so a
// graph can be run at most once and notification values arrive as a finite,
// ordered slice.
package engine
