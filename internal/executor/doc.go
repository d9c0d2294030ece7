// Package executor runs a pass plan on an engine scheduler.
//
// Passes run strictly in order on the calling goroutine. Each pass gets a
// freshly assembled graph; the first failure aborts the run and later passes
// never start.
package executor
