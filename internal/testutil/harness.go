// Package testutil runs the tomoflow command line end to end against a
// scratch directory and a fake ufo-launch executable.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/specialistvlad/tomoflow/internal/app"
	"github.com/specialistvlad/tomoflow/internal/cli"
	"github.com/stretchr/testify/require"
)

// RootPlaceholder in file contents and arguments is replaced by the scratch
// directory of the run.
const RootPlaceholder = "$ROOT"

// Workspace is a scratch directory populated by a test.
type Workspace struct {
	t    *testing.T
	Root string
}

// NewWorkspace creates an empty scratch directory and writes files into it.
// Keys are slash separated paths relative to the root.
func NewWorkspace(t *testing.T, files map[string]string) *Workspace {
	t.Helper()
	w := &Workspace{t: t, Root: t.TempDir()}
	for name, content := range files {
		w.WriteFile(name, content)
	}
	return w
}

// Path joins rel onto the root.
func (w *Workspace) Path(rel string) string {
	return filepath.Join(w.Root, filepath.FromSlash(rel))
}

// WriteFile writes content to rel, creating parent directories.
func (w *Workspace) WriteFile(rel, content string) {
	w.t.Helper()
	path := w.Path(rel)
	require.NoError(w.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(w.t, os.WriteFile(path, []byte(w.expand(content)), 0o644))
}

// Frames writes n grayscale PNG frames of the given size into dir.
func (w *Workspace) Frames(dir string, n, width, height int) string {
	w.t.Helper()
	path := w.Path(dir)
	require.NoError(w.t, os.MkdirAll(path, 0o755))
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := 0; i < n; i++ {
		f, err := os.Create(filepath.Join(path, fmt.Sprintf("frame-%04d.png", i)))
		require.NoError(w.t, err)
		require.NoError(w.t, png.Encode(f, img))
		require.NoError(w.t, f.Close())
	}
	return path
}

// Launcher installs a fake ufo-launch that records every invocation, one line
// of arguments per call. The call numbered failAt (1-based) exits non-zero;
// 0 never fails.
func (w *Workspace) Launcher(failAt int) *Launcher {
	w.t.Helper()
	if runtime.GOOS == "windows" {
		w.t.Skip("requires a POSIX shell")
	}
	l := &Launcher{Path: w.Path("bin/ufo-launch"), log: w.Path("bin/calls.log")}
	script := fmt.Sprintf(`#!/bin/sh
echo "$*" >> %q
n=$(wc -l < %q)
if [ "$n" -eq %d ]; then
  echo "simulated failure on call $n" >&2
  exit 1
fi
echo "processed call $n"
`, l.log, l.log, failAt)
	require.NoError(w.t, os.MkdirAll(filepath.Dir(l.Path), 0o755))
	require.NoError(w.t, os.WriteFile(l.Path, []byte(script), 0o755))
	return l
}

func (w *Workspace) expand(s string) string {
	return strings.ReplaceAll(s, RootPlaceholder, filepath.ToSlash(w.Root))
}

// Launcher is a fake engine executable installed by Workspace.Launcher.
type Launcher struct {
	Path string
	log  string
}

// Calls returns the recorded argument lines in invocation order.
func (l *Launcher) Calls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(l.log)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// Result holds the outcome of one command line run.
type Result struct {
	Stdout   string
	Logs     string
	Err      error
	ExitCode int
}

// Run executes the command line with args inside w.
func Run(t *testing.T, w *Workspace, args ...string) *Result {
	t.Helper()
	return RunWithContext(context.Background(), t, w, args...)
}

// RunWithContext is Run with a caller supplied context.
func RunWithContext(ctx context.Context, t *testing.T, w *Workspace, args ...string) *Result {
	t.Helper()

	expanded := make([]string, len(args))
	for i, a := range args {
		expanded[i] = w.expand(a)
	}

	out, logs := &app.SafeBuffer{}, &app.SafeBuffer{}
	err := cli.Execute(ctx, expanded, out, logs)

	res := &Result{Stdout: out.String(), Logs: logs.String(), Err: err}
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.Code
	} else if err != nil {
		res.ExitCode = 1
	}

	if os.Getenv("TOMOFLOW_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), res.Logs)
	}
	return res
}

// Lines splits output into trimmed, non-empty lines.
func Lines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
