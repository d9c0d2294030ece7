// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/specialistvlad/tomoflow/internal/config"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates an App with debug logging captured in a buffer. Set
// TOMOFLOW_TEST_LOGS=true to print the logs after the test.
func SetupAppTest(t *testing.T, settings config.Settings, opts ...Option) (app *App, out *SafeBuffer, logs *SafeBuffer) {
	t.Helper()

	out, logs = &SafeBuffer{}, &SafeBuffer{}
	settings.LogLevel = "debug"
	app, err := NewApp(out, logs, settings, opts...)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}

	t.Cleanup(func() {
		if os.Getenv("TOMOFLOW_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return app, out, logs
}
