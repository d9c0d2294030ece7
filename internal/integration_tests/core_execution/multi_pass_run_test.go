package core_execution

import (
	"strings"
	"testing"

	"github.com/specialistvlad/tomoflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSinos_ProbesHeightAndRunsEveryPass validates that the row count comes
// from the first projection when --height is unset and that each pass starts
// its own engine run, in order, appending after the first.
func TestSinos_ProbesHeightAndRunsEveryPass(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	w := testutil.NewWorkspace(t, nil)
	w.Frames("proj", 3, 6, 10)
	launcher := w.Launcher(0)

	// --- Act ---
	res := testutil.Run(t, w, "sinos",
		"--launcher", launcher.Path,
		"--projections", "$ROOT/proj",
		"--output", "$ROOT/out",
		"--pass-size", "4",
	)

	// --- Assert ---
	require.NoError(t, res.Err, res.Logs)

	calls := launcher.Calls(t)
	require.Len(t, calls, 3)
	assert.NotContains(t, calls[0], "append=true")
	assert.NotContains(t, calls[0], " y=")
	assert.Contains(t, calls[0], "height=4")
	assert.Contains(t, calls[1], "y=4")
	assert.Contains(t, calls[1], "append=true")
	assert.Contains(t, calls[2], "height=2")
	assert.Contains(t, calls[2], "y=8")

	for i, call := range calls {
		assert.True(t, strings.HasPrefix(call, "read "), "call %d: %s", i, call)
		assert.Contains(t, call, "transpose-projections number=3", "call %d", i)
		assert.Contains(t, call, "/out/sino-%05i.tif", "call %d", i)
	}
	assert.Contains(t, res.Logs, "processed call 3")
}

// TestSinos_FlatCorrectedRun validates the fan-in rendering that reaches the
// engine when darks and flats are both configured.
func TestSinos_FlatCorrectedRun(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	w := testutil.NewWorkspace(t, nil)
	w.Frames("proj", 4, 8, 8)
	w.Frames("darks", 2, 8, 8)
	w.Frames("flats", 2, 8, 8)
	launcher := w.Launcher(0)

	// --- Act ---
	res := testutil.Run(t, w, "sinos",
		"--launcher", launcher.Path,
		"--projections", "$ROOT/proj",
		"--darks", "$ROOT/darks",
		"--flats", "$ROOT/flats",
		"--output", "$ROOT/out/sino-%04i.tif",
	)

	// --- Assert ---
	require.NoError(t, res.Err, res.Logs)

	calls := launcher.Calls(t)
	require.Len(t, calls, 1)
	call := calls[0]
	assert.True(t, strings.HasPrefix(call, "[ read "), call)
	assert.Contains(t, call, "average number=4")
	assert.Contains(t, call, "] ! flat-field-correct")
	assert.Contains(t, call, "absorption-correct=true")
	assert.Contains(t, call, "/out/sino-%04i.tif")

	// Dark, flat and projection branches appear in port order.
	dark := strings.Index(call, "/darks")
	flat := strings.Index(call, "/flats")
	proj := strings.Index(call, "/proj")
	assert.True(t, dark < flat && flat < proj, call)
}
