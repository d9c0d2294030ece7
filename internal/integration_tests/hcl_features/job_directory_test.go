package hcl_features

import (
	"testing"

	"github.com/specialistvlad/tomoflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestJobDirectory_MergesFiles validates that every .hcl file of a job
// directory contributes to the run and that flags still win over files.
func TestJobDirectory_MergesFiles(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	w := testutil.NewWorkspace(t, map[string]string{
		"jobs/engine.hcl": `
engine {
  dry_run = true
  args    = ["--quieter"]
}
`,
		"jobs/sinos.hcl": `
sinos {
  projections = "$ROOT/proj"
  output      = "$ROOT/from-file"
  height      = 9
  pass_size   = 3
}
`,
		"jobs/README.txt": "ignored",
	})
	w.Frames("proj", 2, 4, 4)

	// --- Act ---
	res := testutil.Run(t, w, "sinos", "--config", "$ROOT/jobs", "--output", "$ROOT/from-flag")

	// --- Assert ---
	require.NoError(t, res.Err, res.Logs)
	lines := testutil.Lines(res.Stdout)
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.Contains(t, line, "ufo-launch --quieter read")
		assert.Contains(t, line, "/from-flag/sino-%05i.tif")
		assert.NotContains(t, line, "from-file")
	}
}

// TestJobFile_OptionalAttributesKeepDefaults validates that attributes left
// out of a job file keep their defaults.
func TestJobFile_OptionalAttributesKeepDefaults(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	w := testutil.NewWorkspace(t, map[string]string{
		"job.hcl": `
engine {
  dry_run = true
}

sinos {
  projections = "$ROOT/proj"
  darks       = "$ROOT/darks"
  flats       = "$ROOT/flats"
  output      = "$ROOT/out"
  height      = 2
}
`,
	})
	w.Frames("proj", 2, 4, 4)
	w.Frames("darks", 1, 4, 4)
	w.Frames("flats", 1, 4, 4)

	// --- Act ---
	res := testutil.Run(t, w, "sinos", "-c", "$ROOT/job.hcl")

	// --- Assert ---
	require.NoError(t, res.Err, res.Logs)
	lines := testutil.Lines(res.Stdout)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "flat-field-correct absorption-correct=true !")
	assert.Contains(t, lines[0], "y-step=1")
}

func TestJobFile_UnknownAttributeIsRejected(t *testing.T) {
	t.Parallel()

	w := testutil.NewWorkspace(t, map[string]string{
		"job.hcl": `
sinos {
  projection = "typo"
}
`,
	})

	res := testutil.Run(t, w, "sinos", "-c", "$ROOT/job.hcl")

	require.Error(t, res.Err)
	assert.Equal(t, 2, res.ExitCode)
	assert.Contains(t, res.Err.Error(), "projection")
}
