package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"diaggroups/internal/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const groups = `
def Bar : DiagGroup<"unused-variable", [Foo]>;
def Foo : DiagGroup<"format">;
def A : DiagGroup<"a", [B]>;
def B : DiagGroup<"b", [A]>;
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeGroups(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "DiagnosticGroups.td")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCmd(t *testing.T) {
	path := writeGroups(t, groups)

	t.Run("Top level", func(t *testing.T) {
		out, _, err := execute(t, "--top-level", path)
		require.NoError(t, err)
		assert.Equal(t, "-Wunused-variable\n#   -Wformat\n", out)
	})

	t.Run("Unique", func(t *testing.T) {
		out, _, err := execute(t, "--unique", path)
		require.NoError(t, err)
		assert.Equal(t, "-Wa\n-Wb\n-Wformat\n-Wunused-variable\n", out)
	})

	t.Run("Cycle fails by default", func(t *testing.T) {
		out, _, err := execute(t, path)
		require.Error(t, err)
		assert.ErrorIs(t, err, graph.ErrCycle)
		assert.Empty(t, out)
	})

	t.Run("Cycle truncation", func(t *testing.T) {
		out, _, err := execute(t, "--on-cycle", "truncate", path)
		require.NoError(t, err)
		assert.Equal(t,
			"-Wa\n#   -Wb\n#     -Wa (cycle)\n-Wb\n#   -Wa\n#     -Wb (cycle)\n-Wformat\n-Wunused-variable\n#   -Wformat\n",
			out)
	})

	t.Run("Verbose logs to stderr only", func(t *testing.T) {
		out, logs, err := execute(t, "-v", "--unique", path)
		require.NoError(t, err)
		assert.Contains(t, logs, "built switch graph")
		assert.NotContains(t, out, "built switch graph")
	})
}

func TestRootCmd_Errors(t *testing.T) {
	t.Run("Missing argument", func(t *testing.T) {
		_, _, err := execute(t)
		assert.Error(t, err)
	})

	t.Run("Unreadable file", func(t *testing.T) {
		_, _, err := execute(t, filepath.Join(t.TempDir(), "absent.td"))
		assert.Error(t, err)
	})

	t.Run("Invalid policy", func(t *testing.T) {
		_, _, err := execute(t, "--on-unresolved", "explode", writeGroups(t, groups))
		assert.ErrorContains(t, err, "unresolved policy")
	})
}

func TestRootCmd_IncludeDirs(t *testing.T) {
	incDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(incDir, "Extra.td"), []byte(`def Extra : DiagGroup<"extra">;`), 0o644))
	path := writeGroups(t, "include \"Extra.td\"\ndef All : DiagGroup<\"all\", [Extra]>;\n")

	out, _, err := execute(t, "-I", incDir, "--top-level", path)
	require.NoError(t, err)
	assert.Equal(t, "-Wall\n#   -Wextra\n", out)
}
