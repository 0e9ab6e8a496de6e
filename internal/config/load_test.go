package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testdataPath returns the absolute path to a file in the repo-root testdata/ directory.
func testdataPath(t *testing.T, name string) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	// internal/config -> repo root is ../../
	return filepath.Join(wd, "..", "..", "testdata", name)
}

// --- LoadFromFile tests ---

func TestLoadFromFile_ValidFull(t *testing.T) {
	t.Parallel()
	cfg, md, err := LoadFromFile(testdataPath(t, "valid-full.toml"))
	require.NoError(t, err)

	assert.Equal(t, "./build/myshell", cfg.Subject.Executable)
	assert.Equal(t, []string{"LANG=C", "PATH=/usr/bin:/bin"}, cfg.Subject.Env)

	assert.Equal(t, []string{"tests/base.txt", "tests/**/*.txt"}, cfg.Tests.Files)
	assert.Equal(t, "tests/etalon.txt", cfg.Tests.Etalon)
	assert.Equal(t, []string{"one-by-one", "one-shell"}, cfg.Tests.Scenarios)

	assert.True(t, cfg.Features.Logic)
	assert.True(t, cfg.Features.Background)

	assert.Equal(t, 2048, cfg.Limits.LongCommandLength)
	assert.Equal(t, 5000, cfg.Limits.ManyArgsCount)
	assert.Equal(t, 100, cfg.Limits.LongPipeLength)

	assert.Equal(t, 5*time.Second, cfg.Timeouts.Case.Duration)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeouts.Exit.Duration)
	assert.Equal(t, 10*time.Second, cfg.Timeouts.Scale.Duration)

	assert.Equal(t, "./work", cfg.Workspace.ScratchDir)
	assert.Equal(t, "./artifacts", cfg.Workspace.ArtifactsDir)
	assert.True(t, cfg.Workspace.KeepScratch)
	assert.Equal(t, 100, cfg.Workspace.DiffWidth)

	assert.Equal(t, 10, cfg.Scoring.Base)
	assert.Equal(t, 2, cfg.Scoring.Bonus)

	assert.Empty(t, md.Undecoded(), "expected no undecoded keys for valid-full.toml")
}

func TestLoadFromFile_PartialConfig(t *testing.T) {
	t.Parallel()
	cfg, _, err := LoadFromFile(testdataPath(t, "valid-partial.toml"))
	require.NoError(t, err)

	assert.Equal(t, "./mysh", cfg.Subject.Executable)
	assert.True(t, cfg.Features.Logic)
	assert.False(t, cfg.Features.Background)
	assert.Empty(t, cfg.Tests.Files)
	assert.Zero(t, cfg.Timeouts.Case.Duration)
}

func TestLoadFromFile_UnknownKeys(t *testing.T) {
	t.Parallel()
	_, md, err := LoadFromFile(testdataPath(t, "unknown-keys.toml"))
	require.NoError(t, err)

	var keys []string
	for _, k := range md.Undecoded() {
		keys = append(keys, k.String())
	}
	assert.Contains(t, keys, "subject.interpreter")
	assert.Contains(t, keys, "timeouts.total")
	assert.Contains(t, keys, "extras.color")
}

func TestLoadFromFile_InvalidSyntax(t *testing.T) {
	t.Parallel()
	_, _, err := LoadFromFile(testdataPath(t, "invalid-syntax.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
	assert.Contains(t, err.Error(), "invalid-syntax.toml:1:", "parse errors carry the line")
}

func TestLoadFromFile_BadDuration(t *testing.T) {
	t.Parallel()
	_, _, err := LoadFromFile(testdataPath(t, "bad-duration.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "three seconds")
}

func TestLoadFromFile_Missing(t *testing.T) {
	t.Parallel()
	_, _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

// --- FindConfigFile tests ---

func TestFindConfigFile_WalksUp(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	path := filepath.Join(root, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("[subject]\n"), 0o644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := FindConfigFile(nested)
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(found)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindConfigFile_NotFound(t *testing.T) {
	t.Parallel()
	// A fresh temp dir normally has no shellprobe.toml above it; skip if the
	// machine happens to have one in a parent.
	dir := t.TempDir()
	found, err := FindConfigFile(dir)
	require.NoError(t, err)
	if found != "" {
		t.Skipf("found %s above the temp dir", found)
	}
	assert.Empty(t, found)
}

// --- Duration ---

func TestDuration_Text(t *testing.T) {
	t.Parallel()
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("250ms")))
	assert.Equal(t, 250*time.Millisecond, d.Duration)

	out, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "250ms", string(out))

	assert.Error(t, d.UnmarshalText([]byte("soon")))
}

// --- Defaults ---

func TestNewDefaults(t *testing.T) {
	t.Parallel()
	d := NewDefaults()
	assert.Equal(t, "./a.out", d.Subject.Executable)
	assert.Equal(t, []string{"./tests.txt"}, d.Tests.Files)
	assert.False(t, d.Features.Logic)
	assert.False(t, d.Features.Background)
	assert.Equal(t, 100*1024, d.Limits.LongCommandLength)
	assert.Equal(t, 100*1000, d.Limits.ManyArgsCount)
	assert.Equal(t, 1000, d.Limits.LongPipeLength)
	assert.Equal(t, 3*time.Second, d.Timeouts.Case.Duration)
	assert.Equal(t, time.Second, d.Timeouts.Exit.Duration)
	assert.Equal(t, 5*time.Second, d.Timeouts.Scale.Duration)
	assert.Equal(t, "./testdir", d.Workspace.ScratchDir)
	assert.Equal(t, 15, d.Scoring.Base)
	assert.Equal(t, 5, d.Scoring.Bonus)

	// Each call returns an independent value.
	d.Tests.Files[0] = "changed"
	assert.Equal(t, "./tests.txt", NewDefaults().Tests.Files[0])
}
