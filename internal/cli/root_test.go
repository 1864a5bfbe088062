package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/daryltucker/collect-snapshot/internal/config"
	"github.com/daryltucker/collect-snapshot/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// installCollector writes a packaged collector double into a fresh base dir.
func installCollector(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("collector doubles are /bin/sh scripts")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultConfig().PackagedName())
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return dir
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errBuf bytes.Buffer
	code := execute(context.Background(), args, streams{In: strings.NewReader(""), Out: &out, Err: &errBuf})
	return code, out.String(), errBuf.String()
}

func TestExecute_Success(t *testing.T) {
	dir := installCollector(t, "exit 0")

	code, out, errOut := run(t, "--base-dir", dir, "42")
	assert.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Snapshot collection finished for 42")
	assert.Contains(t, errOut, "Dispatching snapshot collector")
}

func TestExecute_PropagatesCollectorExitCode(t *testing.T) {
	dir := installCollector(t, "exit 7")

	code, _, errOut := run(t, "--base-dir", dir, "42", "--snapshot-dir", t.TempDir())
	assert.Equal(t, 7, code)
	assert.Contains(t, errOut, "exit code 7")
	assert.Equal(t, 1, strings.Count(errOut, "exit code 7"), "failure is reported once")
}

func TestExecute_MissingIdentifier(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "spawned")
	dir := installCollector(t, `touch "`+marker+`"`)

	code, _, errOut := run(t, "--base-dir", dir)
	assert.Equal(t, engine.ExitMissingArgument, code)
	assert.Contains(t, errOut, "missing required identifier")
	assert.NoFileExists(t, marker)
}

func TestExecute_MissingCollaborator(t *testing.T) {
	code, _, errOut := run(t, "--base-dir", t.TempDir(), "42")
	assert.Equal(t, engine.ExitMissingCollaborator, code)
	assert.Contains(t, errOut, "no snapshot collector found")
}

func TestExecute_UsageErrors(t *testing.T) {
	dir := t.TempDir()

	code, _, errOut := run(t, "--base-dir", dir, "42", "43")
	assert.Equal(t, engine.ExitMissingArgument, code)
	assert.Contains(t, errOut, "Error:")

	code, _, errOut = run(t, "--base-dir", dir, "--no-such-flag", "42")
	assert.Equal(t, engine.ExitMissingArgument, code)
	assert.Contains(t, errOut, "unknown flag")

	code, _, errOut = run(t, "--base-dir", dir, "--config", filepath.Join(dir, "missing.yaml"), "42")
	assert.Equal(t, engine.ExitMissingArgument, code)
	assert.Contains(t, errOut, "failed to read config file")
}

func TestExecute_JSONOutcome(t *testing.T) {
	dir := installCollector(t, "exit 3")

	code, out, _ := run(t, "--base-dir", dir, "--json", "42")
	assert.Equal(t, 3, code)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	var outcome map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &outcome))
	assert.Equal(t, float64(3), outcome["exit_code"])
	assert.Equal(t, "42", outcome["request"].(map[string]any)["identifier"])
}

func TestExecute_DryRun(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "spawned")
	dir := installCollector(t, `touch "`+marker+`"`)

	code, out, _ := run(t, "--base-dir", dir, "--dry-run", "42", "-o", "snaps")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "42 --snapshot-dir snaps")
	assert.NoFileExists(t, marker)
}

func TestExecute_ConfigFileRenamesCollector(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("collector doubles are /bin/sh scripts")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "collect-snapshot.yaml"), []byte("packaged_executable: mbs-collector\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mbs-collector"), []byte("#!/bin/sh\nexit 5\n"), 0o755))

	code, _, _ := run(t, "--base-dir", dir, "42")
	assert.Equal(t, 5, code)
}
