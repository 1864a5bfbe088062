package engine

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/daryltucker/collect-snapshot/internal/config"
	"github.com/daryltucker/collect-snapshot/internal/model"
	"github.com/daryltucker/collect-snapshot/internal/output"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBase = "/opt/app"

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Interpreter = "python3"
	return cfg
}

func newTestResolver(t *testing.T, fsys afero.Fs, cfg *config.Config) (*Resolver, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	r := NewResolver(fsys, cfg, filepath.FromSlash(testBase), []string{"PATH=/usr/bin:/bin", "HOME=/home/u"})
	r.Logger = output.NewLogger(&logs, true)
	return r, &logs
}

func touch(t *testing.T, fsys afero.Fs, path string, mode os.FileMode) {
	t.Helper()
	path = filepath.FromSlash(path)
	require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fsys, path, []byte("#!/bin/sh\n"), mode))
}

func TestResolve_PackagedWins(t *testing.T) {
	cases := []struct {
		name  string
		files []string
	}{
		{"packaged only", nil},
		{"packaged and script", []string{testBase + "/collect_snapshot.py"}},
		{"packaged, script and venv", []string{testBase + "/collect_snapshot.py", testBase + "/.venv/bin/activate"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			cfg := testConfig()
			touch(t, fsys, testBase+"/"+cfg.PackagedName(), 0o755)
			for _, f := range tc.files {
				touch(t, fsys, f, 0o644)
			}
			r, _ := newTestResolver(t, fsys, cfg)

			target, err := r.Resolve(context.Background())
			require.NoError(t, err)
			assert.Equal(t, model.PackagedExecutable, target.Kind)
			assert.Equal(t, r.PackagedPath(), target.Path)
			assert.Nil(t, target.Overlay, "venv is never sourced for the packaged collector")
		})
	}
}

func TestResolve_FallbackWithoutVenv(t *testing.T) {
	fsys := afero.NewMemMapFs()
	touch(t, fsys, testBase+"/collect_snapshot.py", 0o644)
	touch(t, fsys, "/usr/bin/python3", 0o755)
	r, _ := newTestResolver(t, fsys, testConfig())

	target, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.FallbackScript, target.Kind)
	assert.Equal(t, r.ScriptPath(), target.Script)
	assert.Equal(t, filepath.FromSlash("/usr/bin/python3"), target.Interpreter)
	assert.Nil(t, target.Overlay)
}

func TestResolve_FallbackInterpreterNotOnPath(t *testing.T) {
	fsys := afero.NewMemMapFs()
	touch(t, fsys, testBase+"/collect_snapshot.py", 0o644)
	r, _ := newTestResolver(t, fsys, testConfig())

	target, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "python3", target.Interpreter, "bare name is left for exec to report")
}

func TestResolve_FallbackWithVenv(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("venv layout differs on windows")
	}
	fsys := afero.NewMemMapFs()
	touch(t, fsys, testBase+"/collect_snapshot.py", 0o644)
	writeVenv(t, fsys, testBase+"/.venv", "bin", activateScript)
	touch(t, fsys, testBase+"/.venv/bin/python3", 0o755)
	r, _ := newTestResolver(t, fsys, testConfig())

	target, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.FallbackScript, target.Kind)
	assert.Equal(t, testBase+"/.venv/bin/python3", target.Interpreter)
	require.NotNil(t, target.Overlay)
	assert.Equal(t, testBase+"/.venv", target.Overlay.Set["VIRTUAL_ENV"])
}

func TestResolve_BrokenVenvIsOnlyAWarning(t *testing.T) {
	fsys := afero.NewMemMapFs()
	touch(t, fsys, testBase+"/collect_snapshot.py", 0o644)
	writeVenv(t, fsys, filepath.FromSlash(testBase+"/.venv"), "bin", "echo \"unterminated\n")
	r, logs := newTestResolver(t, fsys, testConfig())

	target, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.FallbackScript, target.Kind)
	assert.Nil(t, target.Overlay)
	assert.Contains(t, logs.String(), "activation failed")
}

func TestResolve_NothingFound(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeVenv(t, fsys, filepath.FromSlash(testBase+"/.venv"), "bin", activateScript)
	r, _ := newTestResolver(t, fsys, testConfig())

	_, err := r.Resolve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingCollaborator)

	var missing *MissingCollaboratorError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, r.PackagedPath(), missing.Packaged)
	assert.Equal(t, r.ScriptPath(), missing.Script)
}

func TestResolve_AbsoluteNamesIgnoreBaseDir(t *testing.T) {
	fsys := afero.NewMemMapFs()
	cfg := testConfig()
	cfg.FallbackScript = filepath.FromSlash("/srv/collector/main.py")
	touch(t, fsys, "/srv/collector/main.py", 0o644)
	r, _ := newTestResolver(t, fsys, cfg)

	target, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cfg.FallbackScript, target.Script)
}
