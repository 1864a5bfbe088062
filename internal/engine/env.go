package engine

import (
	"maps"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/daryltucker/collect-snapshot/internal/model"
	"github.com/spf13/afero"
)

// ApplyOverlay returns a copy of base with the overlay applied.
// base is in os.Environ() form. Overlaid keys are removed from their original
// position and appended, in sorted order, after the untouched entries.
func ApplyOverlay(base []string, o *model.EnvOverlay) []string {
	out := make([]string, 0, len(base))
	if o.Empty() {
		return append(out, base...)
	}

	drop := func(key string) bool {
		for _, u := range o.Unset {
			if envKeyEqual(key, u) {
				return true
			}
		}
		for k := range o.Set {
			if envKeyEqual(key, k) {
				return true
			}
		}
		return false
	}

	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if drop(key) {
			continue
		}
		out = append(out, kv)
	}
	for _, k := range slices.Sorted(maps.Keys(o.Set)) {
		out = append(out, k+"="+o.Set[k])
	}
	return out
}

// LookupEnv finds key in an os.Environ()-style slice. The last entry wins.
func LookupEnv(env []string, key string) (string, bool) {
	var (
		val   string
		found bool
	)
	for _, kv := range env {
		k, v, ok := strings.Cut(kv, "=")
		if ok && envKeyEqual(k, key) {
			val, found = v, true
		}
	}
	return val, found
}

// lookPath resolves name against the PATH in env rather than the launcher's
// own PATH. Names containing a separator are returned unchanged.
func lookPath(fsys afero.Fs, name string, env []string) (string, bool) {
	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) {
		return name, isExecutable(fsys, name)
	}
	path, _ := LookupEnv(env, "PATH")
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			continue
		}
		for _, candidate := range executableNames(name) {
			full := filepath.Join(dir, candidate)
			if isExecutable(fsys, full) {
				return full, true
			}
		}
	}
	return name, false
}

func executableNames(name string) []string {
	if runtime.GOOS == "windows" && filepath.Ext(name) == "" {
		return []string{name + ".exe", name}
	}
	return []string{name}
}

func isExecutable(fsys afero.Fs, path string) bool {
	info, err := fsys.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

func envKeyEqual(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}
