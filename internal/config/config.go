/*
PURPOSE:
  Defines the configuration structure and loading logic for collect-snapshot.
  Names the files the launcher looks for next to itself.

REQUIREMENTS:
  User-specified:
  - Packaged executable and fallback script are found next to the launcher.
  - An optional virtual environment may be activated before the fallback runs.

  Implementation-discovered:
  - Needs to support YAML parsing.
  - Needs to support environment variable overrides (COLLECT_SNAPSHOT_...).
  - Windows builds look for "<name>.exe" and use "python" rather than "python3".

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine
  - Dependencies: gopkg.in/yaml.v3 (file), github.com/spf13/viper (env layer)

ERROR HANDLING:
  - Returns explicit error if an explicitly requested config file is missing or invalid.
  - A missing default config file is not an error; defaults are returned.

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Precedence: defaults < file < environment < CLI flags (flags applied in internal/cli).

USAGE:
  cfg, err := config.Load("", baseDir)

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config, DefaultConfig() and envKeys.

RELATED FILES:
  - internal/cli/run.go

MAINTENANCE:
  - Update when adding new lookup locations.
*/

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides, e.g. COLLECT_SNAPSHOT_VENV_DIR.
const EnvPrefix = "COLLECT_SNAPSHOT"

// DefaultFiles are searched, in order, inside the launcher's directory.
var DefaultFiles = []string{"collect-snapshot.yaml", "launcher.yaml"}

// Config represents the full configuration for collect-snapshot.
type Config struct {
	// PackagedExecutable is the file name of the pre-built collector.
	PackagedExecutable string `yaml:"packaged_executable"`
	// FallbackScript is the file name of the interpreted collector.
	FallbackScript string `yaml:"fallback_script"`
	// Interpreter runs FallbackScript when no virtual environment provides one.
	Interpreter string `yaml:"interpreter"`
	// VenvDir is the virtual environment directory, relative to BaseDir.
	VenvDir string `yaml:"venv_dir"`
	// BaseDir overrides the launcher's own directory. Empty means auto-detect.
	BaseDir string `yaml:"base_dir"`

	// Source records which file was loaded, empty for defaults only.
	Source string `yaml:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	interpreter := "python3"
	if runtime.GOOS == "windows" {
		interpreter = "python"
	}
	return &Config{
		PackagedExecutable: "collect-snapshot-bin",
		FallbackScript:     "collect_snapshot.py",
		Interpreter:        interpreter,
		VenvDir:            ".venv",
	}
}

// Load reads configuration from a file and applies environment overrides.
// If path is specified, it must exist and parse.
// If path is empty, DefaultFiles are tried inside searchDir.
func Load(path, searchDir string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if searchDir != "" {
		for _, name := range DefaultFiles {
			candidate := filepath.Join(searchDir, name)
			data, err = os.ReadFile(candidate)
			if err == nil {
				path = candidate
				break
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file %s: %w", candidate, err)
			}
		}
	}

	if path != "" {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		cfg.Source = path
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays COLLECT_SNAPSHOT_* variables on cfg.
func applyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	fields := map[string]*string{
		"packaged_executable": &cfg.PackagedExecutable,
		"fallback_script":     &cfg.FallbackScript,
		"interpreter":         &cfg.Interpreter,
		"venv_dir":            &cfg.VenvDir,
		"base_dir":            &cfg.BaseDir,
	}
	for key, field := range fields {
		if s := strings.TrimSpace(v.GetString(key)); s != "" {
			*field = s
		}
	}
}

// Validate rejects configurations that cannot name a target.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.PackagedExecutable) == "" {
		return errors.New("config: packaged_executable must not be empty")
	}
	if strings.TrimSpace(c.FallbackScript) == "" {
		return errors.New("config: fallback_script must not be empty")
	}
	if strings.TrimSpace(c.Interpreter) == "" {
		return errors.New("config: interpreter must not be empty")
	}
	return nil
}

// PackagedName returns the packaged executable file name for this platform.
func (c *Config) PackagedName() string {
	if runtime.GOOS == "windows" && filepath.Ext(c.PackagedExecutable) == "" {
		return c.PackagedExecutable + ".exe"
	}
	return c.PackagedExecutable
}
