// Package config loads and validates the optional .buildcheck YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the optional configuration file at the
// workspace root.
const FileName = ".buildcheck"

// Default values for runner and report configuration.
const (
	DefaultWidth     = 80
	DefaultCacheTool = "bazel"
	DefaultCacheDir  = "_build"
)

// DefaultCommands are run when neither the command line nor the config
// file names any commands.
var DefaultCommands = []string{
	"bazel run //docs:incremental",
	"bazel build //docs:docs",
	"bazel run //docs:ide_support",
}

// workspaceMarkers identify the root of a Bazel workspace.
var workspaceMarkers = []string{"MODULE.bazel", "WORKSPACE", "WORKSPACE.bazel"}

// Config holds the parsed .buildcheck configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Version      int         `yaml:"version"`
	Commands     []string    `yaml:"commands"`
	ClearCache   bool        `yaml:"clear_cache"`
	RawWidth     int         `yaml:"width"`
	RawTimeout   string      `yaml:"timeout"`    // e.g. "30m"; empty means no timeout
	RawMaxOutput int         `yaml:"max_output"` // bytes; 0 means unbounded
	Cache        CacheConfig `yaml:"cache"`
}

// CacheConfig controls the cache-clearing pre-step.
type CacheConfig struct {
	Tool string `yaml:"tool"` // build tool invoked as "<tool> clean"
	Dir  string `yaml:"dir"`  // output directory, relative to the working directory, removed after cleaning
}

// CommandList returns the configured commands, falling back to defaults.
func (c *Config) CommandList() []string {
	if len(c.Commands) > 0 {
		return c.Commands
	}
	return DefaultCommands
}

// Width returns the banner width or the default.
func (c *Config) Width() int {
	if c.RawWidth > 0 {
		return c.RawWidth
	}
	return DefaultWidth
}

// Timeout returns the configured per-process timeout. Zero means the
// process may run indefinitely.
func (c *Config) Timeout() time.Duration {
	if c.RawTimeout != "" {
		d, err := time.ParseDuration(c.RawTimeout)
		if err == nil && d > 0 {
			return d
		}
	}
	return 0
}

// MaxOutputBytes returns the configured capture limit. Zero means unbounded.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return 0
}

// CacheTool returns the build tool used to clear the cache.
func (c *Config) CacheTool() string {
	if c.Cache.Tool != "" {
		return c.Cache.Tool
	}
	return DefaultCacheTool
}

// CacheDir returns the output directory removed when clearing the cache.
func (c *Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	return DefaultCacheDir
}

// Validate reports configuration values that can never work.
func (c *Config) Validate() error {
	if c.RawTimeout != "" {
		d, err := time.ParseDuration(c.RawTimeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", c.RawTimeout, err)
		}
		if d < 0 {
			return fmt.Errorf("invalid timeout %q: must not be negative", c.RawTimeout)
		}
	}
	if c.RawWidth < 0 {
		return fmt.Errorf("invalid width %d: must not be negative", c.RawWidth)
	}
	if filepath.IsAbs(c.Cache.Dir) {
		return fmt.Errorf("cache dir %q must be relative to the working directory", c.Cache.Dir)
	}
	return nil
}

// LoadResult holds the parsed config and the discovered workspace root.
type LoadResult struct {
	Config   *Config
	RepoRoot string // directory containing a workspace marker; falls back to workspace
}

// Load reads the .buildcheck file from the workspace root.
// The root is discovered by walking upward from workspace looking for
// MODULE.bazel, WORKSPACE or WORKSPACE.bazel. If no .buildcheck file
// exists, a default Config is returned.
func Load(workspace string) (*LoadResult, error) {
	root, err := findRepoRoot(workspace)
	if err != nil {
		// No workspace marker found; use workspace as root.
		root = workspace
	}
	return LoadFile(filepath.Join(root, FileName), root)
}

// LoadFile reads the configuration at path and associates it with root.
// A missing file yields a default Config.
func LoadFile(path, root string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &LoadResult{Config: &Config{}, RepoRoot: root}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	return &LoadResult{Config: cfg, RepoRoot: root}, nil
}

// findRepoRoot walks upward from dir looking for a workspace marker file.
func findRepoRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, marker := range workspaceMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("workspace root not found")
		}
		dir = parent
	}
}
