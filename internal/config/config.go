// Package config loads the default table geometry used by twotierctl when
// the user doesn't pass explicit flags. twotier-bench does not use it; its
// table geometry comes from its scenario file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

var (
	// ErrConfigFileNotFound indicates an explicitly requested config file
	// does not exist.
	ErrConfigFileNotFound = errors.New("config: file not found")

	// ErrConfigFileRead indicates a config file exists but could not be read.
	ErrConfigFileRead = errors.New("config: could not read file")

	// ErrConfigInvalid indicates a config file's contents are not valid
	// JSON-with-comments, or fail validation once parsed.
	ErrConfigInvalid = errors.New("config: invalid contents")

	// ErrCapacityEmpty indicates a config file explicitly set
	// default_capacity to zero, or the resolved default_capacity is not
	// positive.
	ErrCapacityEmpty = errors.New("config: default_capacity must be positive")
)

// Config holds the defaults twotierctl falls back to when not overridden by
// flags.
type Config struct {
	DefaultCapacity   int `json:"default_capacity"`
	DefaultValueBytes int `json:"default_value_bytes"`

	// Sources tracks which config files were loaded, for diagnostics.
	Sources ConfigSources `json:"-"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string
	Project string
}

// DefaultConfig returns the built-in defaults, used when no config file is
// found anywhere in the precedence chain.
func DefaultConfig() Config {
	return Config{
		DefaultCapacity:   1024,
		DefaultValueBytes: 8,
	}
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".twotier.json"

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDir    string            // defaults to os.Getwd() if empty
	ConfigPath string            // explicit --config flag value
	Env        map[string]string // environment variables
}

// Load resolves configuration with the following precedence (highest wins):
//  1. Defaults
//  2. Global user config (~/.config/twotier/config.json, or
//     $XDG_CONFIG_HOME/twotier/config.json)
//  3. Project config: the file at ConfigPath if non-empty (it must exist),
//     otherwise .twotier.json in WorkDir if present. When ConfigPath is set,
//     the default .twotier.json is not read.
//
// Config files are JSON with comments (JSONC), via hujson.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDir
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := DefaultConfig()

	globalCfg, globalPath, err := loadGlobalConfig(input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalPath
	cfg = mergeConfig(cfg, globalCfg)

	projectCfg, projectPath, err := loadProjectConfig(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = mergeConfig(cfg, projectCfg)

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func getGlobalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "twotier", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "twotier", "config.json")
	}

	return ""
}

func loadGlobalConfig(env map[string]string) (Config, string, error) {
	path := getGlobalConfigPath(env)
	if path == "" {
		return Config{}, "", nil
	}

	cfg, loaded, err := loadConfigFile(path, false)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	return cfg, path, nil
}

func loadProjectConfig(workDir, explicitPath string) (Config, string, error) {
	path := explicitPath
	mustExist := path != ""

	if path == "" {
		path = filepath.Join(workDir, ConfigFileName)
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}

	if mustExist {
		if _, err := os.Stat(path); err != nil {
			return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, explicitPath)
		}
	}

	cfg, loaded, err := loadConfigFile(path, mustExist)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	return cfg, path, nil
}

func loadConfigFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
	}

	cfg, err := parseConfig(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, true, nil
}

func parseConfig(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	if val, exists := raw["default_capacity"]; exists {
		if f, ok := val.(float64); ok && f == 0 {
			return Config{}, ErrCapacityEmpty
		}
	}

	return cfg, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.DefaultCapacity != 0 {
		base.DefaultCapacity = overlay.DefaultCapacity
	}

	if overlay.DefaultValueBytes != 0 {
		base.DefaultValueBytes = overlay.DefaultValueBytes
	}

	return base
}

func validateConfig(cfg Config) error {
	if cfg.DefaultCapacity <= 0 {
		return ErrCapacityEmpty
	}

	return nil
}
