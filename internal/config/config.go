package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// Config represents the revq configuration.
type Config struct {
	ReposRoot     string       `json:"reposRoot"`
	Exclude       []string     `json:"exclude"`
	ReviewCommand string       `json:"reviewCommand,omitempty"`
	Daemon        DaemonConfig `json:"daemon"`
}

// DaemonConfig controls the background PR watcher.
type DaemonConfig struct {
	PollSeconds int      `json:"pollSeconds"`
	Exclude     []string `json:"exclude,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		ReposRoot: filepath.Join(home, "src"),
		Exclude:   []string{"node_modules", "vendor", "target"},
		Daemon: DaemonConfig{
			PollSeconds: 300,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for revq.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "revq"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "revq"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "revq"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "revq"), nil
	default:
		return filepath.Join(home, ".config", "revq"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil
// error if the file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.ReposRoot != "" {
		dst.ReposRoot = src.ReposRoot
	}
	if len(src.Exclude) > 0 {
		dst.Exclude = src.Exclude
	}
	if src.ReviewCommand != "" {
		dst.ReviewCommand = src.ReviewCommand
	}
	if src.Daemon.PollSeconds > 0 {
		dst.Daemon.PollSeconds = src.Daemon.PollSeconds
	}
	if len(src.Daemon.Exclude) > 0 {
		dst.Daemon.Exclude = src.Daemon.Exclude
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("REVQ_REPOS_ROOT"); v != "" {
		cfg.ReposRoot = v
	}
	if v := os.Getenv("REVQ_REVIEW_COMMAND"); v != "" {
		cfg.ReviewCommand = v
	}
	if v := os.Getenv("REVQ_POLL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Daemon.PollSeconds = n
		}
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["root"]; ok && v != "" {
		cfg.ReposRoot = v
	}
	if v, ok := overrides["reviewCommand"]; ok && v != "" {
		cfg.ReviewCommand = v
	}
	if v, ok := overrides["pollSeconds"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Daemon.PollSeconds = n
		}
	}
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "reposRoot":
		cfg.ReposRoot = value
	case "reviewCommand":
		cfg.ReviewCommand = value
	case "pollSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("pollSeconds must be an integer: %w", err)
		}
		cfg.Daemon.PollSeconds = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// AddExclude appends a directory name to the exclude list if not present.
func AddExclude(cfg *Config, name string) bool {
	for _, e := range cfg.Exclude {
		if e == name {
			return false
		}
	}
	cfg.Exclude = append(cfg.Exclude, name)
	return true
}
