package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"

	appErr "leetbridge/pkg/errors"
)

const (
	DefaultEndpoint     = "leetcode"
	DefaultTimeout      = 30 * time.Second
	DefaultMinNodeMajor = 12
	DefaultCacheTTL     = 24 * time.Hour
	DefaultCacheBytes   = 64 << 20
)

// Config holds adapter configuration.
type Config struct {
	// NodePath is an explicit Node.js executable path. Empty means
	// resolve from PATH and platform candidates.
	NodePath string `yaml:"nodePath"`
	// ToolHome is the directory the external CLI package is installed in.
	ToolHome string `yaml:"toolHome"`
	// UseWSL runs every invocation through the WSL launcher.
	UseWSL          bool   `yaml:"useWSL"`
	Endpoint        string `yaml:"endpoint"`
	WorkspaceFolder string `yaml:"workspaceFolder"`
	// ExtraArgs is a shell-quoted string appended to every CLI argv.
	ExtraArgs    string        `yaml:"extraArgs"`
	MinNodeMajor int           `yaml:"minNodeMajor"`
	Timeout      time.Duration `yaml:"timeout"`
	StatePath    string        `yaml:"statePath"`

	Log   LogConfig   `yaml:"log"`
	Cache CacheConfig `yaml:"cache"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	OutputPath string `yaml:"outputPath"`
}

// CacheConfig configures the metadata snapshot cache and points at the
// CLI's own plugin cache for repair.
type CacheConfig struct {
	Root           string        `yaml:"root"`
	PluginCacheDir string        `yaml:"pluginCacheDir"`
	TTL            time.Duration `yaml:"ttl"`
	MaxBytes       int64         `yaml:"maxBytes"`
}

// Load reads a config file and applies defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, appErr.Wrap(err, appErr.ConfigReadFailed)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, appErr.Wrap(err, appErr.ConfigParseFailed)
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	home, _ := os.UserHomeDir()
	if cfg.ToolHome == "" {
		cfg.ToolHome = filepath.Join("node_modules", "vsc-leetcode-cli")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.MinNodeMajor == 0 {
		cfg.MinNodeMajor = DefaultMinNodeMajor
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.StatePath == "" && home != "" {
		cfg.StatePath = filepath.Join(home, ".lc", "leetbridge_state.json")
	}
	if cfg.Cache.Root == "" && home != "" {
		cfg.Cache.Root = filepath.Join(home, ".lc", "leetbridge_cache")
	}
	if cfg.Cache.PluginCacheDir == "" && home != "" {
		cfg.Cache.PluginCacheDir = filepath.Join(home, ".lc", "leetcode", "cache")
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.MaxBytes == 0 {
		cfg.Cache.MaxBytes = DefaultCacheBytes
	}
}

// CLIScript returns the expected CLI entry script path under ToolHome.
func (c Config) CLIScript() string {
	return filepath.Join(c.ToolHome, "bin", "leetcode")
}

// MetadataFile returns the bundled company/tag data file path under
// ToolHome.
func (c Config) MetadataFile() string {
	return filepath.Join(c.ToolHome, "lib", "companies.js")
}

// ExtraArgv tokenizes ExtraArgs with shell quoting rules.
func (c Config) ExtraArgv() ([]string, error) {
	if c.ExtraArgs == "" {
		return nil, nil
	}
	argv, err := shlex.Split(c.ExtraArgs)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.ConfigInvalid, "parse extraArgs failed: %v", err)
	}
	return argv, nil
}
