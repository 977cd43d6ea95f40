// Package config resolves tagtask settings from the project config file,
// environment variables and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DirName is the per-project directory holding the task document, cache
// and configuration.
const DirName = ".tagtask"

// EnvPrefix is the prefix for environment overrides, e.g.
// TAGTASK_DOCUMENT_PATH.
const EnvPrefix = "TAGTASK"

// Config holds the resolved settings.
type Config struct {
	// DocumentPath is the task document file.
	DocumentPath string `mapstructure:"document_path"`

	// GeneratedDir is where derived per-task files are written.
	GeneratedDir string `mapstructure:"generated_dir"`

	// CachePath is the SQLite query cache file.
	CachePath string `mapstructure:"cache_path"`

	// LogFile is the rotated operation log. Empty logs to stderr only.
	LogFile string `mapstructure:"log_file"`

	// ListenPort is the change-feed WebSocket port.
	ListenPort int `mapstructure:"listen_port"`

	// MaxRetries bounds re-runs of a move after a concurrent
	// modification.
	MaxRetries int `mapstructure:"max_retries"`

	// DefaultTag overrides the document's currentTag marker for callers
	// that do not name a tag. Empty defers to the document.
	DefaultTag string `mapstructure:"default_tag"`
}

// Load resolves configuration for the project rooted at dir. A missing
// config file is not an error; defaults and environment still apply.
func Load(dir string) (*Config, error) {
	v := viper.New()

	base := filepath.Join(dir, DirName)
	v.SetDefault("document_path", filepath.Join(base, "tasks.json"))
	v.SetDefault("generated_dir", filepath.Join(base, "files"))
	v.SetDefault("cache_path", filepath.Join(base, "cache.db"))
	v.SetDefault("log_file", filepath.Join(base, "tagtask.log"))
	v.SetDefault("listen_port", 8722)
	v.SetDefault("max_retries", 3)
	v.SetDefault("default_tag", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(base)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// FindProjectDir walks up from the working directory looking for a
// .tagtask directory. Returns the directory containing it, or "" when
// none is found.
func FindProjectDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, DirName)); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
