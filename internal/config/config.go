// Package config loads settings from defaults, an optional config file,
// COACH_* environment variables and command line flags, in rising priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lowaak/health-coach/coach-app/internal/progress"
)

const (
	AppName   = "health-coach"
	EnvPrefix = "COACH"
)

const (
	KeyDataDir         = "data_dir"
	KeyStoreBackend    = "store.backend"
	KeyStorePath       = "store.path"
	KeyCatalogPath     = "catalog.path"
	KeyTickInterval    = "player.tick_interval"
	KeySpeechCommand   = "speech.command"
	KeySpeechArgs      = "speech.args"
	KeyLogFile         = "log.file"
	KeyLogMaxSizeMB    = "log.max_size_mb"
	KeyLogMaxBackups   = "log.max_backups"
	KeyLogMaxAgeDays   = "log.max_age_days"
	KeyMetricsTextfile = "metrics.textfile"
)

// flag name -> config key
var flagKeys = map[string]string{
	"data-dir":         KeyDataDir,
	"store":            KeyStoreBackend,
	"store-path":       KeyStorePath,
	"catalog":          KeyCatalogPath,
	"tick-interval":    KeyTickInterval,
	"speech-command":   KeySpeechCommand,
	"log-file":         KeyLogFile,
	"metrics-textfile": KeyMetricsTextfile,
}

type Config struct {
	DataDir string        `mapstructure:"data_dir"`
	Store   StoreConfig   `mapstructure:"store"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Player  PlayerConfig  `mapstructure:"player"`
	Speech  SpeechConfig  `mapstructure:"speech"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`

	// File is the config file that was read, empty if none
	File string `mapstructure:"-"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"` // json, sqlite or memory
	Path    string `mapstructure:"path"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path"` // optional yaml/toml file replacing the built-in content
}

type PlayerConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
}

// SpeechConfig names an external text-to-speech command. The text is passed
// as its last argument. Empty Command means cues are only logged.
type SpeechConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"` // written on shutdown when set
}

// RegisterFlags adds the flags Load understands to fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (yaml or toml)")
	fs.String("data-dir", "", "directory for progress and logs")
	fs.String("store", progress.BackendJSON, "progress backend: json, sqlite or memory")
	fs.String("store-path", "", "progress file, defaults to one inside the data dir")
	fs.String("catalog", "", "catalog file replacing the built-in plans")
	fs.Duration("tick-interval", time.Second, "length of one workout second")
	fs.String("speech-command", "", "text-to-speech command, e.g. espeak")
	fs.String("log-file", "", "log file, defaults to coach.log inside the data dir")
	fs.String("metrics-textfile", "", "write prometheus metrics to this file on exit")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDataDir, DefaultDataDir())
	v.SetDefault(KeyStoreBackend, progress.BackendJSON)
	v.SetDefault(KeyStorePath, "")
	v.SetDefault(KeyCatalogPath, "")
	v.SetDefault(KeyTickInterval, time.Second)
	v.SetDefault(KeySpeechCommand, "")
	v.SetDefault(KeySpeechArgs, []string{})
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogMaxSizeMB, 5)
	v.SetDefault(KeyLogMaxBackups, 3)
	v.SetDefault(KeyLogMaxAgeDays, 28)
	v.SetDefault(KeyMetricsTextfile, "")
}

// Load resolves the configuration. fs may be nil. A config file named with
// --config must exist; the default one is optional.
func Load(v *viper.Viper, fs *pflag.FlagSet) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := ""
	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
		if f := fs.Lookup("config"); f != nil {
			explicit = f.Value.String()
		}
	}
	if explicit == "" {
		explicit = os.Getenv(EnvPrefix + "_CONFIG")
	}

	if explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", explicit, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(DefaultConfigDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.applyDerived()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDerived() {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Path == "" && c.Store.Backend != progress.BackendMemory {
		c.Store.Path = progress.DefaultPath(c.Store.Backend, c.DataDir)
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(c.DataDir, "coach.log")
	}
}

func (c *Config) validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%s is required", KeyDataDir)
	}
	switch c.Store.Backend {
	case progress.BackendJSON, progress.BackendSQLite, progress.BackendMemory:
	default:
		return fmt.Errorf("%s: unknown backend %q", KeyStoreBackend, c.Store.Backend)
	}
	if c.Player.TickInterval <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyTickInterval, c.Player.TickInterval)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation settings cannot be negative")
	}
	if c.Catalog.Path != "" {
		if _, err := os.Stat(c.Catalog.Path); err != nil {
			return fmt.Errorf("%s: %w", KeyCatalogPath, err)
		}
	}
	return nil
}

// XDGConfigHome returns $XDG_CONFIG_HOME or ~/.config
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns $XDG_DATA_HOME or ~/.local/share
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

func DefaultConfigDir() string {
	return filepath.Join(XDGConfigHome(), AppName)
}

func DefaultDataDir() string {
	return filepath.Join(XDGDataHome(), AppName)
}
