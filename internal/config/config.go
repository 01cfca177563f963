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

	"github.com/sungwon/commit-notifier/internal/logger"
	"github.com/sungwon/commit-notifier/internal/wecom"
)

// Config holds all application configuration.
type Config struct {
	WeCom   WeComConfig   `mapstructure:"wecom"`
	Repo    RepoConfig    `mapstructure:"repo"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// WeComConfig holds the WeCom application credentials and message target.
type WeComConfig struct {
	CorpID     string        `mapstructure:"corp_id"`
	CorpSecret string        `mapstructure:"corp_secret"`
	AgentID    int           `mapstructure:"agent_id"`
	UserID     string        `mapstructure:"user_id"`
	Endpoint   string        `mapstructure:"endpoint"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// RepoConfig selects the repository to report on.
type RepoConfig struct {
	Path  string `mapstructure:"path"`
	Count int    `mapstructure:"count"`
	Label string `mapstructure:"label"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	Output    string `mapstructure:"output"`
	FilePath  string `mapstructure:"file_path"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
	MaxFiles  int    `mapstructure:"max_files"`
}

// MetricsConfig controls the optional Pushgateway export.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"repo":      "repo.path",
	"count":     "repo.count",
	"label":     "repo.label",
	"log-level": "logging.level",
}

// Load reads configuration from configPath, which is either a directory
// containing "config.yaml" or the path of a YAML file.
// Environment variables with prefix COMMIT_NOTIFIER_ override file values,
// e.g. COMMIT_NOTIFIER_WECOM_CORP_SECRET overrides wecom.corp_secret.
// Flags in fs that were set explicitly override both; fs may be nil.
func Load(configPath string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	ext := strings.ToLower(filepath.Ext(configPath))
	if ext == ".yaml" || ext == ".yml" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(configPath)
	}

	v.SetEnvPrefix("COMMIT_NOTIFIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.resolveRepo(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("wecom.corp_id", "")
	v.SetDefault("wecom.corp_secret", "")
	v.SetDefault("wecom.agent_id", 0)
	v.SetDefault("wecom.user_id", "")
	v.SetDefault("wecom.endpoint", wecom.DefaultEndpoint)
	v.SetDefault("wecom.timeout", 30*time.Second)

	v.SetDefault("repo.path", "")
	v.SetDefault("repo.count", 5)
	v.SetDefault("repo.label", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.file_path", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_files", 3)

	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "commit_notifier")
}

// resolveRepo fills the repository path from the working directory and the
// label from the path's base name when they are not configured.
func (c *Config) resolveRepo() error {
	if c.Repo.Path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}
		c.Repo.Path = wd
	}
	if c.Repo.Label == "" {
		abs, err := filepath.Abs(c.Repo.Path)
		if err != nil {
			return fmt.Errorf("resolve repo path %s: %w", c.Repo.Path, err)
		}
		c.Repo.Label = filepath.Base(abs)
	}
	return nil
}

// Validate checks the settings needed for a live delivery.
func (c *Config) Validate() error {
	wc := c.WeComSettings()
	if err := wc.Validate(); err != nil {
		return err
	}
	if c.Repo.Count < 0 {
		return errors.New("repo: count must not be negative")
	}
	if c.Logging.Output == "file" && c.Logging.FilePath == "" {
		return errors.New("logging: file_path is required when output is file")
	}
	return nil
}

// WeComSettings converts the wecom section to a wecom.Config.
func (c *Config) WeComSettings() wecom.Config {
	return wecom.Config{
		CorpID:     c.WeCom.CorpID,
		CorpSecret: c.WeCom.CorpSecret,
		AgentID:    c.WeCom.AgentID,
		UserID:     c.WeCom.UserID,
		Endpoint:   c.WeCom.Endpoint,
		Timeout:    c.WeCom.Timeout,
	}
}

// LoggerSettings converts the logging section to a logger.Config.
func (c *Config) LoggerSettings() logger.Config {
	return logger.Config{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		Output:    c.Logging.Output,
		FilePath:  c.Logging.FilePath,
		MaxSizeMB: c.Logging.MaxSizeMB,
		MaxFiles:  c.Logging.MaxFiles,
	}
}
