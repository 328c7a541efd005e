// Package config loads application settings from a config file and
// environment variables. Everything has a default so a bare install works
// with no configuration at all.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "PROMPTKEEP"

// Backend selects where cloud backups live.
const (
	BackendS3   = "s3"
	BackendFile = "file"
	BackendNone = "none"
)

type Config struct {
	DataDir  string `mapstructure:"data_dir"`
	LogFile  string `mapstructure:"log_file"`
	LogLevel string `mapstructure:"log_level"`

	Backup  Backup  `mapstructure:"backup"`
	License License `mapstructure:"license"`

	// SyncOnSave pushes a backup in the background after each local save.
	SyncOnSave bool `mapstructure:"sync_on_save"`

	// Provider names the text generation backend used by run.
	Provider string `mapstructure:"provider"`
}

type Backup struct {
	Backend string `mapstructure:"backend"`

	S3   S3     `mapstructure:"s3"`
	File string `mapstructure:"file"`
}

type S3 struct {
	Bucket          string `mapstructure:"bucket"`
	Key             string `mapstructure:"key"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type License struct {
	ServerURL string `mapstructure:"server_url"`
}

// Load reads configuration from the given file (optional), the default
// locations, and PROMPTKEEP_* environment variables, in ascending priority.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Every key gets a default so environment variables bind without a
	// config file.
	v.SetDefault("data_dir", "")
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("backup.backend", BackendNone)
	v.SetDefault("backup.file", "")
	v.SetDefault("backup.s3.bucket", "")
	v.SetDefault("backup.s3.key", "promptkeep-backup.json")
	v.SetDefault("backup.s3.region", "us-east-1")
	v.SetDefault("backup.s3.endpoint", "")
	v.SetDefault("backup.s3.access_key_id", "")
	v.SetDefault("backup.s3.secret_access_key", "")
	v.SetDefault("license.server_url", "")
	v.SetDefault("sync_on_save", false)
	v.SetDefault("provider", "openai")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.promptkeep")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Backup.Backend {
	case BackendNone:
	case BackendS3:
		if c.Backup.S3.Bucket == "" {
			return errors.New("backup.s3.bucket is required for the s3 backend")
		}
	case BackendFile:
		if c.Backup.File == "" {
			return errors.New("backup.file is required for the file backend")
		}
	default:
		return fmt.Errorf("unknown backup backend %q", c.Backup.Backend)
	}
	return nil
}

// DBPath returns the SQLite database location inside the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "promptkeep.db")
}
