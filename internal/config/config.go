package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database  DatabaseConfig
	Staging   StagingConfig
	Scheduler SchedulerConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// StagingConfig holds channel TTLs and drain behavior.
type StagingConfig struct {
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
	ItemTTL    time.Duration `mapstructure:"item_ttl"`
	KeepStaged bool          `mapstructure:"keep_staged"`
}

// SchedulerConfig tunes the drain trigger multiplexer.
type SchedulerConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Debounce     time.Duration `mapstructure:"debounce"`
}

// Load reads configuration from file and env. Env var overrides use prefix TENDERSTAGE_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "tenderstage", "tenderstage.db"))
	v.SetDefault("staging.default_ttl", "24h")
	v.SetDefault("staging.item_ttl", "48h")
	v.SetDefault("staging.keep_staged", false)
	v.SetDefault("scheduler.poll_interval", "30s")
	v.SetDefault("scheduler.debounce", "250ms")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("TENDERSTAGE_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "tenderstage"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("TENDERSTAGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Staging.DefaultTTL <= 0 {
		return Config{}, fmt.Errorf("staging.default_ttl must be positive, got %s", c.Staging.DefaultTTL)
	}
	if c.Staging.ItemTTL <= 0 {
		return Config{}, fmt.Errorf("staging.item_ttl must be positive, got %s", c.Staging.ItemTTL)
	}
	return c, nil
}
