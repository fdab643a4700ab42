package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Server struct {
		Addr        string   `mapstructure:"addr"`
		MetricsAddr string   `mapstructure:"metrics_addr"`
		Mode        string   `mapstructure:"mode"`
		CORSOrigins []string `mapstructure:"cors_origins"`
	} `mapstructure:"server"`
	Log struct {
		Level string `mapstructure:"level"`
		Debug bool   `mapstructure:"debug"`
	} `mapstructure:"log"`
	Store struct {
		Driver         string   `mapstructure:"driver"`
		DSN            string   `mapstructure:"dsn"`
		Packs          []string `mapstructure:"packs"`
		ReloadSchedule string   `mapstructure:"reload_schedule"`
	} `mapstructure:"store"`
}

// Load reads config.yaml from path (or ./ and /etc/wildcast when path is
// empty) and overlays WILDCAST_* environment variables, e.g.
// WILDCAST_STORE_DRIVER=sqlite.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WILDCAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.metrics_addr", ":9091")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.debug", false)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.dsn", "data/wildcast.db")
	v.SetDefault("store.packs", []string{})
	v.SetDefault("store.reload_schedule", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/wildcast")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr must not be empty")
	}
	switch c.Server.Mode {
	case "release", "debug", "test":
	default:
		return fmt.Errorf("server.mode %q: want release, debug or test", c.Server.Mode)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Store.Driver {
	case "memory":
		if c.Store.ReloadSchedule != "" && len(c.Store.Packs) == 0 {
			return errors.New("store.reload_schedule is set but store.packs is empty")
		}
	case "sqlite":
		if strings.TrimSpace(c.Store.DSN) == "" {
			return errors.New("store.dsn must be set for the sqlite driver")
		}
		if c.Store.ReloadSchedule != "" {
			return errors.New("store.reload_schedule only applies to the memory driver")
		}
	default:
		return fmt.Errorf("store.driver %q: want memory or sqlite", c.Store.Driver)
	}
	if c.Store.ReloadSchedule != "" {
		if _, err := cron.ParseStandard(c.Store.ReloadSchedule); err != nil {
			return fmt.Errorf("store.reload_schedule: %w", err)
		}
	}
	return nil
}
