package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Services   ServicesConfig   `mapstructure:"services"`
	Images     ImagesConfig     `mapstructure:"images"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Health     HealthConfig     `mapstructure:"health"`
	Lists      ListsConfig      `mapstructure:"lists"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// AuthConfig holds authentication configuration.
// An empty JWTSecret disables token verification; tokens are still forwarded upstream.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// ServicesConfig holds the upstream services the pipeline talks to.
type ServicesConfig struct {
	Movies   ServiceConfig `mapstructure:"movies"`
	Shows    ServiceConfig `mapstructure:"shows"`
	UserData ServiceConfig `mapstructure:"userdata"`
}

// ServiceConfig describes one upstream REST service.
type ServiceConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

// ImagesConfig holds the image base used for relative poster paths.
type ImagesConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// EnrichmentConfig tunes the batch orchestrator.
type EnrichmentConfig struct {
	MaxConcurrency int `mapstructure:"max_concurrency"` // 0 = unbounded
}

// CacheConfig configures the detail response cache.
type CacheConfig struct {
	DetailTTLMinutes int `mapstructure:"detail_ttl_minutes"` // 0 disables the cache
	MaxItems         int `mapstructure:"max_items"`
}

// HealthConfig configures the upstream health probe task.
type HealthConfig struct {
	Cron string `mapstructure:"cron"`
}

// ListsConfig controls how long list views are remembered.
type ListsConfig struct {
	ViewIdleMinutes int `mapstructure:"view_idle_minutes"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Services: ServicesConfig{
			Movies:   ServiceConfig{Timeout: 10},
			Shows:    ServiceConfig{Timeout: 10},
			UserData: ServiceConfig{Timeout: 10},
		},
		Images: ImagesConfig{
			BaseURL: DefaultImageBaseURL,
		},
		Cache: CacheConfig{
			DetailTTLMinutes: 10,
			MaxItems:         1000,
		},
		Health: HealthConfig{
			Cron: "*/5 * * * *",
		},
		Lists: ListsConfig{
			ViewIdleMinutes: 60,
		},
	}
}

// DefaultImageBaseURL is prepended to relative poster paths.
const DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"

// Load reads configuration from file and environment variables.
// Priority: environment variables (including .env) > config file > defaults
func Load(configPath string) (*Config, error) {
	// .env is optional; real environment variables win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.pibble")
	}

	v.SetEnvPrefix("PIBBLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.path", d.Logging.Path)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)
	v.SetDefault("logging.compress", d.Logging.Compress)

	v.SetDefault("auth.jwt_secret", "")

	for _, name := range []string{"movies", "shows", "userdata"} {
		v.SetDefault("services."+name+".base_url", "")
		v.SetDefault("services."+name+".timeout", 10)
	}

	v.SetDefault("images.base_url", d.Images.BaseURL)
	v.SetDefault("enrichment.max_concurrency", d.Enrichment.MaxConcurrency)
	v.SetDefault("cache.detail_ttl_minutes", d.Cache.DetailTTLMinutes)
	v.SetDefault("cache.max_items", d.Cache.MaxItems)
	v.SetDefault("health.cron", d.Health.Cron)
	v.SetDefault("lists.view_idle_minutes", d.Lists.ViewIdleMinutes)
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
