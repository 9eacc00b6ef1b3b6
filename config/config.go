package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. QBTLANG_CATALOGS_DIR.
const EnvPrefix = "QBTLANG"

// Load loads the configuration from file. A missing config file is not an
// error unless configPath names it explicitly.
func Load(configPath string) (*Config, error) {
	// .env values become regular environment variables
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".qbtlang"))
		}

		// Check /etc
		v.AddConfigPath("/etc/qbtlang/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Catalog defaults
	v.SetDefault("catalogs.dir", "lang")
	v.SetDefault("catalogs.prefix", "qbittorrent")
	v.SetDefault("catalogs.locale", "uk")

	// qBittorrent defaults
	v.SetDefault("qbittorrent.enabled", false)
	v.SetDefault("qbittorrent.url", "http://localhost:8080")

	// Store defaults
	v.SetDefault("store.path", "qbtlang.db")

	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.mode", "release")

	// Filter defaults
	v.SetDefault("filter.default_expression", "")

	// Update defaults
	v.SetDefault("update.repository", "s0up4200/qbtlang")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Catalogs.Dir == "" {
		return fmt.Errorf("catalogs.dir is required")
	}

	if cfg.QBittorrent.Enabled && cfg.QBittorrent.URL == "" {
		return fmt.Errorf("qbittorrent.url is required when qbittorrent is enabled")
	}

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", cfg.Server.Port)
	}

	if cfg.Server.Mode != "" {
		validModes := map[string]bool{
			"debug":   true,
			"release": true,
			"test":    true,
		}
		if !validModes[cfg.Server.Mode] {
			return fmt.Errorf("invalid server.mode: %s", cfg.Server.Mode)
		}
	}

	for name, preset := range cfg.Filter.Presets {
		if strings.TrimSpace(preset.Expression) == "" {
			return fmt.Errorf("filter preset '%s' has no expression", name)
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
