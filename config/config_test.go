package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Catalogs: CatalogsConfig{Dir: "lang", Prefix: "qbittorrent"},
		Server:   ServerConfig{Port: 8090, Mode: "release"},
		Logging:  LoggingConfig{Level: "info", Format: "console"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "missing catalog dir",
			mutate:  func(cfg *Config) { cfg.Catalogs.Dir = "" },
			wantErr: "catalogs.dir is required",
		},
		{
			name: "qbittorrent enabled without url",
			mutate: func(cfg *Config) {
				cfg.QBittorrent.Enabled = true
			},
			wantErr: "qbittorrent.url is required",
		},
		{
			name:    "port out of range",
			mutate:  func(cfg *Config) { cfg.Server.Port = 70000 },
			wantErr: "invalid server.port: 70000",
		},
		{
			name:    "invalid server mode",
			mutate:  func(cfg *Config) { cfg.Server.Mode = "prod" },
			wantErr: "invalid server.mode: prod",
		},
		{
			name: "empty preset",
			mutate: func(cfg *Config) {
				cfg.Filter.Presets = map[string]PresetConfig{"todo": {}}
			},
			wantErr: "filter preset 'todo' has no expression",
		},
		{
			name:    "invalid logging level",
			mutate:  func(cfg *Config) { cfg.Logging.Level = "trace" },
			wantErr: "invalid logging level: trace",
		},
		{
			name:    "invalid logging format",
			mutate:  func(cfg *Config) { cfg.Logging.Format = "xml" },
			wantErr: "invalid logging format: xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
catalogs:
  dir: /srv/lang
  locale: uk_UA
server:
  port: 9000
filter:
  presets:
    untranslated:
      expression: "Unfinished"
      description: "Messages still waiting for a translator"
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/lang", cfg.Catalogs.Dir)
	assert.Equal(t, "uk_UA", cfg.Catalogs.Locale)
	assert.Equal(t, "qbittorrent", cfg.Catalogs.Prefix)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	require.Contains(t, cfg.Filter.Presets, "untranslated")
	assert.Equal(t, "Unfinished", cfg.Filter.Presets["untranslated"].Expression)
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("catalogs:\n  dir: lang\n"), 0o644))
	t.Setenv("QBTLANG_CATALOGS_DIR", "/opt/lang")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/lang", cfg.Catalogs.Dir)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config")
}

func TestLoadInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  format: xml\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid logging format")
}
