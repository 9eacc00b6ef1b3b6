package config

// Config represents the complete configuration structure
type Config struct {
	Catalogs    CatalogsConfig    `mapstructure:"catalogs"`
	QBittorrent QBittorrentConfig `mapstructure:"qbittorrent"`
	Store       StoreConfig       `mapstructure:"store"`
	Server      ServerConfig      `mapstructure:"server"`
	Filter      FilterConfig      `mapstructure:"filter"`
	Update      UpdateConfig      `mapstructure:"update"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// CatalogsConfig locates the translation catalogs
type CatalogsConfig struct {
	Dir    string `mapstructure:"dir"`
	Prefix string `mapstructure:"prefix"`
	Locale string `mapstructure:"locale"`
}

// QBittorrentConfig holds qBittorrent Web UI connection details
type QBittorrentConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// StoreConfig holds the sqlite catalog store settings
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig holds the lookup API listener settings
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// FilterConfig contains message filter definitions
type FilterConfig struct {
	DefaultExpression string                  `mapstructure:"default_expression"`
	Presets           map[string]PresetConfig `mapstructure:"presets"`
}

// PresetConfig is a named filter expression
type PresetConfig struct {
	Expression  string `mapstructure:"expression"`
	Description string `mapstructure:"description"`
}

// UpdateConfig configures self-update
type UpdateConfig struct {
	Repository string `mapstructure:"repository"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
