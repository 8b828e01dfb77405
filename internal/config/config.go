package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. HOMEDASH_STORAGE_DRIVER.
const EnvPrefix = "HOMEDASH"

// Config holds application configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Insight InsightConfig `mapstructure:"insight"`
	User    UserConfig    `mapstructure:"user"`
	Data    DataConfig    `mapstructure:"data"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
}

// StorageConfig selects where the layout is persisted.
type StorageConfig struct {
	// Driver is one of memory, file, sqlite, redis.
	Driver        string `mapstructure:"driver"`
	Path          string `mapstructure:"path"`
	Key           string `mapstructure:"key"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisPrefix   string `mapstructure:"redis_prefix"`
}

// CatalogConfig lists YAML manifests that extend the built-in catalog.
type CatalogConfig struct {
	Manifests []string `mapstructure:"manifests"`
}

// InsightConfig holds generation provider settings.
type InsightConfig struct {
	Provider  string        `mapstructure:"provider"`
	Model     string        `mapstructure:"model"`
	APIKeyEnv string        `mapstructure:"api_key_env"`
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// ResolveAPIKey prefers the inline key, then the environment variable named
// by APIKeyEnv.
func (c InsightConfig) ResolveAPIKey() string {
	if key := strings.TrimSpace(c.APIKey); key != "" {
		return key
	}
	if c.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(c.APIKeyEnv))
}

// UserConfig describes the dashboard owner.
type UserConfig struct {
	Name        string   `mapstructure:"name"`
	Role        string   `mapstructure:"role"`
	Preferences []string `mapstructure:"preferences"`
	Locale      string   `mapstructure:"locale"`
}

// DataConfig selects the snapshot source. RemoteURL wins over Path.
type DataConfig struct {
	Path         string        `mapstructure:"path"`
	RemoteURL    string        `mapstructure:"remote_url"`
	RemoteAPIKey string        `mapstructure:"remote_api_key"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Addr     string `mapstructure:"addr"`
	BasePath string `mapstructure:"base_path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SlogLevel maps Level onto slog, defaulting to info.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DefaultDir is where config and data files live unless overridden.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "homedash")
}

func setDefaults(v *viper.Viper) {
	dir := DefaultDir()
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", filepath.Join(dir, "state"))
	v.SetDefault("storage.key", "dashboard.layout")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.redis_prefix", "homedash:")
	v.SetDefault("catalog.manifests", []string{})
	v.SetDefault("insight.provider", "gemini")
	v.SetDefault("insight.model", "gemini-2.5-flash")
	v.SetDefault("insight.api_key_env", "GEMINI_API_KEY")
	v.SetDefault("insight.api_key", "")
	v.SetDefault("insight.timeout", 30*time.Second)
	v.SetDefault("user.name", "")
	v.SetDefault("user.role", "")
	v.SetDefault("user.preferences", []string{})
	v.SetDefault("user.locale", "en")
	v.SetDefault("data.path", filepath.Join(dir, "snapshot.json"))
	v.SetDefault("data.remote_url", "")
	v.SetDefault("data.remote_api_key", "")
	v.SetDefault("data.cache_ttl", time.Minute)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.base_path", "/")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration from file and env. path overrides HOMEDASH_CONFIG;
// when both are empty config.toml is looked up in DefaultDir. A missing file
// is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigType("toml")
		v.AddConfigPath(DefaultDir())
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return c, c.Validate()
}

// Validate rejects unknown drivers.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "file", "sqlite", "redis":
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}
