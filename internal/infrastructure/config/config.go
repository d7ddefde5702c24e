package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// AppName names the per-user config and cache directories.
const AppName = "elgato-light"

// Cache backends.
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendNone  = "none"
)

// Config is the root configuration structure for elgato-light.
// All configuration is loaded from YAML or TOML and can be overridden by environment variables.
type Config struct {
	Discovery DiscoveryConfig `yaml:"discovery" toml:"discovery"`
	Cache     CacheConfig     `yaml:"cache" toml:"cache"`
	Device    DeviceConfig    `yaml:"device" toml:"device"`
	Execution ExecutionConfig `yaml:"execution" toml:"execution"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	History   HistoryConfig   `yaml:"history" toml:"history"`
	MQTT      MQTTConfig      `yaml:"mqtt" toml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb" toml:"influxdb"`

	// DefaultAddresses is the comma-separated address list taken from
	// ELGATO_LIGHT_IP. It is never read from the file.
	DefaultAddresses string `yaml:"-" toml:"-"`
}

// DiscoveryConfig contains mDNS discovery settings.
type DiscoveryConfig struct {
	// Enabled set to false makes discovery report itself unsupported.
	Enabled bool `yaml:"enabled" toml:"enabled"`

	// Service is the DNS-SD service type lights advertise.
	Service string `yaml:"service" toml:"service"`

	// Domain is the browse domain.
	Domain string `yaml:"domain" toml:"domain"`

	// Timeout is the default browse window.
	Timeout time.Duration `yaml:"timeout" toml:"timeout"`
}

// CacheConfig contains target cache settings.
type CacheConfig struct {
	// Backend is one of "file", "redis" or "none".
	Backend string `yaml:"backend" toml:"backend"`

	// Path is the cache file location for the file backend.
	// Empty means <user cache dir>/elgato-light/lights.json.
	Path string `yaml:"path" toml:"path"`

	// Verify checks cached targets before trusting them.
	Verify bool `yaml:"verify" toml:"verify"`

	// VerifyTimeout bounds each check.
	VerifyTimeout time.Duration `yaml:"verify_timeout" toml:"verify_timeout"`

	Redis RedisConfig `yaml:"redis" toml:"redis"`
}

// RedisConfig contains the Redis cache backend settings.
type RedisConfig struct {
	URL string        `yaml:"url" toml:"url"`
	Key string        `yaml:"key" toml:"key"`
	TTL time.Duration `yaml:"ttl" toml:"ttl"`
}

// DeviceConfig contains light HTTP API settings.
type DeviceConfig struct {
	// Port is used for explicitly addressed lights.
	Port int `yaml:"port" toml:"port"`

	// RequestTimeout bounds every HTTP request to a light.
	RequestTimeout time.Duration `yaml:"request_timeout" toml:"request_timeout"`
}

// ExecutionConfig contains fan-out settings.
type ExecutionConfig struct {
	// Parallel sends device requests to all targets concurrently.
	Parallel bool `yaml:"parallel" toml:"parallel"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
	Output string `yaml:"output" toml:"output"`
}

// HistoryConfig contains command history database settings.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled     bool             `yaml:"enabled" toml:"enabled"`
	Broker      MQTTBrokerConfig `yaml:"broker" toml:"broker"`
	Auth        MQTTAuthConfig   `yaml:"auth" toml:"auth"`
	QoS         int              `yaml:"qos" toml:"qos"`
	TopicPrefix string           `yaml:"topic_prefix" toml:"topic_prefix"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host" toml:"host"`
	Port     int    `yaml:"port" toml:"port"`
	TLS      bool   `yaml:"tls" toml:"tls"`
	ClientID string `yaml:"client_id" toml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username" toml:"username"`
	Password string `yaml:"password" toml:"password"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled" toml:"enabled"`
	URL           string `yaml:"url" toml:"url"`
	Token         string `yaml:"token" toml:"token"`
	Org           string `yaml:"org" toml:"org"`
	Bucket        string `yaml:"bucket" toml:"bucket"`
	BatchSize     int    `yaml:"batch_size" toml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval" toml:"flush_interval"`
}

// DefaultPath returns <user config dir>/elgato-light/config.yaml, or an empty
// string when the platform has no user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppName, "config.yaml")
}

// Load reads configuration from a file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. File values (override defaults); YAML unless the extension is .toml
//  3. Environment variables (override file values)
//
// An empty path skips step 2.
//
// Parameters:
//   - path: Path to the configuration file, or "" for defaults only
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOptional behaves like Load but treats a missing file as "use defaults".
// It is used for the implicit default path; explicitly requested files go
// through Load so a typo is reported.
func LoadOptional(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}
	return Load(path)
}

// decodeFile parses path into cfg, picking the decoder by extension.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("parsing config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parsing config file: %w", err)
		}
	}

	return nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Discovery: DiscoveryConfig{
			Enabled: true,
			Service: "_elg._tcp",
			Domain:  "local.",
			Timeout: 3 * time.Second,
		},
		Cache: CacheConfig{
			Backend:       CacheBackendFile,
			VerifyTimeout: 500 * time.Millisecond,
			Redis: RedisConfig{
				URL: "redis://localhost:6379/0",
				Key: AppName + ":targets",
			},
		},
		Device: DeviceConfig{
			Port:           9123,
			RequestTimeout: 5 * time.Second,
		},
		Execution: ExecutionConfig{
			Parallel: true,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "auto",
			Output: "stderr",
		},
		History: HistoryConfig{
			Enabled: true,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: AppName,
			},
			QoS:         1,
			TopicPrefix: AppName,
		},
		InfluxDB: InfluxDBConfig{
			URL:           "http://localhost:8086",
			Bucket:        "lights",
			BatchSize:     100,
			FlushInterval: 1,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: ELGATO_LIGHT_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Default light addresses (kept from the single-light tool)
	if v := os.Getenv("ELGATO_LIGHT_IP"); v != "" {
		cfg.DefaultAddresses = v
	}

	// Cache
	if v := os.Getenv("ELGATO_LIGHT_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("ELGATO_LIGHT_CACHE_PATH"); v != "" {
		cfg.Cache.Path = v
	}
	if v := os.Getenv("ELGATO_LIGHT_REDIS_URL"); v != "" {
		cfg.Cache.Redis.URL = v
	}

	// Logging
	if v := os.Getenv("ELGATO_LIGHT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// History
	if v := os.Getenv("ELGATO_LIGHT_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}

	// MQTT
	if v := os.Getenv("ELGATO_LIGHT_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("ELGATO_LIGHT_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("ELGATO_LIGHT_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("ELGATO_LIGHT_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Discovery validation
	if c.Discovery.Service == "" {
		errs = append(errs, "discovery.service is required")
	}
	if c.Discovery.Timeout <= 0 {
		errs = append(errs, "discovery.timeout must be positive")
	}

	// Cache validation
	switch c.Cache.Backend {
	case CacheBackendFile, CacheBackendNone:
	case CacheBackendRedis:
		if c.Cache.Redis.URL == "" {
			errs = append(errs, "cache.redis.url is required for the redis backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("cache.backend must be %q, %q or %q", CacheBackendFile, CacheBackendRedis, CacheBackendNone))
	}
	if c.Cache.Verify && c.Cache.VerifyTimeout <= 0 {
		errs = append(errs, "cache.verify_timeout must be positive when cache.verify is set")
	}

	// Device validation
	if c.Device.Port < 1 || c.Device.Port > 65535 {
		errs = append(errs, "device.port must be between 1 and 65535")
	}
	if c.Device.RequestTimeout <= 0 {
		errs = append(errs, "device.request_timeout must be positive")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url and influxdb.bucket are required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// CachePath returns the resolved cache file path.
func (c *Config) CachePath() string {
	return userCacheFile(c.Cache.Path, "lights.json")
}

// HistoryPath returns the resolved history database path.
func (c *Config) HistoryPath() string {
	return userCacheFile(c.History.Path, "history.db")
}

// userCacheFile returns configured when set, otherwise name inside the
// per-user cache directory. It returns "" when neither is available.
func userCacheFile(configured, name string) string {
	if configured != "" {
		return configured
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppName, name)
}
