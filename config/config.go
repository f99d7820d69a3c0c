// Package config loads slackaudit settings from defaults, .env, an optional
// YAML file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// defaultConfigPaths are searched by Load when no path is given.
var defaultConfigPaths = []string{"config.yaml", "config/config.yaml"}

// Config is the root configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	Archive ArchiveConfig `yaml:"archive"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// APIConfig configures the Audit Logs API client.
type APIConfig struct {
	// Token is an org-level user token with the auditlogs:read scope.
	Token   string `yaml:"token"`
	BaseURL string `yaml:"base_url"`
	// Timeout is in seconds.
	Timeout         int               `yaml:"timeout"`
	Proxy           string            `yaml:"proxy"`
	TrustEnv        bool              `yaml:"trust_env"`
	UserAgentPrefix string            `yaml:"user_agent_prefix"`
	UserAgentSuffix string            `yaml:"user_agent_suffix"`
	DefaultHeaders  map[string]string `yaml:"default_headers"`
	BasicAuth       *BasicAuthConfig  `yaml:"basic_auth"`
	TLS             TLSConfig         `yaml:"tls"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c APIConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// BasicAuthConfig holds proxy or gateway basic credentials.
type BasicAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// TLSConfig points at PEM files for custom trust or client certificates.
type TLSConfig struct {
	CAFile             string `yaml:"ca_file"`
	CertFile           string `yaml:"cert_file"`
	KeyFile            string `yaml:"key_file"`
	ServerName         string `yaml:"server_name"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is auto, pretty, json or text.
	Format string `yaml:"format"`
}

// StorageConfig selects the database backend used by the archive.
type StorageConfig struct {
	// Type is sqlite, postgresql or mongodb.
	Type       string           `yaml:"type"`
	SQLite     SQLiteConfig     `yaml:"sqlite"`
	PostgreSQL PostgreSQLConfig `yaml:"postgresql"`
	MongoDB    MongoDBConfig    `yaml:"mongodb"`
}

// SQLiteConfig holds SQLite settings.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PostgreSQLConfig holds PostgreSQL settings.
type PostgreSQLConfig struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
}

// MongoDBConfig holds MongoDB settings.
type MongoDBConfig struct {
	URL      string `yaml:"url"`
	Database string `yaml:"database"`
}

// ArchiveConfig controls persistence of fetched audit entries.
type ArchiveConfig struct {
	Enabled bool `yaml:"enabled"`
	// RetentionDays prunes archived entries older than this; 0 keeps everything.
	RetentionDays int `yaml:"retention_days"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	// Textfile is where the CLI writes metrics for the node-exporter textfile collector.
	Textfile string `yaml:"textfile"`
}

// LoadResult is the outcome of Load.
type LoadResult struct {
	Config *Config
	// Path is the YAML file that was read, empty when none was found.
	Path string
}

// Load reads .env and the first YAML file found in the default locations.
func Load() (*LoadResult, error) {
	return load("", false)
}

// LoadFile is like Load but reads the YAML file at path, which must exist.
func LoadFile(path string) (*LoadResult, error) {
	if path == "" {
		return Load()
	}
	return load(path, true)
}

func load(path string, required bool) (*LoadResult, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := buildDefaultConfig()

	candidates := defaultConfigPaths
	if required {
		candidates = []string{path}
	}
	usedPath := ""
	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && !required {
				continue
			}
			return nil, fmt.Errorf("failed to read config file %s: %w", candidate, err)
		}
		if err := yaml.Unmarshal([]byte(expandString(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", candidate, err)
		}
		usedPath = candidate
		break
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &LoadResult{Config: cfg, Path: usedPath}, nil
}

// buildDefaultConfig returns the configuration used when nothing is set.
func buildDefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "https://api.slack.com/audit/v1/",
			Timeout: 30,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Storage: StorageConfig{
			Type: "sqlite",
			SQLite: SQLiteConfig{
				Path: "data/slackaudit.db",
			},
			PostgreSQL: PostgreSQLConfig{
				MaxConns: 10,
			},
			MongoDB: MongoDBConfig{
				Database: "slackaudit",
			},
		},
	}
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandString replaces ${VAR} and ${VAR:-default} placeholders.
// A ${VAR} whose variable is unset or empty is left as-is.
func expandString(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := envPattern.FindStringSubmatch(match)
		name, hasDefault, def := parts[1], parts[2] != "", parts[3]
		if val := os.Getenv(name); val != "" {
			return val
		}
		if hasDefault {
			return def
		}
		return match
	})
}

// applyEnvOverrides lets environment variables override file values.
func applyEnvOverrides(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: must be an integer", key, v)
		}
		*dst = n
		return nil
	}
	setBool := func(key string, dst *bool) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: must be a boolean", key, v)
		}
		*dst = b
		return nil
	}

	setString("SLACK_AUDIT_TOKEN", &cfg.API.Token)
	setString("AUDIT_BASE_URL", &cfg.API.BaseURL)
	setString("AUDIT_PROXY", &cfg.API.Proxy)
	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("LOG_FORMAT", &cfg.Log.Format)
	setString("STORAGE_TYPE", &cfg.Storage.Type)
	setString("SQLITE_PATH", &cfg.Storage.SQLite.Path)
	setString("POSTGRES_URL", &cfg.Storage.PostgreSQL.URL)
	setString("MONGODB_URL", &cfg.Storage.MongoDB.URL)
	setString("MONGODB_DATABASE", &cfg.Storage.MongoDB.Database)
	setString("METRICS_TEXTFILE", &cfg.Metrics.Textfile)

	return errors.Join(
		setInt("HTTP_TIMEOUT", &cfg.API.Timeout),
		setInt("POSTGRES_MAX_CONNS", &cfg.Storage.PostgreSQL.MaxConns),
		setInt("ARCHIVE_RETENTION_DAYS", &cfg.Archive.RetentionDays),
		setBool("AUDIT_TRUST_ENV", &cfg.API.TrustEnv),
		setBool("ARCHIVE_ENABLED", &cfg.Archive.Enabled),
		setBool("METRICS_ENABLED", &cfg.Metrics.Enabled),
	)
}

// validate checks the merged configuration. The token is not required here
// so that commands like "version" work without one.
func (c *Config) validate() error {
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %d", c.API.Timeout)
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q must be an absolute URL", c.API.BaseURL)
	}
	if !strings.HasSuffix(c.API.BaseURL, "/") {
		c.API.BaseURL += "/"
	}
	if (c.API.TLS.CertFile == "") != (c.API.TLS.KeyFile == "") {
		return errors.New("api.tls.cert_file and api.tls.key_file must be set together")
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "auto", "pretty", "json", "text":
	default:
		return fmt.Errorf("log.format %q must be one of auto, pretty, json, text", c.Log.Format)
	}

	switch c.Storage.Type {
	case "sqlite":
		if c.Archive.Enabled && c.Storage.SQLite.Path == "" {
			return errors.New("storage.sqlite.path is required")
		}
	case "postgresql":
		if c.Archive.Enabled && c.Storage.PostgreSQL.URL == "" {
			return errors.New("storage.postgresql.url is required")
		}
	case "mongodb":
		if c.Archive.Enabled && c.Storage.MongoDB.URL == "" {
			return errors.New("storage.mongodb.url is required")
		}
	default:
		return fmt.Errorf("unknown storage type: %s (valid: sqlite, postgresql, mongodb)", c.Storage.Type)
	}

	if c.Archive.RetentionDays < 0 {
		return fmt.Errorf("archive.retention_days must not be negative, got %d", c.Archive.RetentionDays)
	}
	return nil
}
