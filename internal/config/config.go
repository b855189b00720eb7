// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the configuration for the HTTP API, the storage engine, the
// metastore and optional remote staging backends.
type Config struct {
	ListenAddr  string // HTTP listen address (default ":8080")
	DuckDBPath  string // DuckDB database file; empty string means in-memory
	MetaDBPath  string // path to SQLite metadata file (control plane)
	PublicDir   string // root that publicFileName values resolve under (default "public")
	DataDir     string // directory scanned by discovery (default "<PublicDir>/data")
	StagingDir  string // local directory for staged remote sources
	LogLevel    string // log level: debug, info, warn, error (default "info")
	LogFormat   string // "json" (default) or "text"
	Env         string // environment: "development" (default) or "production"
	DefaultUser string // principal used when a request carries no user header

	DefaultRowLimit int    // rows ingested when a request gives no limit; 0 = all
	AutoLoadEnabled bool   // import the newest data file at startup
	AutoLoadUser    string // principal recorded for auto-loaded datasets

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 20)
	RateLimitBurst int     // burst capacity (default 40)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	// Remote staging backends are optional: nil/empty when not configured.
	S3KeyID          *string
	S3Secret         *string
	S3Endpoint       *string
	S3Region         *string
	GCSKeyFile       string
	AzureAccountName string
	AzureAccountKey  string

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// fileConfig is the YAML overlay read from CONFIG_FILE. Environment
// variables take precedence over every field.
type fileConfig struct {
	ListenAddr         string   `yaml:"listen_addr"`
	DuckDBPath         *string  `yaml:"duckdb_path"`
	MetaDBPath         string   `yaml:"meta_db_path"`
	PublicDir          string   `yaml:"public_dir"`
	DataDir            string   `yaml:"data_dir"`
	StagingDir         string   `yaml:"staging_dir"`
	LogLevel           string   `yaml:"log_level"`
	LogFormat          string   `yaml:"log_format"`
	Env                string   `yaml:"env"`
	DefaultUser        string   `yaml:"default_user"`
	DefaultRowLimit    int      `yaml:"default_row_limit"`
	AutoLoadEnabled    *bool    `yaml:"autoload_enabled"`
	AutoLoadUser       string   `yaml:"autoload_user"`
	RateLimitRPS       float64  `yaml:"rate_limit_rps"`
	RateLimitBurst     int      `yaml:"rate_limit_burst"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	S3                 struct {
		KeyID    string `yaml:"key_id"`
		Secret   string `yaml:"secret"`
		Endpoint string `yaml:"endpoint"`
		Region   string `yaml:"region"`
	} `yaml:"s3"`
	GCSKeyFile string `yaml:"gcs_key_file"`
	Azure      struct {
		AccountName string `yaml:"account_name"`
		AccountKey  string `yaml:"account_key"`
	} `yaml:"azure"`
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
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

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// HasS3Config returns true if the S3 credentials are set. Endpoint and
// region fall back to AWS defaults.
func (c *Config) HasS3Config() bool {
	return c.S3KeyID != nil && c.S3Secret != nil
}

// HasGCSConfig returns true if a GCS service-account key file is set.
func (c *Config) HasGCSConfig() bool {
	return c.GCSKeyFile != ""
}

// HasAzureConfig returns true if Azure shared-key credentials are set.
func (c *Config) HasAzureConfig() bool {
	return c.AzureAccountName != "" && c.AzureAccountKey != ""
}

// LoadFromEnv loads configuration from environment variables, on top of the
// YAML file named by CONFIG_FILE when that is set.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{DuckDBPath: "duck_sheets.duckdb"}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	setString(&cfg.ListenAddr, "LISTEN_ADDR")
	if v, ok := os.LookupEnv("DUCKDB_PATH"); ok {
		cfg.DuckDBPath = v
	}
	setString(&cfg.MetaDBPath, "META_DB_PATH")
	setString(&cfg.PublicDir, "PUBLIC_DIR")
	setString(&cfg.DataDir, "DATA_DIR")
	setString(&cfg.StagingDir, "STAGING_DIR")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	setString(&cfg.Env, "ENV")
	setString(&cfg.DefaultUser, "DEFAULT_USER")
	setString(&cfg.AutoLoadUser, "AUTOLOAD_USER")
	cfg.AutoLoadEnabled = parseBoolEnvDefault("AUTOLOAD_ENABLED", cfg.AutoLoadEnabled)

	if v := os.Getenv("DEFAULT_ROW_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("DEFAULT_ROW_LIMIT must be a non-negative integer, got %q", v)
		}
		cfg.DefaultRowLimit = n
	}

	// Rate limiting
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}

	// Staging backends are optional; only set if present
	setOptional(&cfg.S3KeyID, "S3_KEY_ID")
	setOptional(&cfg.S3Secret, "S3_SECRET")
	setOptional(&cfg.S3Endpoint, "S3_ENDPOINT")
	setOptional(&cfg.S3Region, "S3_REGION")
	setString(&cfg.GCSKeyFile, "GCS_KEY_FILE")
	setString(&cfg.AzureAccountName, "AZURE_ACCOUNT_NAME")
	setString(&cfg.AzureAccountKey, "AZURE_ACCOUNT_KEY")

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = compactNonEmpty(origins)
	}

	// Defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.MetaDBPath == "" {
		cfg.MetaDBPath = "duck_sheets_meta.sqlite"
	}
	if cfg.PublicDir == "" {
		cfg.PublicDir = "public"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(cfg.PublicDir, "data")
	}
	if cfg.StagingDir == "" {
		cfg.StagingDir = filepath.Join(os.TempDir(), "duck-sheets-staging")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}
	if cfg.DefaultUser == "" {
		cfg.DefaultUser = "anonymous"
	}
	if cfg.AutoLoadUser == "" {
		cfg.AutoLoadUser = "system"
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 20
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 40
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("LOG_FORMAT must be \"json\" or \"text\", got %q", cfg.LogFormat)
	}
	if (cfg.S3KeyID == nil) != (cfg.S3Secret == nil) {
		cfg.Warnings = append(cfg.Warnings, "S3 staging disabled: set both S3_KEY_ID and S3_SECRET")
	}
	if (cfg.AzureAccountName == "") != (cfg.AzureAccountKey == "") {
		cfg.Warnings = append(cfg.Warnings, "Azure staging disabled: set both AZURE_ACCOUNT_NAME and AZURE_ACCOUNT_KEY")
	}
	if cfg.DuckDBPath == "" {
		cfg.Warnings = append(cfg.Warnings, "DUCKDB_PATH is empty: datasets are kept in memory and lost on restart")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
		if cfg.DuckDBPath == "" {
			return nil, fmt.Errorf("DUCKDB_PATH must be set in production (ENV=production)")
		}
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-controlled
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	cfg.ListenAddr = fc.ListenAddr
	if fc.DuckDBPath != nil {
		cfg.DuckDBPath = *fc.DuckDBPath
	}
	cfg.MetaDBPath = fc.MetaDBPath
	cfg.PublicDir = fc.PublicDir
	cfg.DataDir = fc.DataDir
	cfg.StagingDir = fc.StagingDir
	cfg.LogLevel = fc.LogLevel
	cfg.LogFormat = fc.LogFormat
	cfg.Env = fc.Env
	cfg.DefaultUser = fc.DefaultUser
	cfg.DefaultRowLimit = fc.DefaultRowLimit
	if fc.AutoLoadEnabled != nil {
		cfg.AutoLoadEnabled = *fc.AutoLoadEnabled
	}
	cfg.AutoLoadUser = fc.AutoLoadUser
	cfg.RateLimitRPS = fc.RateLimitRPS
	cfg.RateLimitBurst = fc.RateLimitBurst
	cfg.CORSAllowedOrigins = compactNonEmpty(fc.CORSAllowedOrigins)
	cfg.S3KeyID = nonEmptyPtr(fc.S3.KeyID)
	cfg.S3Secret = nonEmptyPtr(fc.S3.Secret)
	cfg.S3Endpoint = nonEmptyPtr(fc.S3.Endpoint)
	cfg.S3Region = nonEmptyPtr(fc.S3.Region)
	cfg.GCSKeyFile = fc.GCSKeyFile
	cfg.AzureAccountName = fc.Azure.AccountName
	cfg.AzureAccountKey = fc.Azure.AccountKey

	if fc.DefaultRowLimit < 0 {
		return fmt.Errorf("config file %s: default_row_limit must not be negative", path)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setOptional(dst **string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = &v
	}
}

func nonEmptyPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return defaultVal
	}
	if v == "0" || v == "false" || v == "no" || v == "off" {
		return false
	}
	if v == "1" || v == "true" || v == "yes" || v == "on" {
		return true
	}
	return defaultVal
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
