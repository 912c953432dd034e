package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "CAMPUS"

// AppName names the per-user data directory.
const AppName = "campus-portal"

// Session store kinds.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreBolt   = "bolt"
)

// Config captures environment driven configuration for the portal and the CLI.
type Config struct {
	BackendURL     string
	BackendTimeout time.Duration
	HTTPPort       int
	SessionStore   string
	SQLiteDSN      string
	BoltPath       string
	Profile        string
	CatalogTTL     time.Duration
	CORSOrigins    []string
	LogLevel       string
	LogFormat      string
	LogFile        string
}

// DevBackendConfig configures the stand-in backend.
type DevBackendConfig struct {
	HTTPPort  int
	JWTSecret string
	TokenTTL  time.Duration
	LogLevel  string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// loadDotEnv reads CAMPUS_ENV_FILE, or ./.env when present. Variables that are
// already set win over the file.
func loadDotEnv() error {
	path := strings.TrimSpace(os.Getenv(EnvPrefix + "_ENV_FILE"))
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

type reader struct {
	v       *viper.Viper
	missing []string
	invalid []string
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}

func (r *reader) str(key string) string {
	return strings.TrimSpace(r.v.GetString(key))
}

func (r *reader) required(key string) string {
	value := r.str(key)
	if value == "" {
		r.missing = append(r.missing, envName(key))
	}
	return value
}

func (r *reader) port(key string) int {
	port, err := strconv.Atoi(r.str(key))
	if err != nil || port <= 0 || port > 65535 {
		r.invalid = append(r.invalid, envName(key))
	}
	return port
}

func (r *reader) duration(key string, allowZero bool) time.Duration {
	d, err := time.ParseDuration(r.str(key))
	if err != nil || d < 0 || (!allowZero && d == 0) {
		r.invalid = append(r.invalid, envName(key))
	}
	return d
}

func (r *reader) oneOf(key string, allowed ...string) string {
	value := strings.ToLower(r.str(key))
	for _, candidate := range allowed {
		if value == candidate {
			return value
		}
	}
	r.invalid = append(r.invalid, envName(key))
	return value
}

func (r *reader) err() error {
	if len(r.missing) > 0 {
		return fmt.Errorf("required environment variables are not set: %s", strings.Join(r.missing, ", "))
	}
	if len(r.invalid) > 0 {
		return fmt.Errorf("environment variables have invalid values: %s", strings.Join(r.invalid, ", "))
	}
	return nil
}

// DefaultBoltPath is the per-user session database used by the CLI.
func DefaultBoltPath() string {
	return filepath.Join(xdg.DataHome, AppName, "session.db")
}

// Load parses configuration values from the environment and an optional .env file.
//
// Optional values fall back to defaults; every missing or malformed value is
// reported in a single error.
func Load() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	v := newViper()
	v.SetDefault("backend_timeout", "30s")
	v.SetDefault("http_port", "8081")
	v.SetDefault("session_store", StoreSQLite)
	v.SetDefault("sqlite_dsn", filepath.Join(xdg.DataHome, AppName, "portal.db"))
	v.SetDefault("bolt_path", DefaultBoltPath())
	v.SetDefault("catalog_ttl", "5m")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	r := &reader{v: v}
	cfg := Config{
		BackendURL:     strings.TrimRight(r.required("backend_url"), "/"),
		BackendTimeout: r.duration("backend_timeout", true),
		HTTPPort:       r.port("http_port"),
		SessionStore:   r.oneOf("session_store", StoreMemory, StoreSQLite, StoreBolt),
		SQLiteDSN:      r.str("sqlite_dsn"),
		BoltPath:       r.str("bolt_path"),
		Profile:        r.str("profile"),
		CatalogTTL:     r.duration("catalog_ttl", false),
		LogLevel:       r.oneOf("log_level", "debug", "info", "warn", "error"),
		LogFormat:      r.oneOf("log_format", "json", "text"),
		LogFile:        r.str("log_file"),
	}

	if cfg.BackendURL != "" {
		if parsed, err := url.Parse(cfg.BackendURL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			r.invalid = append(r.invalid, envName("backend_url"))
		}
	}
	for _, origin := range strings.Split(r.str("cors_origins"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	if err := r.err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDevBackend parses the stand-in backend's configuration.
func LoadDevBackend() (DevBackendConfig, error) {
	if err := loadDotEnv(); err != nil {
		return DevBackendConfig{}, err
	}

	v := newViper()
	v.SetDefault("dev_http_port", "8090")
	v.SetDefault("dev_token_ttl", "2h")
	v.SetDefault("log_level", "info")

	r := &reader{v: v}
	cfg := DevBackendConfig{
		HTTPPort:  r.port("dev_http_port"),
		JWTSecret: r.required("dev_jwt_secret"),
		TokenTTL:  r.duration("dev_token_ttl", false),
		LogLevel:  r.oneOf("log_level", "debug", "info", "warn", "error"),
	}
	if err := r.err(); err != nil {
		return DevBackendConfig{}, err
	}
	return cfg, nil
}
