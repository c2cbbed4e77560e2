// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store drivers.
const (
	DriverBadger   = "badger"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the application configuration.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Server ServerConfig
	Store  StoreConfig
	Auth   AuthConfig
	Google GoogleConfig
	Search SearchConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 3000)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	CORSOrigins  []string      // Allowed origins for /api (default: none)
	MaxUpload    int64         // Max compose attachment size in bytes (default: 1 MiB)
}

// StoreConfig selects and locates the persistence backend.
type StoreConfig struct {
	Driver   string // badger, sqlite or postgres (default: badger)
	DataPath string // Directory for badger, sqlite and the search index
	DSN      string // Postgres connection string
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// SessionSecret derives the PASETO key when set. Otherwise a key file
	// under the data path is loaded or generated.
	SessionSecret   string
	KeyPath         string
	SessionDuration time.Duration // default: 720h (30 days)
	CookieName      string
	CookieSecure    bool
}

// GoogleConfig holds the federated provider credentials.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Enabled reports whether Google login can be offered.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

// SearchConfig controls the full-text note index.
type SearchConfig struct {
	Enabled bool
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("leafnote", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	// Server flags
	serverPort := fs.String("port", "", "Server port (default: 3000)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma separated origins allowed to call /api")
	maxUpload := fs.String("max-upload", "", "Max compose attachment size in bytes")

	// Store flags
	storeDriver := fs.String("store", "", "Store driver: badger, sqlite or postgres (default: badger)")
	dataPath := fs.String("data-path", "", "Directory for local data (default: ~/LeafNote)")
	dsn := fs.String("database-url", "", "Postgres connection string")

	// Auth flags
	sessionDuration := fs.String("session-duration", "", "Session lifetime (default: 720h)")
	cookieSecure := fs.String("cookie-secure", "", "Mark the session cookie Secure")

	// Search flags
	searchEnabled := fs.String("search", "", "Enable the full-text note index (default: true)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*serverPort, "PORT", "3000"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "")),
			MaxUpload:   int64(getIntConfigValue(*maxUpload, "MAX_UPLOAD_BYTES", 1<<20)),
		},
		Store: StoreConfig{
			Driver:   strings.ToLower(getConfigValue(*storeDriver, "STORE_DRIVER", DriverBadger)),
			DataPath: getConfigValue(*dataPath, "DATA_PATH", ""),
			DSN:      getConfigValue(*dsn, "DATABASE_URL", ""),
		},
		Auth: AuthConfig{
			SessionSecret: getConfigValue("", "SESSION_SECRET", ""),
			KeyPath:       getConfigValue("", "SESSION_KEY_PATH", ""),
			CookieName:    getConfigValue("", "SESSION_COOKIE_NAME", "leafnote_session"),
			CookieSecure:  getBoolConfigValue(*cookieSecure, "COOKIE_SECURE", false),
		},
		Google: GoogleConfig{
			ClientID:     getConfigValue("", "GOOGLE_CLIENT_ID", ""),
			ClientSecret: getConfigValue("", "GOOGLE_CLIENT_SECRET", ""),
			CallbackURL:  getConfigValue("", "GOOGLE_CALLBACK_URL", "http://localhost:3000/auth/google/callback"),
		},
		Search: SearchConfig{
			Enabled: getBoolConfigValue(*searchEnabled, "SEARCH_ENABLED", true),
		},
	}

	var err error
	if cfg.Auth.SessionDuration, err = parseDuration(*sessionDuration, "SESSION_DURATION", "720h"); err != nil {
		return nil, fmt.Errorf("invalid session duration: %w", err)
	}
	if cfg.Server.ReadTimeout, err = parseDuration(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid read timeout: %w", err)
	}
	if cfg.Server.WriteTimeout, err = parseDuration(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid write timeout: %w", err)
	}
	if cfg.Server.IdleTimeout, err = parseDuration(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, fmt.Errorf("invalid idle timeout: %w", err)
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	if cfg.Auth.KeyPath == "" {
		cfg.Auth.KeyPath = filepath.Join(cfg.Store.DataPath, "auth.key")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Store.Driver {
	case DriverBadger, DriverSQLite:
		if c.Store.DataPath == "" {
			return errors.New("data path cannot be empty after expansion")
		}
	case DriverPostgres:
		if c.Store.DSN == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("invalid store driver: %s (must be badger, sqlite, or postgres)", c.Store.Driver)
	}

	if c.Auth.SessionDuration <= 0 {
		return errors.New("session duration must be positive")
	}
	if c.Auth.CookieName == "" {
		return errors.New("session cookie name cannot be empty")
	}

	// A production deployment must not fall back to a generated key file
	// that differs per replica.
	if c.App.Environment == "production" && c.Auth.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required in production")
	}

	if c.Google.ClientID != "" || c.Google.ClientSecret != "" {
		if !c.Google.Enabled() {
			return errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set together")
		}
		u, err := url.Parse(c.Google.CallbackURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid google callback url: %q", c.Google.CallbackURL)
		}
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath defaults the data path to ~/LeafNote.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Store.DataPath, filepath.Join(homeDir, "LeafNote"))
	if err != nil {
		return err
	}
	c.Store.DataPath = expanded
	return nil
}

func parseDuration(flagValue, envKey, defaultValue string) (time.Duration, error) {
	s := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, err)
	}
	return d, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envKey != "" {
		if envValue := os.Getenv(envKey); envValue != "" {
			return envValue
		}
	}

	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		// Real environment variables win over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
