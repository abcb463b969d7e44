// Package config loads PlayPalace server configuration from flags and an
// optional .env file.
package config

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the PlayPalace server.
type Config struct {
	Host string
	Port int

	SSLCertFile string
	SSLKeyFile  string

	StatusFile string

	DBType string // "sqlite" or "postgres"
	DBDSN  string // sqlite file path, or postgres connection string

	DBMaxConnections int
	DBMaxIdleConns   int

	RedisEnabled bool
	RedisAddr    string
	RedisDB      int

	LocalesDir string

	ShutdownTimeoutSecs int
}

var defaultConfig = Config{
	Host:                "0.0.0.0",
	Port:                8000,
	DBType:              "sqlite",
	DBDSN:               "data/playpalace.db",
	DBMaxConnections:    25,
	DBMaxIdleConns:      5,
	RedisEnabled:        false,
	RedisAddr:           "localhost:6379",
	RedisDB:             0,
	LocalesDir:          "locales",
	ShutdownTimeoutSecs: 30,
}

// Load parses CLI flags, overlays a .env-style file (if present), re-applies
// the flags given on the command line, validates the result, and returns the
// final Config.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("playpalace-server", flag.ContinueOnError)

	cfg := defaultConfig

	envFile := fs.String("env", ".env", "path to environment configuration file")
	fs.StringVar(&cfg.Host, "host", cfg.Host, "address to bind to")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "port to listen on")
	fs.StringVar(&cfg.SSLCertFile, "ssl-cert", "", "TLS certificate file (requires -ssl-key)")
	fs.StringVar(&cfg.SSLKeyFile, "ssl-key", "", "TLS private key file (requires -ssl-cert)")
	fs.StringVar(&cfg.StatusFile, "status-file", "", "optional path to write a JSON status file to")
	fs.StringVar(&cfg.DBType, "db-type", cfg.DBType, "database driver: sqlite or postgres")
	fs.StringVar(&cfg.DBDSN, "db-dsn", cfg.DBDSN, "sqlite file path or postgres DSN")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", "", "optional redis address for presence caching")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := loadEnvFile(*envFile, &cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load config file %s: %w", *envFile, err)
	}
	// Parse again so flags given on the command line win over the file.
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.RedisAddr != "" {
		cfg.RedisEnabled = true
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile overlays key=value pairs from a .env-style file onto cfg,
// overwriting whatever each key's field held. Flags explicitly set on the
// command line still win, because Load parses them again after this runs.
func loadEnvFile(filename string, cfg *Config) error {
	values, err := godotenv.Read(filename)
	if err != nil {
		return err
	}

	for key, value := range values {
		switch key {
		case "HOST":
			cfg.Host = value
		case "PORT":
			if _, err := fmt.Sscanf(value, "%d", &cfg.Port); err != nil {
				log.Printf("warning: invalid PORT in %s: %v", filename, err)
			}
		case "SSL_CERT_FILE":
			cfg.SSLCertFile = value
		case "SSL_KEY_FILE":
			cfg.SSLKeyFile = value
		case "STATUS_FILE":
			cfg.StatusFile = value
		case "DB_TYPE":
			cfg.DBType = value
		case "DB_DSN":
			cfg.DBDSN = value
		case "DB_MAX_CONNECTIONS":
			fmt.Sscanf(value, "%d", &cfg.DBMaxConnections)
		case "DB_MAX_IDLE_CONNS":
			fmt.Sscanf(value, "%d", &cfg.DBMaxIdleConns)
		case "REDIS_ADDR":
			cfg.RedisAddr = value
		case "REDIS_DB":
			fmt.Sscanf(value, "%d", &cfg.RedisDB)
		case "LOCALES_DIR":
			cfg.LocalesDir = value
		case "SHUTDOWN_TIMEOUT_SECS":
			fmt.Sscanf(value, "%d", &cfg.ShutdownTimeoutSecs)
		default:
			log.Printf("warning: unknown configuration key in %s: %s", filename, key)
		}
	}

	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}

	if cfg.DBType != "sqlite" && cfg.DBType != "postgres" {
		return fmt.Errorf("db-type must be 'sqlite' or 'postgres', got %q", cfg.DBType)
	}

	if cfg.DBDSN == "" {
		return fmt.Errorf("db-dsn cannot be empty")
	}

	if (cfg.SSLCertFile == "") != (cfg.SSLKeyFile == "") {
		return fmt.Errorf("ssl-cert and ssl-key must both be set or both be empty")
	}

	if cfg.ShutdownTimeoutSecs < 1 {
		return fmt.Errorf("shutdown-timeout-secs must be at least 1")
	}

	return nil
}

// UseTLS reports whether both a certificate and key were configured.
func (c *Config) UseTLS() bool {
	return c.SSLCertFile != "" && c.SSLKeyFile != ""
}

// ListenAddress returns the full host:port listen address.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig prints the active configuration, omitting sensitive values.
func (c *Config) LogConfig() {
	log.Println("=== PlayPalace server configuration ===")
	log.Printf("Listen address: %s", c.ListenAddress())
	log.Printf("TLS enabled: %v", c.UseTLS())
	log.Printf("Database: %s (%s)", c.DBType, c.DBDSN)
	log.Printf("Redis presence cache: %v", c.RedisEnabled)
	log.Printf("Locales dir: %s", c.LocalesDir)
	log.Println("========================================")
}
