// Package config provides configuration management for the household ledger.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	Ledger   LedgerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Debug    bool
	Env      string
}

// LedgerConfig represents the on-disk layout of the ledger.
type LedgerConfig struct {
	Root        string
	MappingFile string
}

// DatabaseConfig selects and addresses the store backend.
type DatabaseConfig struct {
	Driver   string // sqlite3 or pgx
	Path     string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// AuthConfig holds the credentials the CLI acts with.
type AuthConfig struct {
	Email    string
	Password string
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	port, err := parseIntEnv("LEDGER_DB_PORT", 5432)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Ledger: LedgerConfig{
			Root:        getEnvOrDefault("LEDGER_ROOT", "./ledger-data"),
			MappingFile: os.Getenv("LEDGER_MAPPING_FILE"),
		},
		Database: DatabaseConfig{
			Driver:   getEnvOrDefault("LEDGER_DB_DRIVER", "sqlite3"),
			Path:     os.Getenv("LEDGER_DB_PATH"),
			Host:     os.Getenv("LEDGER_DB_HOST"),
			Port:     port,
			Name:     os.Getenv("LEDGER_DB_NAME"),
			User:     os.Getenv("LEDGER_DB_USER"),
			Password: os.Getenv("LEDGER_DB_PASSWORD"),
			SSLMode:  getEnvOrDefault("LEDGER_DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			Email:    os.Getenv("LEDGER_EMAIL"),
			Password: os.Getenv("LEDGER_PASSWORD"),
		},
		Debug: os.Getenv("DEBUG") == "true",
		Env:   getEnvOrDefault("LEDGER_ENV", "development"),
	}

	switch config.Database.Driver {
	case "sqlite3", "pgx":
	default:
		return nil, fmt.Errorf("invalid LEDGER_DB_DRIVER: %s (expected sqlite3 or pgx)", config.Database.Driver)
	}

	return config, nil
}

// DSN returns the postgres connection string. It is empty for sqlite3,
// which is addressed by Path instead.
func (d DatabaseConfig) DSN() string {
	if d.Driver != "pgx" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	if d.User != "" {
		if d.Password != "" {
			u.User = url.UserPassword(d.User, d.Password)
		} else {
			u.User = url.User(d.User)
		}
	}
	return u.String()
}

// Validate validates the configuration.
// It checks if all required fields are set.
func (c *Config) Validate(required ...[]string) error {
	var missing []string

	for _, path := range required {
		if len(path) < 2 {
			continue
		}

		var value string
		switch path[0] {
		case "ledger":
			switch path[1] {
			case "root":
				value = c.Ledger.Root
			case "mappingFile":
				value = c.Ledger.MappingFile
			}
		case "database":
			switch path[1] {
			case "path":
				value = c.Database.Path
			case "host":
				value = c.Database.Host
			case "name":
				value = c.Database.Name
			case "user":
				value = c.Database.User
			}
		case "auth":
			switch path[1] {
			case "email":
				value = c.Auth.Email
			case "password":
				value = c.Auth.Password
			}
		}

		if value == "" {
			missing = append(missing, strings.Join(path, "."))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// RequiredForDriver lists the settings the selected backend needs.
func (c *Config) RequiredForDriver() [][]string {
	if c.Database.Driver == "pgx" {
		return [][]string{{"database", "host"}, {"database", "name"}, {"database", "user"}}
	}
	return [][]string{{"ledger", "root"}}
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}

	return parsed, nil
}
