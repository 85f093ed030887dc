package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override their config file counterparts. Secrets
// in particular are expected to come from the environment on shared machines.
const (
	EnvDatabaseURL       = "RECALL_DATABASE_URL"
	EnvPocketConsumerKey = "RECALL_POCKET_CONSUMER_KEY"
	EnvSendGridAPIKey    = "RECALL_SENDGRID_API_KEY"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Trends      TrendsConfig      `toml:"trends"`
	Sync        SyncConfig        `toml:"sync"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Pocket   PocketConfig   `toml:"pocket"`
	SendGrid SendGridConfig `toml:"sendgrid"`
}

// PocketConfig contains Pocket API credentials.
type PocketConfig struct {
	ConsumerKey string `toml:"consumer_key"`
	RedirectURI string `toml:"redirect_uri"`
}

// SendGridConfig contains SendGrid mail credentials.
type SendGridConfig struct {
	APIKey    string `toml:"api_key"`
	FromEmail string `toml:"from_email"`
}

// DatabaseConfig contains database connection settings.
//
// URL selects the backend: a postgres:// or postgresql:// DSN opens
// PostgreSQL, any other value is treated as a SQLite file path.
type DatabaseConfig struct {
	URL          string `toml:"url"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the local OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// TrendsConfig contains Google Trends query settings.
type TrendsConfig struct {
	Geo  string `toml:"geo"`
	Days int    `toml:"days"`
}

// SyncConfig contains saved-item synchronization settings.
type SyncConfig struct {
	PageSize int `toml:"page_size"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Environment variables listed above override their file counterparts.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	config.applyEnv()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyEnv()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv(EnvPocketConsumerKey); v != "" {
		c.Credentials.Pocket.ConsumerKey = v
	}
	if v := os.Getenv(EnvSendGridAPIKey); v != "" {
		c.Credentials.SendGrid.APIKey = v
	}
}
