package bulkdml

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// DefaultTimestampLayout renders timestamps the way MySQL DATETIME literals are written.
const DefaultTimestampLayout = "2006-01-02 15:04:05"

// Config represents the bulkdml configuration
type Config struct {
	Dialect            string              `yaml:"dialect"`
	DefaultEnvironment string              `yaml:"default_environment"`
	Timeout            int                 `yaml:"timeout"` // seconds
	TimestampLayout    string              `yaml:"timestamp_layout"`
	Databases          map[string]Database `yaml:"databases"`
	Update             UpdateConfig        `yaml:"update"`
	Insert             InsertConfig        `yaml:"insert"`
}

// Database represents database connection configuration
type Database struct {
	Driver     string `yaml:"driver"`
	Connection string `yaml:"connection"`
}

// UpdateConfig holds defaults for update-many statements
type UpdateConfig struct {
	Key             string `yaml:"key"`
	UpdatedAtColumn string `yaml:"updated_at_column"`
	Timestamps      *bool  `yaml:"timestamps"` // Pointer to distinguish between unset and false. If nil, timestamps are enabled
	BindParameters  bool   `yaml:"bind_parameters"`
	ChunkSize       int    `yaml:"chunk_size"`
}

// InsertConfig holds defaults for insert-many statements
type InsertConfig struct {
	CreatedAtColumn string `yaml:"created_at_column"`
	UpdatedAtColumn string `yaml:"updated_at_column"`
	Timestamps      *bool  `yaml:"timestamps"`
	ChunkSize       int    `yaml:"chunk_size"`
}

// TimestampsEnabled returns true unless timestamps: false is set
func (u UpdateConfig) TimestampsEnabled() bool {
	return u.Timestamps == nil || *u.Timestamps
}

// TimestampsEnabled returns true unless timestamps: false is set
func (i InsertConfig) TimestampsEnabled() bool {
	return i.Timestamps == nil || *i.Timestamps
}

// ParsedDialect returns the configured dialect as a Dialect value.
func (c *Config) ParsedDialect() (Dialect, error) {
	return ParseDialect(c.Dialect)
}

// QueryTimeout returns the statement timeout, zero meaning none.
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		config := getDefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML with strict mode to detect unknown fields
	var config Config

	err = yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	expandConfigEnvVars(&config)

	return &config, nil
}

// validateConfig validates the configuration for common errors and inconsistencies
func validateConfig(config *Config) error {
	if _, err := ParseDialect(config.Dialect); err != nil {
		return fmt.Errorf("%w: invalid dialect '%s': must be one of mysql, mariadb, postgres, sqlite", ErrConfigValidation, config.Dialect)
	}

	if config.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be non-negative, got %d", ErrConfigValidation, config.Timeout)
	}

	if config.Update.ChunkSize < 0 {
		return fmt.Errorf("%w: update.chunk_size must be non-negative, got %d", ErrConfigValidation, config.Update.ChunkSize)
	}

	if config.Insert.ChunkSize < 0 {
		return fmt.Errorf("%w: insert.chunk_size must be non-negative, got %d", ErrConfigValidation, config.Insert.ChunkSize)
	}

	if config.Update.Key == "" {
		return fmt.Errorf("%w: update.key must not be empty", ErrConfigValidation)
	}

	for name, db := range config.Databases {
		if db.Driver == "" {
			return fmt.Errorf("%w: databases.%s.driver is required", ErrConfigValidation, name)
		}
	}

	if config.DefaultEnvironment != "" && len(config.Databases) > 0 {
		if _, ok := config.Databases[config.DefaultEnvironment]; !ok {
			return fmt.Errorf("%w: default_environment '%s' is not defined in databases", ErrConfigValidation, config.DefaultEnvironment)
		}
	}

	return nil
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	return &Config{
		Dialect:            string(DialectMySQL),
		DefaultEnvironment: "development",
		Timeout:            30,
		TimestampLayout:    DefaultTimestampLayout,
		Databases:          make(map[string]Database),
		Update: UpdateConfig{
			Key:             "id",
			UpdatedAtColumn: "updated_at",
		},
		Insert: InsertConfig{
			CreatedAtColumn: "created_at",
			UpdatedAtColumn: "updated_at",
		},
	}
}

// applyDefaults applies default values to missing configuration fields
func applyDefaults(config *Config) {
	defaults := getDefaultConfig()

	if config.Dialect == "" {
		config.Dialect = defaults.Dialect
	}

	if config.TimestampLayout == "" {
		config.TimestampLayout = defaults.TimestampLayout
	}

	if config.Databases == nil {
		config.Databases = make(map[string]Database)
	}

	if config.Update.Key == "" {
		config.Update.Key = defaults.Update.Key
	}

	if config.Update.UpdatedAtColumn == "" {
		config.Update.UpdatedAtColumn = defaults.Update.UpdatedAtColumn
	}

	if config.Insert.CreatedAtColumn == "" {
		config.Insert.CreatedAtColumn = defaults.Insert.CreatedAtColumn
	}

	if config.Insert.UpdatedAtColumn == "" {
		config.Insert.UpdatedAtColumn = defaults.Insert.UpdatedAtColumn
	}
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	// Try to load .env file from current directory
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	bareEnvVar   = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})

	return bareEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
}

// expandConfigEnvVars expands environment variables in database settings
func expandConfigEnvVars(config *Config) {
	for name, db := range config.Databases {
		db.Connection = expandEnvVars(db.Connection)
		db.Driver = expandEnvVars(db.Driver)
		config.Databases[name] = db
	}
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
