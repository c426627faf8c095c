package bulkdml

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestLoadConfig_StrictMode_UnknownKeys(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bulkdml.yaml")

	configContent := `
dialect: "mysql"
unknown_key: "should cause error"
update:
  key: id
  unknown_update_key: "should also cause error"
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	_, err = LoadConfig(configPath)
	assert.Error(t, err, "expected error for unknown keys in strict mode")
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadConfig_InvalidValueIsRejected(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bulkdml.yaml")

	err := os.WriteFile(configPath, []byte("dialect: oracle\n"), 0644)
	assert.NoError(t, err)

	_, err = LoadConfig(configPath)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigValidation))
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		config := getDefaultConfig()
		config.Databases["development"] = Database{Driver: "mysql", Connection: "dsn"}

		return config
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{"valid", func(*Config) {}, ""},
		{"invalid dialect", func(c *Config) { c.Dialect = "oracle" }, "invalid dialect"},
		{"negative timeout", func(c *Config) { c.Timeout = -1 }, "timeout must be non-negative"},
		{"negative update chunk", func(c *Config) { c.Update.ChunkSize = -5 }, "update.chunk_size"},
		{"negative insert chunk", func(c *Config) { c.Insert.ChunkSize = -5 }, "insert.chunk_size"},
		{"empty key", func(c *Config) { c.Update.Key = "" }, "update.key"},
		{"missing driver", func(c *Config) { c.Databases["staging"] = Database{Connection: "dsn"} }, "databases.staging.driver"},
		{"unknown default environment", func(c *Config) { c.DefaultEnvironment = "production" }, "default_environment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(config)

			err := validateConfig(config)
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}

			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfigValidation))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
