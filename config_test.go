package bulkdml

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NoError(t, err)

	assert.Equal(t, "mysql", config.Dialect)
	assert.Equal(t, "id", config.Update.Key)
	assert.Equal(t, "updated_at", config.Update.UpdatedAtColumn)
	assert.Equal(t, "created_at", config.Insert.CreatedAtColumn)
	assert.Equal(t, "updated_at", config.Insert.UpdatedAtColumn)
	assert.Equal(t, DefaultTimestampLayout, config.TimestampLayout)
	assert.True(t, config.Update.TimestampsEnabled())
	assert.True(t, config.Insert.TimestampsEnabled())
	assert.Equal(t, 30*time.Second, config.QueryTimeout())
}

func TestLoadConfig_AppliesDefaultsToPartialFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bulkdml.yaml")

	configContent := `
dialect: postgres
update:
  key: uuid
  timestamps: false
insert:
  chunk_size: 500
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	config, err := LoadConfig(configPath)
	assert.NoError(t, err)

	dialect, err := config.ParsedDialect()
	assert.NoError(t, err)
	assert.Equal(t, DialectPostgres, dialect)
	assert.Equal(t, "uuid", config.Update.Key)
	assert.False(t, config.Update.TimestampsEnabled())
	assert.Equal(t, "updated_at", config.Update.UpdatedAtColumn)
	assert.Equal(t, 500, config.Insert.ChunkSize)
	assert.True(t, config.Insert.TimestampsEnabled())
	assert.Equal(t, time.Duration(0), config.QueryTimeout())
}

func TestLoadConfig_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("BULKDML_TEST_DSN", "app:secret@tcp(localhost:3306)/app")
	t.Setenv("BULKDML_TEST_DRIVER", "mysql")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bulkdml.yaml")

	configContent := `
default_environment: development
databases:
  development:
    driver: $BULKDML_TEST_DRIVER
    connection: "${BULKDML_TEST_DSN}?parseTime=true"
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	config, err := LoadConfig(configPath)
	assert.NoError(t, err)

	db := config.Databases["development"]
	assert.Equal(t, "mysql", db.Driver)
	assert.Equal(t, "app:secret@tcp(localhost:3306)/app?parseTime=true", db.Connection)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("BULKDML_HOST", "db.local")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"braced", "${BULKDML_HOST}:3306", "db.local:3306"},
		{"bare", "tcp($BULKDML_HOST)", "tcp(db.local)"},
		{"unset", "${BULKDML_UNSET_VARIABLE}", ""},
		{"plain", "file.db", "file.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}
