package main

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shibukawa/bulkdml"
	"github.com/shibukawa/bulkdml/testhelper"
)

type sqliteFixture struct {
	dir    string
	dbPath string
	config string
	ctx    *Context
}

func newSQLiteFixture(t *testing.T) sqliteFixture {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "app.db")

	db, err := sql.Open("sqlite3", dbPath)
	assert.NoError(t, err)

	_, err = db.Exec(`CREATE TABLE users (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT,
		created_at TEXT,
		updated_at TEXT
	)`)
	assert.NoError(t, err)
	assert.NoError(t, db.Close())

	return sqliteFixture{
		dir:    dir,
		dbPath: dbPath,
		config: filepath.Join(dir, "bulkdml.yaml"),
		ctx:    &Context{Config: filepath.Join(dir, "bulkdml.yaml"), Quiet: true},
	}
}

func (f sqliteFixture) writeRows(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(f.dir, name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func (f sqliteFixture) query(t *testing.T, q string) [][]string {
	t.Helper()

	db, err := sql.Open("sqlite3", f.dbPath)
	assert.NoError(t, err)

	defer db.Close()

	return testhelper.QueryStrings(t, db, q)
}

func TestInsertAndUpdateCommands(t *testing.T) {
	f := newSQLiteFixture(t)

	insertFile := f.writeRows(t, "insert.yaml", testhelper.TrimIndent(t, `
		- id: 1
		  name: Alice
		  status: active
		- id: 2
		  name: Bob
		  status: banned
		- id: 3
		  name: Carol
		  status: active
	`))

	insert := &InsertCmd{
		RowsFile:    insertFile,
		Table:       "users",
		ChunkSize:   2,
		TargetFlags: TargetFlags{DBConnection: f.dbPath},
	}
	assert.NoError(t, insert.Run(f.ctx))

	assert.Equal(t, [][]string{{"3"}}, f.query(t, "SELECT COUNT(*) FROM users WHERE created_at IS NOT NULL"))

	updateFile := f.writeRows(t, "update.json", `[
		{"id": 1, "name": "Alice O'Hara", "status": "active"},
		{"id": 2, "name": "Robert", "status": "banned"},
		{"id": 3, "name": "Caroline", "status": "active"}
	]`)

	update := &UpdateCmd{
		RowsFile:    updateFile,
		Table:       "users",
		Columns:     []string{"name"},
		Bind:        true,
		ChunkSize:   -1,
		Where:       `row.status == "active"`,
		TargetFlags: TargetFlags{DBConnection: f.dbPath},
	}
	assert.NoError(t, update.Run(f.ctx))

	assert.Equal(t, [][]string{
		{"1", "Alice O'Hara"},
		{"2", "Bob"},
		{"3", "Caroline"},
	}, f.query(t, "SELECT id, name FROM users ORDER BY id"))
}

func TestUpdateCommand_LiteralModeRejectedOnSQLite(t *testing.T) {
	f := newSQLiteFixture(t)

	rows := f.writeRows(t, "rows.yaml", "- {id: 1, name: A}\n")

	update := &UpdateCmd{
		RowsFile:    rows,
		Table:       "users",
		ChunkSize:   -1,
		TargetFlags: TargetFlags{DBConnection: f.dbPath},
	}

	err := update.Run(f.ctx)
	assert.IsError(t, err, bulkdml.ErrLiteralModeUnsupported)
}

func TestUpdateCommand_DryRunNeedsNoDatabase(t *testing.T) {
	f := newSQLiteFixture(t)

	rows := f.writeRows(t, "rows.yaml", "- {id: 1, name: A}\n")

	update := &UpdateCmd{
		RowsFile:    rows,
		Table:       "users",
		ChunkSize:   -1,
		TargetFlags: TargetFlags{DryRun: true},
	}
	assert.NoError(t, update.Run(f.ctx))

	update.DryRun = false
	err := update.Run(f.ctx)
	assert.IsError(t, err, bulkdml.ErrNoDatabaseSpecified)
}

func TestUpdateCmdOptions(t *testing.T) {
	disabled := false
	config := &bulkdml.Config{
		TimestampLayout: bulkdml.DefaultTimestampLayout,
		Update: bulkdml.UpdateConfig{
			Key:             "uuid",
			UpdatedAtColumn: "modified_at",
			Timestamps:      &disabled,
			BindParameters:  true,
			ChunkSize:       100,
		},
	}

	cmd := &UpdateCmd{Table: "users", Columns: []string{"name,email", "age"}, ChunkSize: -1}
	opts := cmd.options(config, bulkdml.DialectPostgres)

	assert.Equal(t, "uuid", opts.Key)
	assert.Equal(t, []string{"name", "email", "age"}, opts.Columns)
	assert.Equal(t, "modified_at", opts.UpdatedAtColumn)
	assert.True(t, opts.WithoutTimestamps)
	assert.True(t, opts.BindParameters)
	assert.Equal(t, 100, opts.ChunkSize)
	assert.Equal(t, bulkdml.DialectPostgres, opts.Dialect)

	cmd = &UpdateCmd{Table: "users", Key: "code", UpdatedAtColumn: "touched_at", ChunkSize: 0}
	opts = cmd.options(config, bulkdml.DialectMySQL)

	assert.Equal(t, "code", opts.Key)
	assert.Equal(t, "touched_at", opts.UpdatedAtColumn)
	assert.Equal(t, 0, opts.ChunkSize)
}

func TestInsertCmdOptions(t *testing.T) {
	config := &bulkdml.Config{
		Insert: bulkdml.InsertConfig{
			CreatedAtColumn: "created_at",
			UpdatedAtColumn: "updated_at",
			ChunkSize:       50,
		},
	}

	cmd := &InsertCmd{Table: "logs", UpdatedAtColumn: "-", ChunkSize: -1}
	opts := cmd.options(config, bulkdml.DialectSQLite)

	assert.Equal(t, "created_at", opts.CreatedAtColumn)
	assert.Equal(t, "-", opts.UpdatedAtColumn)
	assert.False(t, opts.WithoutTimestamps)
	assert.Equal(t, 50, opts.ChunkSize)
}

func TestResolveTarget(t *testing.T) {
	config := &bulkdml.Config{
		Dialect:            "mariadb",
		DefaultEnvironment: "development",
		Databases:          map[string]bulkdml.Database{},
	}

	_, dialect, err := TargetFlags{DryRun: true}.resolveTarget(config)
	assert.NoError(t, err)
	assert.Equal(t, bulkdml.DialectMariaDB, dialect)

	_, dialect, err = TargetFlags{DryRun: true, Dialect: "postgres"}.resolveTarget(config)
	assert.NoError(t, err)
	assert.Equal(t, bulkdml.DialectPostgres, dialect)

	conn, dialect, err := TargetFlags{DBConnection: "postgres://localhost/app"}.resolveTarget(config)
	assert.NoError(t, err)
	assert.Equal(t, "pgx", conn.Driver)
	assert.Equal(t, bulkdml.DialectPostgres, dialect)

	_, _, err = TargetFlags{Dialect: "oracle", DryRun: true}.resolveTarget(config)
	assert.IsError(t, err, bulkdml.ErrUnsupportedDialect)
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bulkdml.yaml")
	ctx := &Context{Config: path, Quiet: true}

	assert.NoError(t, (&InitCmd{}).Run(ctx))

	config, err := bulkdml.LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, "mysql", config.Databases["development"].Driver)
	assert.Equal(t, "id", config.Update.Key)

	err = (&InitCmd{}).Run(ctx)
	assert.IsError(t, err, ErrConfigExists)

	assert.NoError(t, (&InitCmd{Force: true}).Run(ctx))
}
