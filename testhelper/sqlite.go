package testhelper

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// OpenSQLite opens an in-memory SQLite database and applies schema.
// The pool is limited to one connection so every query sees the same
// in-memory database.
func OpenSQLite(t *testing.T, schema string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if schema != "" {
		if _, err := db.Exec(schema); err != nil {
			t.Fatalf("failed to apply schema: %v", err)
		}
	}

	return db
}

// QueryStrings runs query and returns every row as strings. NULL is
// returned as "<nil>".
func QueryStrings(t *testing.T, db *sql.DB, query string, args ...any) [][]string {
	t.Helper()

	rows, err := db.Query(query, args...)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		t.Fatalf("failed to read columns: %v", err)
	}

	var result [][]string

	for rows.Next() {
		values := make([]sql.NullString, len(columns))

		dests := make([]any, len(columns))
		for i := range values {
			dests[i] = &values[i]
		}

		if err := rows.Scan(dests...); err != nil {
			t.Fatalf("scan failed: %v", err)
		}

		row := make([]string, len(columns))
		for i, v := range values {
			if v.Valid {
				row[i] = v.String
			} else {
				row[i] = "<nil>"
			}
		}

		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		t.Fatalf("rows failed: %v", err)
	}

	return result
}
