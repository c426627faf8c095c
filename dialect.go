package bulkdml

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect represents supported database dialects
// This type is shared across all packages
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite"
	DialectMariaDB  Dialect = "mariadb"
)

// ParseDialect converts a configuration or driver name into a Dialect.
// An empty name selects MySQL.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "mysql":
		return DialectMySQL, nil
	case "mariadb":
		return DialectMariaDB, nil
	case "postgres", "postgresql", "pgx":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDialect, name)
	}
}

// QuoteIdent quotes a table or column name for the dialect.
// Names are trusted; embedded quote characters are doubled.
func (d Dialect) QuoteIdent(name string) string {
	if d.Supports(FeatureBacktickIdentifiers) {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}

	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Placeholder returns the bind placeholder for the 1-based position.
func (d Dialect) Placeholder(position int) string {
	if d.Supports(FeatureNumberedPlaceholders) {
		return "$" + strconv.Itoa(position)
	}

	return "?"
}

// Supports reports whether the dialect has the feature.
func (d Dialect) Supports(feature Feature) bool {
	return Capabilities[d][feature]
}

// Feature represents DB-specific feature flags
type Feature int

const (
	FeatureBacktickIdentifiers  Feature = iota + 1 // `name`
	FeatureBackslashEscapes                        // 'O\'Brien'
	FeatureNumberedPlaceholders                    // $1, $2
)
