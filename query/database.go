package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shibukawa/bulkdml"
)

// Connection is a resolved database target.
type Connection struct {
	Environment string
	Driver      string // database/sql driver name
	DSN         string
	Dialect     bulkdml.Dialect
}

// ResolveDatabase picks the connection to use: an explicit environment,
// then a direct connection string, then the configured default environment.
func ResolveDatabase(config *bulkdml.Config, environment, dsn string) (Connection, error) {
	switch {
	case environment != "":
		return fromEnvironment(config, environment)
	case dsn != "":
		driver := DetermineDriver(dsn)

		dialect, err := bulkdml.ParseDialect(driver)
		if err != nil {
			return Connection{}, err
		}

		return Connection{Driver: driver, DSN: normalizeDSN(driver, dsn), Dialect: dialect}, nil
	case config != nil && config.DefaultEnvironment != "" && len(config.Databases) > 0:
		return fromEnvironment(config, config.DefaultEnvironment)
	default:
		return Connection{}, bulkdml.ErrNoDatabaseSpecified
	}
}

func fromEnvironment(config *bulkdml.Config, environment string) (Connection, error) {
	if config == nil {
		return Connection{}, fmt.Errorf("%w: %s", bulkdml.ErrEnvironmentNotFound, environment)
	}

	db, ok := config.Databases[environment]
	if !ok {
		return Connection{}, fmt.Errorf("%w: %s", bulkdml.ErrEnvironmentNotFound, environment)
	}

	dialect, err := bulkdml.ParseDialect(db.Driver)
	if err != nil {
		return Connection{}, err
	}

	driver := NormalizeDriverName(db.Driver)

	return Connection{
		Environment: environment,
		Driver:      driver,
		DSN:         normalizeDSN(driver, db.Connection),
		Dialect:     dialect,
	}, nil
}

// NormalizeDriverName maps dialect aliases to registered database/sql driver names.
func NormalizeDriverName(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "pgx":
		return "pgx"
	case "", "mysql", "mariadb":
		return "mysql"
	case "sqlite", "sqlite3":
		return "sqlite3"
	default:
		return strings.ToLower(strings.TrimSpace(driver))
	}
}

// DetermineDriver guesses the driver from a connection string. MySQL is
// assumed when nothing matches.
func DetermineDriver(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "pgx"
	case strings.HasPrefix(dsn, "sqlite://"), strings.HasPrefix(dsn, "file:"),
		strings.HasSuffix(dsn, ".db"), strings.HasSuffix(dsn, ".sqlite"), dsn == ":memory:":
		return "sqlite3"
	default:
		return "mysql"
	}
}

// normalizeDSN strips URL schemes the drivers do not understand.
func normalizeDSN(driver, dsn string) string {
	switch driver {
	case "mysql":
		return strings.TrimPrefix(dsn, "mysql://")
	case "sqlite3":
		return strings.TrimPrefix(dsn, "sqlite://")
	default:
		return dsn
	}
}

// OpenDatabase opens and pings a database. timeout bounds the ping and
// the connection lifetime, in seconds.
func OpenDatabase(driver, connectionString string, timeout int) (*sql.DB, error) {
	db, err := sql.Open(driver, connectionString)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", bulkdml.ErrDatabaseConnection, err)
	}

	if timeout <= 0 {
		timeout = 30
	}

	db.SetConnMaxLifetime(time.Duration(timeout) * time.Second)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", bulkdml.ErrDatabaseConnection, err)
	}

	return db, nil
}
