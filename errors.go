package bulkdml

import "errors"

// Common errors used throughout the bulkdml packages
var (
	// Statement building errors

	// ErrMissingKeyValue is returned when a row does not carry a value for the key column.
	ErrMissingKeyValue = errors.New("row has no value for key column")
	// ErrTableNotSpecified indicates the target table name is empty.
	ErrTableNotSpecified = errors.New("table not specified")
	// ErrNoColumns indicates the rows to insert carry no columns at all.
	ErrNoColumns = errors.New("rows carry no columns")
	// ErrUnsupportedValue indicates a value cannot be rendered as a scalar SQL literal.
	ErrUnsupportedValue = errors.New("unsupported value for SQL literal")
	// ErrLiteralModeUnsupported indicates the dialect cannot safely embed escaped literals.
	ErrLiteralModeUnsupported = errors.New("dialect does not support embedded literal statements")
	// ErrInvalidChunkSize indicates a negative chunk size.
	ErrInvalidChunkSize = errors.New("chunk size must not be negative")

	// Execution errors

	// ErrExecution wraps any fault returned by the statement executor.
	ErrExecution = errors.New("statement execution failed")

	// Configuration errors

	// ErrUnsupportedDialect indicates an unknown dialect name.
	ErrUnsupportedDialect = errors.New("unsupported dialect")
	// ErrConfigValidation is returned when configuration validation fails.
	ErrConfigValidation = errors.New("configuration validation failed")
	// ErrEnvironmentNotFound indicates the requested database environment is not configured.
	ErrEnvironmentNotFound = errors.New("environment not found in config")
	// ErrNoDatabaseSpecified indicates neither an environment nor a connection string was given.
	ErrNoDatabaseSpecified = errors.New("no database connection specified")
	// ErrDatabaseConnection indicates a database connection could not be opened or pinged.
	ErrDatabaseConnection = errors.New("database connection failed")
)
