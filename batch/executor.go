package batch

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shibukawa/bulkdml"
)

// DBExecutor interface supports sql.DB, sql.Conn, and sql.Tx
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

var (
	_ DBExecutor = (*sql.DB)(nil)
	_ DBExecutor = (*sql.Tx)(nil)
	_ DBExecutor = (*sql.Conn)(nil)
)

// Result summarizes a batch operation.
type Result struct {
	// Statements is the number of statements executed.
	Statements int
	// RowsAffected sums the driver-reported counts. Drivers that cannot
	// report a count contribute zero.
	RowsAffected int64
}

// plannedStatement is a statement plus the metadata reported to the logger.
type plannedStatement struct {
	Statement
	rows int
}

// dispatch executes statements in order and stops at the first failure.
// The returned Result covers the statements that succeeded.
func dispatch(ctx context.Context, db DBExecutor, op Operation, table string, dialect bulkdml.Dialect, statements []plannedStatement) (Result, error) {
	var result Result

	for _, stmt := range statements {
		logger := QueryLoggerFromContext(ctx)
		logger.SetQuery(stmt.SQL, stmt.Args)

		res, err := db.ExecContext(ctx, stmt.SQL, stmt.Args...)
		if err != nil {
			logger.SetErr(err)
			logger.Write(ctx, QueryLogMetadata{Operation: op, Table: table, Dialect: string(dialect), Rows: stmt.rows})

			return result, fmt.Errorf("%w: %s %s: %w", bulkdml.ErrExecution, op, table, err)
		}

		result.Statements++

		if n, err := res.RowsAffected(); err == nil {
			result.RowsAffected += n
			logger.SetRowsAffected(n)
		}

		logger.Write(ctx, QueryLogMetadata{Operation: op, Table: table, Dialect: string(dialect), Rows: stmt.rows})
	}

	return result, nil
}
