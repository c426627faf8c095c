package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/shibukawa/bulkdml"
	"github.com/shibukawa/bulkdml/batch"
	"github.com/shibukawa/bulkdml/query"
)

// TargetFlags are the connection flags shared by update and insert.
type TargetFlags struct {
	Environment  string `help:"Database environment from config" short:"e" name:"env"`
	DBConnection string `help:"Database connection string" name:"db"`
	Dialect      string `help:"SQL dialect (mysql, mariadb, postgres, sqlite); overrides the connection's"`
	DryRun       bool   `help:"Print the statements without executing them"`
}

// resolveTarget returns the connection and dialect to use. Dry runs do
// not need a connection and fall back to the configured dialect.
func (f TargetFlags) resolveTarget(config *bulkdml.Config) (query.Connection, bulkdml.Dialect, error) {
	var override bulkdml.Dialect

	if f.Dialect != "" {
		d, err := bulkdml.ParseDialect(f.Dialect)
		if err != nil {
			return query.Connection{}, "", err
		}

		override = d
	}

	conn, err := query.ResolveDatabase(config, f.Environment, f.DBConnection)
	if err != nil {
		if !f.DryRun || !errors.Is(err, bulkdml.ErrNoDatabaseSpecified) {
			return query.Connection{}, "", err
		}

		if override != "" {
			return query.Connection{}, override, nil
		}

		d, err := config.ParsedDialect()

		return query.Connection{}, d, err
	}

	if override != "" {
		return conn, override, nil
	}

	return conn, conn.Dialect, nil
}

// selectRows loads the row file and applies the optional CEL filter.
func selectRows(path, where string) ([]*batch.Record, error) {
	records, err := loadRows(path)
	if err != nil {
		return nil, err
	}

	if where == "" {
		return records, nil
	}

	filter, err := newRowFilter(where)
	if err != nil {
		return nil, err
	}

	return filter.Apply(records)
}

// runBatch opens the database and runs fn with a logging context bounded
// by the configured timeout.
func runBatch(ctx *Context, config *bulkdml.Config, conn query.Connection, fn func(context.Context, batch.DBExecutor) (batch.Result, error)) (batch.Result, error) {
	if ctx.Verbose {
		color.Blue("Using database driver: %s", conn.Driver)
	}

	db, err := query.OpenDatabase(conn.Driver, conn.DSN, config.Timeout)
	if err != nil {
		return batch.Result{}, err
	}
	defer db.Close()

	logger, err := newLogger(ctx)
	if err != nil {
		return batch.Result{}, fmt.Errorf("failed to create logger: %w", err)
	}

	defer func() { _ = logger.Sync() }()

	runCtx := batch.WithLogger(context.Background(), querySink(logger))

	if timeout := config.QueryTimeout(); timeout > 0 {
		var cancel context.CancelFunc

		runCtx, cancel = context.WithTimeout(runCtx, timeout)
		defer cancel()
	}

	return withTx(runCtx, db, fn)
}

// withTx runs fn inside one transaction so chunked batches apply together.
func withTx(ctx context.Context, db *sql.DB, fn func(context.Context, batch.DBExecutor) (batch.Result, error)) (batch.Result, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return batch.Result{}, fmt.Errorf("failed to begin transaction: %w", err)
	}

	result, err := fn(ctx, tx)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return batch.Result{}, errors.Join(err, rbErr)
		}

		return batch.Result{}, err
	}

	if err := tx.Commit(); err != nil {
		return batch.Result{}, fmt.Errorf("failed to commit: %w", err)
	}

	return result, nil
}

// printStatements shows dry-run output.
func printStatements(ctx *Context, statements []batch.Statement) {
	if len(statements) == 0 {
		if !ctx.Quiet {
			color.Yellow("Nothing to write")
		}

		return
	}

	for i, stmt := range statements {
		if !ctx.Quiet {
			color.Blue("Statement %d/%d:", i+1, len(statements))
		}

		fmt.Println(stmt.SQL + ";")

		if len(stmt.Args) > 0 && !ctx.Quiet {
			color.Blue("Parameters:")

			for j, arg := range stmt.Args {
				fmt.Printf("  %d: %v\n", j+1, arg)
			}
		}

		if !ctx.Quiet && i < len(statements)-1 {
			fmt.Println()
		}
	}
}

// splitColumns accepts both repeated flags and comma separated lists.
func splitColumns(values []string) []string {
	var columns []string

	for _, v := range values {
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				columns = append(columns, c)
			}
		}
	}

	return columns
}
