package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/shibukawa/bulkdml"
	"github.com/shibukawa/bulkdml/batch"
)

// InsertCmd represents the insert command
type InsertCmd struct {
	RowsFile        string `arg:"" help:"YAML or JSON file holding a sequence of rows"`
	Table           string `help:"Target table" short:"t" required:""`
	CreatedAtColumn string `help:"Creation timestamp column, '-' to skip (default from config)"`
	UpdatedAtColumn string `help:"Update timestamp column, '-' to skip (default from config)"`
	NoTimestamps    bool   `help:"Do not add timestamp columns"`
	ChunkSize       int    `help:"Rows per statement, 0 for a single statement (default from config)" default:"-1"`
	Where           string `help:"CEL expression over 'row' selecting the rows to write"`

	TargetFlags `embed:""`
}

// Run executes the insert command
func (cmd *InsertCmd) Run(ctx *Context) error {
	config, err := bulkdml.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	records, err := selectRows(cmd.RowsFile, cmd.Where)
	if err != nil {
		return err
	}

	conn, dialect, err := cmd.resolveTarget(config)
	if err != nil {
		return err
	}

	opts := cmd.options(config, dialect)

	planner, err := batch.NewInserter(nil, opts)
	if err != nil {
		return err
	}

	if ctx.Verbose {
		color.Blue("Loaded %d row(s) from %s", len(records), cmd.RowsFile)
	}

	if cmd.DryRun {
		statements, err := planner.Build(toRows(records), time.Now())
		if err != nil {
			return err
		}

		printStatements(ctx, statements)

		return nil
	}

	result, err := runBatch(ctx, config, conn, func(runCtx context.Context, db batch.DBExecutor) (batch.Result, error) {
		return batch.InsertMany(runCtx, db, toRows(records), opts)
	})
	if err != nil {
		return err
	}

	if !ctx.Quiet {
		color.Green("Inserted %d row(s) with %d statement(s)", result.RowsAffected, result.Statements)
	}

	return nil
}

// options merges command flags over the configuration defaults.
func (cmd *InsertCmd) options(config *bulkdml.Config, dialect bulkdml.Dialect) batch.InsertOptions {
	opts := batch.InsertOptions{
		Table:             cmd.Table,
		CreatedAtColumn:   config.Insert.CreatedAtColumn,
		UpdatedAtColumn:   config.Insert.UpdatedAtColumn,
		WithoutTimestamps: cmd.NoTimestamps || !config.Insert.TimestampsEnabled(),
		Dialect:           dialect,
		ChunkSize:         config.Insert.ChunkSize,
	}

	if cmd.CreatedAtColumn != "" {
		opts.CreatedAtColumn = cmd.CreatedAtColumn
	}

	if cmd.UpdatedAtColumn != "" {
		opts.UpdatedAtColumn = cmd.UpdatedAtColumn
	}

	if cmd.ChunkSize >= 0 {
		opts.ChunkSize = cmd.ChunkSize
	}

	return opts
}
