package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/shibukawa/bulkdml"
	"github.com/shibukawa/bulkdml/batch"
)

// UpdateCmd represents the update command
type UpdateCmd struct {
	RowsFile        string   `arg:"" help:"YAML or JSON file holding a sequence of rows"`
	Table           string   `help:"Target table" short:"t" required:""`
	Key             string   `help:"Key column (default from config)"`
	Columns         []string `help:"Columns to update (default: every column found in the rows)"`
	UpdatedAtColumn string   `help:"Timestamp column stamped on every row (default from config)"`
	NoTimestamps    bool     `help:"Do not stamp the timestamp column"`
	Bind            bool     `help:"Send values as bound parameters instead of escaped literals"`
	ChunkSize       int      `help:"Rows per statement, 0 for a single statement (default from config)" default:"-1"`
	Where           string   `help:"CEL expression over 'row' selecting the rows to write"`

	TargetFlags `embed:""`
}

// Run executes the update command
func (cmd *UpdateCmd) Run(ctx *Context) error {
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

	// validate before touching the database
	planner, err := batch.NewUpdater(nil, opts)
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
		return batch.UpdateMany(runCtx, db, toRows(records), opts)
	})
	if err != nil {
		return err
	}

	if !ctx.Quiet {
		color.Green("Updated %d row(s) with %d statement(s)", result.RowsAffected, result.Statements)
	}

	return nil
}

// options merges command flags over the configuration defaults.
func (cmd *UpdateCmd) options(config *bulkdml.Config, dialect bulkdml.Dialect) batch.UpdateOptions {
	opts := batch.UpdateOptions{
		Table:             cmd.Table,
		Key:               config.Update.Key,
		Columns:           splitColumns(cmd.Columns),
		UpdatedAtColumn:   config.Update.UpdatedAtColumn,
		WithoutTimestamps: cmd.NoTimestamps || !config.Update.TimestampsEnabled(),
		Dialect:           dialect,
		BindParameters:    cmd.Bind || config.Update.BindParameters,
		ChunkSize:         config.Update.ChunkSize,
		TimestampLayout:   config.TimestampLayout,
	}

	if cmd.Key != "" {
		opts.Key = cmd.Key
	}

	if cmd.UpdatedAtColumn != "" {
		opts.UpdatedAtColumn = cmd.UpdatedAtColumn
	}

	if cmd.ChunkSize >= 0 {
		opts.ChunkSize = cmd.ChunkSize
	}

	return opts
}
