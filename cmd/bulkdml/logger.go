package main

import (
	"context"

	"github.com/shibukawa/bulkdml/batch"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the console logger used for statement logs. Only
// failures are logged unless verbose is set.
func newLogger(ctx *Context) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true

	cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	if ctx.Verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	return cfg.Build()
}

// querySink reports batch statements to a zap logger.
func querySink(logger *zap.Logger) batch.LoggerFunc {
	sugar := logger.Sugar()

	return func(_ context.Context, entry batch.QueryLogEntry) {
		keyAndValues := []any{
			"operation", string(entry.Operation),
			"table", entry.Table,
			"dialect", entry.Dialect,
			"rows", entry.Rows,
			"duration", entry.Duration,
		}

		if entry.Error != "" {
			sugar.Errorw("statement failed", append(keyAndValues, "error", entry.Error, "sql", entry.SQL)...)
			return
		}

		sugar.Infow("statement executed", append(keyAndValues, "rows_affected", entry.RowsAffected)...)
		sugar.Debugw("statement text", "sql", entry.SQL, "args", entry.Args)
	}
}
