package main

import (
	"context"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shibukawa/bulkdml/batch"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestQuerySink(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := querySink(zap.New(core))

	sink(context.Background(), batch.QueryLogEntry{
		Operation:    batch.OperationUpdate,
		Table:        "users",
		Dialect:      "mysql",
		SQL:          "UPDATE `users` SET ...",
		Rows:         2,
		RowsAffected: 2,
		Duration:     time.Millisecond,
	})

	sink(context.Background(), batch.QueryLogEntry{
		Operation: batch.OperationInsert,
		Table:     "users",
		SQL:       "INSERT INTO `users` ...",
		Error:     "Duplicate entry",
	})

	executed := logs.FilterMessage("statement executed").All()
	assert.Equal(t, 1, len(executed))
	assert.Equal[any](t, "users", executed[0].ContextMap()["table"])
	assert.Equal[any](t, int64(2), executed[0].ContextMap()["rows_affected"])

	failed := logs.FilterMessage("statement failed").All()
	assert.Equal(t, 1, len(failed))
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)
	assert.Equal[any](t, "Duplicate entry", failed[0].ContextMap()["error"])

	assert.Equal(t, 1, logs.FilterMessage("statement text").Len())
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(&Context{Verbose: true})
	assert.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = newLogger(&Context{})
	assert.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))
}
