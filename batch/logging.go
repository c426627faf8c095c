package batch

import (
	"context"
	"runtime"
	"time"
)

const defaultStackDepth = 16

// loggingConfig controls query logging behaviour stored on context.
type loggingConfig struct {
	sink               LoggerFunc
	includeStack       bool
	stackDepth         int
	slowQueryThreshold time.Duration
}

// LoggerOpt configures optional logger behaviour passed to WithLogger.
type LoggerOpt struct {
	IncludeStack bool
	StackDepth   int
	// SlowQueryThreshold suppresses entries for successful statements
	// faster than the threshold. Zero logs everything.
	SlowQueryThreshold time.Duration
}

// LoggerFunc receives QueryLogEntry events.
type LoggerFunc func(context.Context, QueryLogEntry)

// Operation names the batch operation that produced a statement.
type Operation string

const (
	OperationUpdate Operation = "update"
	OperationInsert Operation = "insert"
)

// QueryLogEntry represents a single statement execution.
type QueryLogEntry struct {
	Operation    Operation
	Table        string
	SQL          string
	Args         []any
	Dialect      string
	Rows         int
	StartAt      time.Time
	EndAt        time.Time
	Duration     time.Duration
	RowsAffected int64
	StackTrace   []runtime.Frame
	Error        string
}

// QueryLogMetadata describes immutable attributes passed to the QueryLogger.
type QueryLogMetadata struct {
	Operation Operation
	Table     string
	Dialect   string
	Rows      int
}

// QueryLogger coordinates per-statement logging lifecycle. A nil
// QueryLogger ignores every call.
type QueryLogger struct {
	cfg          *loggingConfig
	startAt      time.Time
	sql          string
	args         []any
	rowsAffected int64
	err          error
}

// WithLogger stores a logging sink on the context. Statements executed
// by Updater and Inserter with that context are reported to it.
func WithLogger(ctx context.Context, logger LoggerFunc, cfg ...LoggerOpt) context.Context {
	ctx, ec := withExecutionContext(ctx)

	var opt LoggerOpt
	if len(cfg) > 0 {
		opt = cfg[0]
	}

	if opt.IncludeStack && opt.StackDepth <= 0 {
		opt.StackDepth = defaultStackDepth
	}

	if opt.SlowQueryThreshold < 0 {
		opt.SlowQueryThreshold = 0
	}

	ec.logger = &loggingConfig{
		sink:               logger,
		includeStack:       opt.IncludeStack,
		stackDepth:         opt.StackDepth,
		slowQueryThreshold: opt.SlowQueryThreshold,
	}

	return ctx
}

// QueryLoggerFromContext starts a QueryLogger when a sink is attached.
func QueryLoggerFromContext(ctx context.Context) *QueryLogger {
	ec := extractExecutionContext(ctx)
	if ec == nil || ec.logger == nil || ec.logger.sink == nil {
		return nil
	}

	return &QueryLogger{
		cfg:     ec.logger,
		startAt: time.Now(),
	}
}

// SetQuery captures the SQL text and arguments to be logged.
func (l *QueryLogger) SetQuery(sql string, args []any) {
	if l == nil {
		return
	}

	l.sql = sql
	if len(args) == 0 {
		l.args = nil
		return
	}

	copied := make([]any, len(args))
	copy(copied, args)
	l.args = copied
}

// SetRowsAffected records the affected row count reported by the driver.
func (l *QueryLogger) SetRowsAffected(n int64) {
	if l == nil {
		return
	}

	l.rowsAffected = n
}

// SetErr records the last error to be logged.
func (l *QueryLogger) SetErr(err error) {
	if l == nil {
		return
	}

	l.err = err
}

// Write finalizes the entry and hands it to the sink.
func (l *QueryLogger) Write(ctx context.Context, metadata QueryLogMetadata) {
	if l == nil {
		return
	}

	entry := QueryLogEntry{
		Operation:    metadata.Operation,
		Table:        metadata.Table,
		Dialect:      metadata.Dialect,
		Rows:         metadata.Rows,
		StartAt:      l.startAt,
		EndAt:        time.Now(),
		SQL:          l.sql,
		Args:         l.args,
		RowsAffected: l.rowsAffected,
	}
	entry.Duration = entry.EndAt.Sub(entry.StartAt)

	if l.err != nil {
		entry.Error = l.err.Error()
	} else if threshold := l.cfg.slowQueryThreshold; threshold > 0 && entry.Duration < threshold {
		return
	}

	if l.cfg.includeStack {
		entry.StackTrace = captureStackTrace(l.cfg.stackDepth)
	}

	l.cfg.sink(ctx, entry)
}

func captureStackTrace(depth int) []runtime.Frame {
	if depth <= 0 {
		depth = defaultStackDepth
	}

	pcs := make([]uintptr, depth)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var result []runtime.Frame

	for {
		frame, more := frames.Next()
		result = append(result, frame)

		if !more {
			break
		}
	}

	return result
}
