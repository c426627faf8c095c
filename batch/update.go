package batch

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shibukawa/bulkdml"
)

// UpdateOptions configures an Updater.
type UpdateOptions struct {
	// Table is the target table. Required.
	Table string
	// Key is the column identifying rows. Defaults to "id".
	Key string
	// Columns lists the columns to write. Empty means the union of the
	// columns carried by the rows.
	Columns []string
	// UseFillable takes the column list from the first Model row's
	// fillable list when Columns is empty.
	UseFillable bool
	// UpdatedAtColumn is stamped with the call instant on every row.
	// Defaults to "updated_at".
	UpdatedAtColumn string
	// WithoutTimestamps disables stamping.
	WithoutTimestamps bool
	// Dialect controls identifier quoting and placeholders. Defaults to MySQL.
	Dialect bulkdml.Dialect
	// BindParameters sends values as bound arguments instead of escaped literals.
	BindParameters bool
	// ChunkSize splits the rows into statements of at most ChunkSize rows.
	// Zero writes everything in one statement.
	ChunkSize int
	// TimestampLayout formats time.Time values in literal mode.
	TimestampLayout string
}

func (o UpdateOptions) withDefaults() UpdateOptions {
	if o.Key == "" {
		o.Key = "id"
	}

	if o.UpdatedAtColumn == "" {
		o.UpdatedAtColumn = "updated_at"
	}

	if o.Dialect == "" {
		o.Dialect = bulkdml.DialectMySQL
	}

	if o.TimestampLayout == "" {
		o.TimestampLayout = bulkdml.DefaultTimestampLayout
	}

	o.Columns = slices.Clone(o.Columns)

	return o
}

func (o UpdateOptions) validate() error {
	if o.Table == "" {
		return bulkdml.ErrTableNotSpecified
	}

	if _, ok := bulkdml.Capabilities[o.Dialect]; !ok {
		return fmt.Errorf("%w: %s", bulkdml.ErrUnsupportedDialect, o.Dialect)
	}

	if o.ChunkSize < 0 {
		return fmt.Errorf("%w: %d", bulkdml.ErrInvalidChunkSize, o.ChunkSize)
	}

	if !o.BindParameters && !literalModeSupported(o.Dialect) {
		return fmt.Errorf("%w: %s", bulkdml.ErrLiteralModeUnsupported, o.Dialect)
	}

	return nil
}

func literalModeSupported(d bulkdml.Dialect) bool {
	return d.Supports(bulkdml.FeatureBacktickIdentifiers) && d.Supports(bulkdml.FeatureBackslashEscapes)
}

// timestampColumn returns the stamped column or "" when stamping is off.
func (o UpdateOptions) timestampColumn() string {
	if o.WithoutTimestamps {
		return ""
	}

	return o.UpdatedAtColumn
}

// Updater writes many rows with per-row values in a single
// UPDATE ... SET col = CASE ... END ... WHERE key IN (...) statement.
// It holds no per-call state and may be shared between goroutines.
type Updater struct {
	db   DBExecutor
	opts UpdateOptions
}

// NewUpdater validates the options and returns an Updater.
func NewUpdater(db DBExecutor, opts UpdateOptions) (*Updater, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	return &Updater{db: db, opts: opts}, nil
}

// UpdateMany is a convenience wrapper around NewUpdater and Update.
func UpdateMany(ctx context.Context, db DBExecutor, rows []Row, opts UpdateOptions) (Result, error) {
	u, err := NewUpdater(db, opts)
	if err != nil {
		return Result{}, err
	}

	return u.Update(ctx, rows)
}

// Update stamps, builds and executes the statements for rows. Empty
// input is a no-op.
//
// The timestamp column of every row is set in place before any statement
// runs, so rows stay stamped even when execution fails. No transaction
// is opened; pass a *sql.Tx to scope the statements.
func (u *Updater) Update(ctx context.Context, rows []Row) (Result, error) {
	if len(rows) == 0 {
		return Result{}, nil
	}

	statements, err := u.plan(rows, currentInstant(ctx))
	if err != nil {
		return Result{}, err
	}

	return dispatch(ctx, u.db, OperationUpdate, u.opts.Table, u.opts.Dialect, statements)
}

// Build stamps rows with now and returns the statements Update would
// execute, without executing them.
func (u *Updater) Build(rows []Row, now time.Time) ([]Statement, error) {
	planned, err := u.plan(rows, now)
	if err != nil {
		return nil, err
	}

	statements := make([]Statement, len(planned))
	for i, p := range planned {
		statements[i] = p.Statement
	}

	return statements, nil
}

func (u *Updater) plan(rows []Row, now time.Time) ([]plannedStatement, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	opts := u.opts
	stampColumn := opts.timestampColumn()

	if stampColumn != "" {
		for _, row := range rows {
			row.SetValue(stampColumn, now)
		}
	}

	columns := resolveColumns(rows, opts.Columns, opts.UseFillable, stampColumn)

	var statements []plannedStatement

	for offset, chunk := range chunkRows(rows, opts.ChunkSize) {
		stmt, ok, err := u.buildChunk(chunk, columns, offset)
		if err != nil {
			return nil, err
		}

		if !ok {
			continue
		}

		statements = append(statements, plannedStatement{Statement: stmt, rows: len(chunk)})
	}

	return statements, nil
}

func (u *Updater) buildChunk(rows []Row, columns []string, offset int) (Statement, bool, error) {
	opts := u.opts

	keys, err := collectKeys(rows, opts.Key, offset, opts.TimestampLayout)
	if err != nil {
		return Statement{}, false, err
	}

	fragments := make([]caseFragment, 0, len(columns))
	for _, column := range columns {
		fragments = append(fragments, buildCase(rows, column, opts.Key))
	}

	builder := newStatementBuilder(opts.Dialect, opts.BindParameters, opts.TimestampLayout)

	return builder.assembleUpdate(opts.Table, opts.Key, fragments, keys)
}

// chunkRows yields consecutive slices of at most size rows together with
// the index of their first row. A size of zero yields rows as one chunk.
func chunkRows[T any](rows []T, size int) func(yield func(int, []T) bool) {
	return func(yield func(int, []T) bool) {
		if size <= 0 || size >= len(rows) {
			yield(0, rows)
			return
		}

		for start := 0; start < len(rows); start += size {
			end := min(start+size, len(rows))
			if !yield(start, rows[start:end]) {
				return
			}
		}
	}
}
