package batch

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shibukawa/bulkdml"
)

// InsertOptions configures an Inserter.
type InsertOptions struct {
	// Table is the target table. Required.
	Table string
	// CreatedAtColumn and UpdatedAtColumn are merged into plain rows.
	// Defaults are "created_at" and "updated_at"; a column set to "-"
	// is not stamped.
	CreatedAtColumn string
	UpdatedAtColumn string
	// WithoutTimestamps disables stamping of plain rows. Models decide
	// for themselves through UsesTimestamps.
	WithoutTimestamps bool
	// Dialect controls identifier quoting and placeholders. Defaults to MySQL.
	Dialect bulkdml.Dialect
	// ChunkSize splits the rows into statements of at most ChunkSize rows.
	ChunkSize int
}

// skipColumn disables one of the insert timestamp columns.
const skipColumn = "-"

func (o InsertOptions) withDefaults() InsertOptions {
	if o.CreatedAtColumn == "" {
		o.CreatedAtColumn = "created_at"
	}

	if o.UpdatedAtColumn == "" {
		o.UpdatedAtColumn = "updated_at"
	}

	if o.Dialect == "" {
		o.Dialect = bulkdml.DialectMySQL
	}

	return o
}

func (o InsertOptions) validate() error {
	if o.Table == "" {
		return bulkdml.ErrTableNotSpecified
	}

	if _, ok := bulkdml.Capabilities[o.Dialect]; !ok {
		return fmt.Errorf("%w: %s", bulkdml.ErrUnsupportedDialect, o.Dialect)
	}

	if o.ChunkSize < 0 {
		return fmt.Errorf("%w: %d", bulkdml.ErrInvalidChunkSize, o.ChunkSize)
	}

	return nil
}

// Inserter writes many rows with multi-row INSERT statements using bound
// parameters.
type Inserter struct {
	db   DBExecutor
	opts InsertOptions
}

// NewInserter validates the options and returns an Inserter.
func NewInserter(db DBExecutor, opts InsertOptions) (*Inserter, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	return &Inserter{db: db, opts: opts}, nil
}

// InsertMany is a convenience wrapper around NewInserter and Insert.
func InsertMany(ctx context.Context, db DBExecutor, rows []Row, opts InsertOptions) (Result, error) {
	ins, err := NewInserter(db, opts)
	if err != nil {
		return Result{}, err
	}

	return ins.Insert(ctx, rows)
}

// Insert shapes and inserts rows. Empty input returns a zero Result.
//
// Models that use timestamps get their created/updated columns set in
// place with the call instant; plain rows are not modified.
func (ins *Inserter) Insert(ctx context.Context, rows []Row) (Result, error) {
	if len(rows) == 0 {
		return Result{}, nil
	}

	statements, err := ins.plan(rows, currentInstant(ctx))
	if err != nil {
		return Result{}, err
	}

	return dispatch(ctx, ins.db, OperationInsert, ins.opts.Table, ins.opts.Dialect, statements)
}

// Build shapes rows with now and returns the statements Insert would
// execute, without executing them.
func (ins *Inserter) Build(rows []Row, now time.Time) ([]Statement, error) {
	planned, err := ins.plan(rows, now)
	if err != nil {
		return nil, err
	}

	statements := make([]Statement, len(planned))
	for i, p := range planned {
		statements[i] = p.Statement
	}

	return statements, nil
}

func (ins *Inserter) plan(rows []Row, now time.Time) ([]plannedStatement, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	shaped := make([]*Record, len(rows))
	for i, row := range rows {
		shaped[i] = ins.shapeRow(row, now)
	}

	var statements []plannedStatement

	for offset, chunk := range chunkRows(shaped, ins.opts.ChunkSize) {
		var columns []string
		for _, r := range chunk {
			columns = append(columns, r.keys...)
		}

		columns = dedupe(columns)
		if len(columns) == 0 {
			return nil, fmt.Errorf("%w: rows %d..%d", bulkdml.ErrNoColumns, offset, offset+len(chunk)-1)
		}

		builder := newStatementBuilder(ins.opts.Dialect, true, "")

		stmt, err := builder.assembleInsert(ins.opts.Table, columns, chunk, offset)
		if err != nil {
			return nil, err
		}

		statements = append(statements, plannedStatement{Statement: stmt, rows: len(chunk)})
	}

	return statements, nil
}

// shapeRow turns a row into the record that is actually inserted.
func (ins *Inserter) shapeRow(row Row, now time.Time) *Record {
	model, ok := row.(Model)
	if !ok {
		record := projectRow(row, row.Columns())
		if !ins.opts.WithoutTimestamps {
			mergeTimestamp(record, ins.opts.CreatedAtColumn, now)
			mergeTimestamp(record, ins.opts.UpdatedAtColumn, now)
		}

		return record
	}

	if !model.UsesTimestamps() {
		return projectRow(model, model.Fillable())
	}

	created, updated := model.CreatedAtColumn(), model.UpdatedAtColumn()
	for _, column := range []string{created, updated} {
		if column != "" && column != skipColumn {
			model.SetValue(column, now)
		}
	}

	record := projectRow(model, model.Fillable())
	mergeTimestamp(record, created, now)
	mergeTimestamp(record, updated, now)

	return record
}

// projectRow copies the row's columns that appear in allowed.
func projectRow(row Row, allowed []string) *Record {
	record := NewRecord()

	for _, column := range row.Columns() {
		if !slices.Contains(allowed, column) {
			continue
		}

		record.SetValue(column, valueOf(row, column))
	}

	return record
}

// mergeTimestamp sets column to now unless the record already carries it.
func mergeTimestamp(record *Record, column string, now time.Time) {
	if column == "" || column == skipColumn {
		return
	}

	if _, ok := record.Value(column); ok {
		return
	}

	record.SetValue(column, now)
}
