package batch

import (
	"maps"
	"slices"
)

// Row is one logical record handed to Updater or Inserter.
//
// Columns reports column names in a stable order; column inference
// follows that order. IsDirty reports whether the row intends to write
// the column: plain records write every column, absent ones as NULL;
// tracked entities only the columns changed since they were loaded.
type Row interface {
	Columns() []string
	Value(column string) (any, bool)
	SetValue(column string, value any)
	IsDirty(column string) bool
}

// Model is a Row with entity metadata used by InsertMany and column resolution.
type Model interface {
	Row
	// Fillable returns the columns allowed to be written on insert.
	// Other attributes are dropped; an empty list allows none, so only
	// timestamp columns are inserted.
	Fillable() []string
	UsesTimestamps() bool
	CreatedAtColumn() string
	UpdatedAtColumn() string
}

// Field is a single column/value pair.
type Field struct {
	Name  string
	Value any
}

// F is shorthand for Field{Name: name, Value: value}.
func F(name string, value any) Field {
	return Field{Name: name, Value: value}
}

// Record is a plain ordered column to value mapping without dirty tracking.
type Record struct {
	keys   []string
	values map[string]any
}

var _ Row = (*Record)(nil)

// NewRecord builds a record keeping the field order. A repeated name
// overwrites the earlier value but keeps its position.
func NewRecord(fields ...Field) *Record {
	r := &Record{values: make(map[string]any, len(fields))}
	for _, f := range fields {
		r.SetValue(f.Name, f.Value)
	}

	return r
}

// RecordFromMap builds a record from a map. Go maps carry no order, so
// columns are sorted by name.
func RecordFromMap(m map[string]any) *Record {
	r := &Record{
		keys:   slices.Sorted(maps.Keys(m)),
		values: make(map[string]any, len(m)),
	}
	maps.Copy(r.values, m)

	return r
}

func (r *Record) Columns() []string {
	return slices.Clone(r.keys)
}

func (r *Record) Value(column string) (any, bool) {
	v, ok := r.values[column]
	return v, ok
}

func (r *Record) SetValue(column string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}

	if _, exists := r.values[column]; !exists {
		r.keys = append(r.keys, column)
	}

	r.values[column] = value
}

// IsDirty is always true: a plain record writes every resolved column,
// and a column it does not carry is written as NULL.
func (r *Record) IsDirty(string) bool {
	return true
}

// Len returns the number of columns.
func (r *Record) Len() int {
	return len(r.keys)
}

// Map returns a copy of the values.
func (r *Record) Map() map[string]any {
	return maps.Clone(r.values)
}

// Clone returns an independent copy of the record.
func (r *Record) Clone() *Record {
	return &Record{
		keys:   slices.Clone(r.keys),
		values: maps.Clone(r.values),
	}
}

// valueOf reads a column, treating an absent column as SQL NULL.
func valueOf(row Row, column string) any {
	v, _ := row.Value(column)
	return v
}
