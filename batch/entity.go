package batch

import (
	"reflect"
	"slices"
	"time"

	"github.com/shibukawa/bulkdml"
)

// Entity is a dirty-tracked row loaded from storage.
//
// The attributes passed to NewEntity are the persisted snapshot; later
// calls to Set change the current attributes, and IsDirty compares them
// against that snapshot.
type Entity struct {
	attributes *Record
	original   map[string]any
	fillable   []string
	timestamps bool
	createdAt  string
	updatedAt  string
}

var _ Model = (*Entity)(nil)

// EntityOption configures an Entity.
type EntityOption func(*Entity)

// WithFillable sets the columns InsertMany may write. An entity without
// it inserts timestamp columns only.
func WithFillable(columns ...string) EntityOption {
	return func(e *Entity) {
		e.fillable = slices.Clone(columns)
	}
}

// WithoutTimestamps disables created/updated stamping for the entity.
func WithoutTimestamps() EntityOption {
	return func(e *Entity) {
		e.timestamps = false
	}
}

// WithTimestampColumns overrides the created/updated column names.
func WithTimestampColumns(createdAt, updatedAt string) EntityOption {
	return func(e *Entity) {
		e.createdAt = createdAt
		e.updatedAt = updatedAt
	}
}

// NewEntity creates an entity whose current state equals attributes.
func NewEntity(attributes *Record, opts ...EntityOption) *Entity {
	if attributes == nil {
		attributes = NewRecord()
	}

	e := &Entity{
		attributes: attributes.Clone(),
		original:   attributes.Map(),
		timestamps: true,
		createdAt:  "created_at",
		updatedAt:  "updated_at",
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Set changes an attribute.
func (e *Entity) Set(column string, value any) *Entity {
	e.attributes.SetValue(column, value)
	return e
}

func (e *Entity) Columns() []string {
	return e.attributes.Columns()
}

func (e *Entity) Value(column string) (any, bool) {
	return e.attributes.Value(column)
}

func (e *Entity) SetValue(column string, value any) {
	e.attributes.SetValue(column, value)
}

// IsDirty reports whether the column differs from the persisted snapshot.
func (e *Entity) IsDirty(column string) bool {
	current, ok := e.attributes.Value(column)
	if !ok {
		return false
	}

	original, existed := e.original[column]
	if !existed {
		return true
	}

	return !equivalent(current, original)
}

// Dirty returns the changed columns in attribute order.
func (e *Entity) Dirty() []string {
	var dirty []string

	for _, column := range e.attributes.Columns() {
		if e.IsDirty(column) {
			dirty = append(dirty, column)
		}
	}

	return dirty
}

// SyncOriginal marks the current attributes as persisted.
func (e *Entity) SyncOriginal() {
	e.original = e.attributes.Map()
}

// Attributes returns a copy of the current attributes.
func (e *Entity) Attributes() *Record {
	return e.attributes.Clone()
}

func (e *Entity) Fillable() []string {
	return slices.Clone(e.fillable)
}

func (e *Entity) UsesTimestamps() bool {
	return e.timestamps
}

func (e *Entity) CreatedAtColumn() string {
	return e.createdAt
}

func (e *Entity) UpdatedAtColumn() string {
	return e.updatedAt
}

// equivalent compares values by their SQL literal text, so 1, int64(1)
// and "1" are the same value once written.
func equivalent(a, b any) bool {
	if isNull(a) || isNull(b) {
		return isNull(a) && isNull(b)
	}

	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Equal(tb)
		}
	}

	sa, _, errA := scalarText(a, bulkdml.DefaultTimestampLayout)
	sb, _, errB := scalarText(b, bulkdml.DefaultTimestampLayout)

	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}

	return sa == sb
}
