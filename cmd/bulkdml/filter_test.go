package main

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shibukawa/bulkdml/batch"
)

func TestRowFilter(t *testing.T) {
	records := []*batch.Record{
		batch.NewRecord(batch.F("id", int64(1)), batch.F("status", "active")),
		batch.NewRecord(batch.F("id", int64(2)), batch.F("status", "banned")),
		batch.NewRecord(batch.F("id", int64(3)), batch.F("status", "active")),
	}

	filter, err := newRowFilter(`row.status == "active" && row.id > 1`)
	assert.NoError(t, err)

	selected, err := filter.Apply(records)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(selected))
	assert.Equal(t, records[2], selected[0])
}

func TestRowFilter_HasGuardsMissingColumns(t *testing.T) {
	records := []*batch.Record{
		batch.NewRecord(batch.F("id", int64(1))),
		batch.NewRecord(batch.F("id", int64(2)), batch.F("email", "b@example.com")),
	}

	filter, err := newRowFilter(`has(row.email)`)
	assert.NoError(t, err)

	selected, err := filter.Apply(records)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(selected))
	assert.Equal(t, records[1], selected[0])

	strict, err := newRowFilter(`row.email == "b@example.com"`)
	assert.NoError(t, err)

	_, err = strict.Apply(records)
	assert.Error(t, err)
}

func TestRowFilter_Invalid(t *testing.T) {
	_, err := newRowFilter(`row.id ==`)
	assert.IsError(t, err, ErrInvalidFilter)

	_, err = newRowFilter(`"not a bool"`)
	assert.IsError(t, err, ErrInvalidFilter)
}

func TestRowFilter_Nil(t *testing.T) {
	var filter *rowFilter

	records := []*batch.Record{batch.NewRecord(batch.F("id", 1))}

	selected, err := filter.Apply(records)
	assert.NoError(t, err)
	assert.Equal(t, records, selected)
}
