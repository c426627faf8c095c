package main

import (
	"fmt"
	"math"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/shibukawa/bulkdml/batch"
)

// loadRows reads a YAML or JSON sequence of mappings. Key order inside
// each mapping is kept, so inferred columns follow the file.
func loadRows(path string) ([]*batch.Record, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrInputFileNotExist, path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return parseRows(data)
}

func parseRows(data []byte) ([]*batch.Record, error) {
	var doc any
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("failed to parse rows: %w", err)
	}

	if doc == nil {
		return nil, nil
	}

	items, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrInvalidRowFile, doc)
	}

	records := make([]*batch.Record, 0, len(items))

	for i, item := range items {
		mapping, ok := item.(yaml.MapSlice)
		if !ok {
			return nil, fmt.Errorf("%w: item %d is %T", ErrInvalidRowFile, i, item)
		}

		record := batch.NewRecord()
		for _, entry := range mapping {
			record.SetValue(fmt.Sprint(entry.Key), normalizeValue(entry.Value))
		}

		records = append(records, record)
	}

	return records, nil
}

// normalizeValue turns decoder-specific scalars into the types the rest
// of the tool expects.
func normalizeValue(v any) any {
	switch n := v.(type) {
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n)
		}
	case int:
		return int64(n)
	}

	return v
}

func toRows(records []*batch.Record) []batch.Row {
	rows := make([]batch.Row, len(records))
	for i, r := range records {
		rows[i] = r
	}

	return rows
}
