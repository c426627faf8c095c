package batch

// resolveColumns returns the columns an update statement may touch.
//
// An explicit list is used as given. Otherwise the columns of every row
// are merged in first-seen order; with useFillable the first Model's
// fillable list stands in for the explicit list. A non-empty
// timestampColumn is appended, and the result is deduplicated keeping
// the first occurrence.
func resolveColumns(rows []Row, explicit []string, useFillable bool, timestampColumn string) []string {
	columns := explicit

	if len(columns) == 0 && useFillable {
		columns = fillableOf(rows)
	}

	if len(columns) == 0 {
		columns = inferColumns(rows)
	}

	if timestampColumn != "" {
		columns = append(columns[:len(columns):len(columns)], timestampColumn)
	}

	return dedupe(columns)
}

func fillableOf(rows []Row) []string {
	for _, row := range rows {
		if m, ok := row.(Model); ok {
			return m.Fillable()
		}
	}

	return nil
}

func inferColumns(rows []Row) []string {
	var columns []string

	for _, row := range rows {
		columns = append(columns, row.Columns()...)
	}

	return dedupe(columns)
}

func dedupe(columns []string) []string {
	seen := make(map[string]struct{}, len(columns))
	result := make([]string, 0, len(columns))

	for _, c := range columns {
		if _, ok := seen[c]; ok {
			continue
		}

		seen[c] = struct{}{}
		result = append(result, c)
	}

	return result
}
