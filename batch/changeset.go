package batch

// includeCase decides whether row gets a WHEN branch for column.
// Rows that are not included keep their stored value through ELSE.
func includeCase(row Row, column string) bool {
	return row.IsDirty(column)
}

// changedRows returns the rows that write column, in row order.
func changedRows(rows []Row, column string) []Row {
	var changed []Row

	for _, row := range rows {
		if includeCase(row, column) {
			changed = append(changed, row)
		}
	}

	return changed
}
