package batch

import "strings"

// whenClause is one WHEN key = ... THEN ... branch.
type whenClause struct {
	key   any
	value any
}

// caseFragment holds the branches for one column. Rows without a branch
// fall through to ELSE and keep the stored value.
type caseFragment struct {
	column string
	whens  []whenClause
}

// buildCase collects the WHEN branches for column from the rows that write it.
func buildCase(rows []Row, column, key string) caseFragment {
	fragment := caseFragment{column: column}

	for _, row := range changedRows(rows, column) {
		fragment.whens = append(fragment.whens, whenClause{
			key:   valueOf(row, key),
			value: valueOf(row, column),
		})
	}

	return fragment
}

// skipped reports whether no row writes the column; such a column is
// left out of the SET clause.
func (f caseFragment) skipped() bool {
	return len(f.whens) == 0
}

// writeCase renders `col` = CASE WHEN `key` = k THEN v ... ELSE `col` END.
func (b *statementBuilder) writeCase(w *strings.Builder, f caseFragment, key string) error {
	column := b.ident(f.column)
	keyColumn := b.ident(key)

	w.WriteString(column)
	w.WriteString(" = CASE")

	for _, when := range f.whens {
		k, err := b.key(when.key)
		if err != nil {
			return err
		}

		v, err := b.value(when.value)
		if err != nil {
			return err
		}

		w.WriteString(" WHEN ")
		w.WriteString(keyColumn)
		w.WriteString(" = ")
		w.WriteString(k)
		w.WriteString(" THEN ")
		w.WriteString(v)
	}

	w.WriteString(" ELSE ")
	w.WriteString(column)
	w.WriteString(" END")

	return nil
}
