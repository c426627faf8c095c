package batch

import (
	"fmt"
	"strings"

	"github.com/shibukawa/bulkdml"
)

// Statement is a ready-to-execute SQL statement. Args is empty when
// values are embedded as literals.
type Statement struct {
	SQL  string
	Args []any
}

// statementBuilder renders identifiers and values for one statement,
// either as escaped literals or as dialect placeholders with bound args.
type statementBuilder struct {
	dialect bulkdml.Dialect
	bind    bool
	layout  string
	args    []any
}

func newStatementBuilder(dialect bulkdml.Dialect, bind bool, layout string) *statementBuilder {
	return &statementBuilder{dialect: dialect, bind: bind, layout: layout}
}

func (b *statementBuilder) ident(name string) string {
	return b.dialect.QuoteIdent(name)
}

func (b *statementBuilder) placeholder(value any) (string, error) {
	bound, err := bindValue(value, b.layout)
	if err != nil {
		return "", err
	}

	b.args = append(b.args, bound)

	return b.dialect.Placeholder(len(b.args)), nil
}

func (b *statementBuilder) value(value any) (string, error) {
	if b.bind {
		return b.placeholder(value)
	}

	return EncodeValue(value, b.layout)
}

func (b *statementBuilder) key(value any) (string, error) {
	if b.bind {
		if isNull(value) {
			return "", bulkdml.ErrMissingKeyValue
		}

		return b.placeholder(value)
	}

	return encodeKey(value, b.layout)
}

func (b *statementBuilder) statement(sql string) Statement {
	return Statement{SQL: sql, Args: b.args}
}

// collectKeys returns the distinct key values of rows in first-seen order.
// offset is added to row indexes in error messages.
func collectKeys(rows []Row, key string, offset int, layout string) ([]any, error) {
	seen := make(map[string]struct{}, len(rows))
	keys := make([]any, 0, len(rows))

	for i, row := range rows {
		value, ok := row.Value(key)
		if !ok || isNull(value) {
			return nil, fmt.Errorf("%w: row %d has no value for %q", bulkdml.ErrMissingKeyValue, offset+i, key)
		}

		text, _, err := scalarText(value, layout)
		if err != nil {
			return nil, fmt.Errorf("row %d key %q: %w", offset+i, key, err)
		}

		if _, dup := seen[text]; dup {
			continue
		}

		seen[text] = struct{}{}
		keys = append(keys, value)
	}

	return keys, nil
}

// assembleUpdate joins the CASE fragments into
// UPDATE t SET f1, f2 WHERE key IN (k1, k2). It returns false when every
// fragment was skipped and there is nothing to write.
func (b *statementBuilder) assembleUpdate(table, key string, fragments []caseFragment, keys []any) (Statement, bool, error) {
	var set strings.Builder

	written := 0

	for _, fragment := range fragments {
		if fragment.skipped() {
			continue
		}

		if written > 0 {
			set.WriteString(", ")
		}

		if err := b.writeCase(&set, fragment, key); err != nil {
			return Statement{}, false, fmt.Errorf("column %q: %w", fragment.column, err)
		}

		written++
	}

	if written == 0 {
		return Statement{}, false, nil
	}

	inList := make([]string, 0, len(keys))

	for _, k := range keys {
		rendered, err := b.key(k)
		if err != nil {
			return Statement{}, false, err
		}

		inList = append(inList, rendered)
	}

	var sql strings.Builder

	sql.WriteString("UPDATE ")
	sql.WriteString(b.ident(table))
	sql.WriteString(" SET ")
	sql.WriteString(set.String())
	sql.WriteString(" WHERE ")
	sql.WriteString(b.ident(key))
	sql.WriteString(" IN (")
	sql.WriteString(strings.Join(inList, ", "))
	sql.WriteString(")")

	return b.statement(sql.String()), true, nil
}

// assembleInsert renders INSERT INTO t (c1, c2) VALUES (...), (...).
// Missing columns are bound as NULL.
func (b *statementBuilder) assembleInsert(table string, columns []string, rows []*Record, offset int) (Statement, error) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = b.ident(c)
	}

	var sql strings.Builder

	sql.WriteString("INSERT INTO ")
	sql.WriteString(b.ident(table))
	sql.WriteString(" (")
	sql.WriteString(strings.Join(quoted, ", "))
	sql.WriteString(") VALUES ")

	for i, row := range rows {
		if i > 0 {
			sql.WriteString(", ")
		}

		sql.WriteString("(")

		for j, c := range columns {
			if j > 0 {
				sql.WriteString(", ")
			}

			ph, err := b.value(valueOf(row, c))
			if err != nil {
				return Statement{}, fmt.Errorf("row %d column %q: %w", offset+i, c, err)
			}

			sql.WriteString(ph)
		}

		sql.WriteString(")")
	}

	return b.statement(sql.String()), nil
}
