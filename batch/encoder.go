package batch

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shibukawa/bulkdml"
	"github.com/shopspring/decimal"
)

// maxIndirections bounds pointer and driver.Valuer unwrapping.
const maxIndirections = 8

// nullLiteral is emitted unquoted for NULL values.
const nullLiteral = "null"

// addslashes escapes backslash, both quote characters and NUL the way
// MySQL string literals expect.
var addslashes = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	"\x00", `\0`,
)

// EscapeString escapes s for embedding between single quotes.
func EscapeString(s string) string {
	return addslashes.Replace(s)
}

// EncodeValue renders a scalar as an SQL literal: NULL becomes the bare
// word null, everything else a single-quoted, escaped string.
func EncodeValue(value any, timestampLayout string) (string, error) {
	text, null, err := scalarText(value, timestampLayout)
	if err != nil {
		return "", err
	}

	if null {
		return nullLiteral, nil
	}

	return "'" + EscapeString(text) + "'", nil
}

// encodeKey renders a key value. Keys are always quoted strings, numeric
// ids included; a NULL key is reported as missing.
func encodeKey(value any, timestampLayout string) (string, error) {
	text, null, err := scalarText(value, timestampLayout)
	if err != nil {
		return "", err
	}

	if null {
		return "", bulkdml.ErrMissingKeyValue
	}

	return "'" + EscapeString(text) + "'", nil
}

// isNull reports whether value is nil, a nil pointer, or a driver.Valuer yielding nil.
func isNull(value any) bool {
	resolved, err := resolveScalar(value)
	return err == nil && resolved == nil
}

// scalarText returns the string representation of a scalar. The null
// result is true for nil values.
func scalarText(value any, timestampLayout string) (string, bool, error) {
	resolved, err := resolveScalar(value)
	if err != nil {
		return "", false, err
	}

	if resolved == nil {
		return "", true, nil
	}

	if timestampLayout == "" {
		timestampLayout = bulkdml.DefaultTimestampLayout
	}

	switch v := resolved.(type) {
	case string:
		return v, false, nil
	case []byte:
		return string(v), false, nil
	case bool:
		if v {
			return "1", false, nil
		}

		return "0", false, nil
	case time.Time:
		return v.Format(timestampLayout), false, nil
	case decimal.Decimal:
		return v.String(), false, nil
	case uuid.UUID:
		return v.String(), false, nil
	case fmt.Stringer:
		return v.String(), false, nil
	}

	rv := reflect.ValueOf(resolved)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), false, nil
	case reflect.Bool:
		if rv.Bool() {
			return "1", false, nil
		}

		return "0", false, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), false, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), false, nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), false, nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), false, nil
	default:
		return "", false, fmt.Errorf("%w: %T", bulkdml.ErrUnsupportedValue, value)
	}
}

// resolveScalar unwraps pointers and driver.Valuer implementations. The
// concrete types handled by scalarText are returned as they are.
func resolveScalar(value any) (any, error) {
	for range maxIndirections {
		switch v := value.(type) {
		case nil:
			return nil, nil
		case string, []byte, bool, time.Time, decimal.Decimal, uuid.UUID:
			return value, nil
		case driver.Valuer:
			rv := reflect.ValueOf(v)
			if rv.Kind() == reflect.Pointer && rv.IsNil() {
				return nil, nil
			}

			resolved, err := v.Value()
			if err != nil {
				return nil, fmt.Errorf("%w: %T: %v", bulkdml.ErrUnsupportedValue, value, err)
			}

			value = resolved

			continue
		}

		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Pointer {
			return value, nil
		}

		if rv.IsNil() {
			return nil, nil
		}

		value = rv.Elem().Interface()
	}

	return nil, fmt.Errorf("%w: too many indirections in %T", bulkdml.ErrUnsupportedValue, value)
}

// bindValue prepares a value for a bound parameter. Values database/sql
// converts by itself pass through; other scalars are bound as their text.
func bindValue(value any, timestampLayout string) (any, error) {
	resolved, err := resolveScalar(value)
	if err != nil {
		return nil, err
	}

	switch resolved.(type) {
	case nil, string, []byte, bool, time.Time, decimal.Decimal, uuid.UUID:
		return resolved, nil
	}

	switch reflect.ValueOf(resolved).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String, reflect.Bool:
		return resolved, nil
	}

	text, _, err := scalarText(resolved, timestampLayout)
	if err != nil {
		return nil, err
	}

	return text, nil
}
