package main

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/shibukawa/bulkdml/batch"
)

// rowFilter selects rows with a CEL boolean expression over the variable
// row, e.g. row.status == "active" && row.id > 10.
type rowFilter struct {
	program cel.Program
}

func newRowFilter(expression string) (*rowFilter, error) {
	env, err := cel.NewEnv(
		cel.Variable("row", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, issues.Err())
	}

	if !ast.OutputType().IsExactType(cel.BoolType) && !ast.OutputType().IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w: expression returns %s, not bool", ErrInvalidFilter, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}

	return &rowFilter{program: program}, nil
}

// Apply returns the records the expression accepts, in order. A nil
// filter accepts every record.
func (f *rowFilter) Apply(records []*batch.Record) ([]*batch.Record, error) {
	if f == nil {
		return records, nil
	}

	var selected []*batch.Record

	for i, record := range records {
		out, _, err := f.program.Eval(map[string]any{"row": record.Map()})
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		keep, ok := out.Value().(bool)
		if !ok {
			return nil, fmt.Errorf("%w: row %d evaluated to %v", ErrInvalidFilter, i, out.Value())
		}

		if keep {
			selected = append(selected, record)
		}
	}

	return selected, nil
}
