package view

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/funcmetrics/funcmetrics/internal/metrics"
)

// Filter wraps a pre-compiled CEL expression evaluated against one record at
// a time. Variable names match the store's column names, so an expression
// reads like a WHERE clause: status == "error" && duration_ms > 100.
type Filter struct {
	expression string
	program    cel.Program
}

// CompileFilter parses and type-checks expr. Compile once, apply many times.
func CompileFilter(expr string) (*Filter, error) {
	env, err := cel.NewEnv(
		cel.Variable("sno", cel.IntType),
		cel.Variable("function_name", cel.StringType),
		cel.Variable("start_time", cel.StringType),
		cel.Variable("duration_ms", cel.IntType),
		cel.Variable("status", cel.StringType),
		cel.Variable("error", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create filter environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile filter %q: %w", expr, issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("filter %q must evaluate to bool, got %s", expr, ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build filter program %q: %w", expr, err)
	}

	return &Filter{expression: expr, program: prg}, nil
}

// Matches evaluates the filter against a single record.
func (f *Filter) Matches(rec metrics.Record) (bool, error) {
	out, _, err := f.program.Eval(map[string]interface{}{
		"sno":           rec.Seq,
		"function_name": rec.Function,
		"start_time":    rec.StartTime,
		"duration_ms":   rec.DurationMs,
		"status":        string(rec.Status),
		"error":         rec.Error,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate filter %q: %w", f.expression, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter %q returned non-bool: %T", f.expression, out.Value())
	}
	return result, nil
}

// Apply returns the subset of records matching the filter, in input order.
func (f *Filter) Apply(records []metrics.Record) ([]metrics.Record, error) {
	var matched []metrics.Record
	for _, rec := range records {
		ok, err := f.Matches(rec)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}
