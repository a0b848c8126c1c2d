// Package filter compiles CEL expressions that select request metrics.
package filter

import (
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"
)

// MetricVariables are the names a filter may reference, with their CEL types.
var MetricVariables = map[string]*cel.Type{
	"model_used":                cel.StringType,
	"complexity":                cel.StringType,
	"classifier_used":           cel.StringType,
	"latency_ms":                cel.DoubleType,
	"query_length":              cel.IntType,
	"classification_confidence": cel.DoubleType,
	"prompt_tokens":             cel.IntType,
	"completion_tokens":         cel.IntType,
	"total_tokens":              cel.IntType,
	"estimated_cost_usd":        cel.DoubleType,
}

var (
	envOnce sync.Once
	env     *cel.Env
	envErr  error
)

func metricEnv() (*cel.Env, error) {
	envOnce.Do(func() {
		opts := make([]cel.EnvOption, 0, len(MetricVariables))
		for name, typ := range MetricVariables {
			opts = append(opts, cel.Variable(name, typ))
		}
		env, envErr = cel.NewEnv(opts...)
	})
	return env, envErr
}

// Filter is a compiled boolean expression. It is safe for concurrent use.
type Filter struct {
	expr    string
	program cel.Program
}

// Compile parses and type-checks expr against MetricVariables.
// The expression must evaluate to a bool.
func Compile(expr string) (*Filter, error) {
	e, err := metricEnv()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create filter environment")
	}

	ast, issues := e.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, errors.Wrapf(issues.Err(), "invalid filter %q", expr)
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, errors.Errorf("filter %q must return bool, got %s", expr, ast.OutputType())
	}

	program, err := e.Program(ast)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build filter program %q", expr)
	}
	return &Filter{expr: expr, program: program}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	return f.expr
}

// Matches evaluates the filter against vars.
func (f *Filter) Matches(vars map[string]any) (bool, error) {
	out, _, err := f.program.Eval(vars)
	if err != nil {
		return false, errors.Wrapf(err, "failed to evaluate filter %q", f.expr)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, errors.Errorf("filter %q returned %T", f.expr, out.Value())
	}
	return matched, nil
}
