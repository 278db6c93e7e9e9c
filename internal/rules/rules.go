// Package rules compiles per-parameter CEL predicates used for textual checks.
package rules

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

var (
	envOnce sync.Once
	env     *cel.Env
	envErr  error

	mu       sync.RWMutex
	prgCache = make(map[string]cel.Program)
)

func celEnv() (*cel.Env, error) {
	envOnce.Do(func() {
		env, envErr = cel.NewEnv(
			cel.Variable("result", cel.StringType),
			cel.Variable("spec", cel.StringType),
		)
		if envErr != nil {
			envErr = fmt.Errorf("failed to create CEL environment: %w", envErr)
		}
	})
	return env, envErr
}

// Rule is a compiled boolean expression over the lower-cased result and spec text.
type Rule struct {
	expr string
	prg  cel.Program
}

// Compile parses and type-checks expr. Programs are cached by expression text.
func Compile(expr string) (*Rule, error) {
	mu.RLock()
	prg, hit := prgCache[expr]
	mu.RUnlock()
	if hit {
		return &Rule{expr: expr, prg: prg}, nil
	}

	e, err := celEnv()
	if err != nil {
		return nil, err
	}
	ast, issues := e.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("rule %q must evaluate to bool, got %s", expr, ast.OutputType())
	}
	p, err := e.Program(ast,
		cel.InterruptCheckFrequency(100),
		cel.CostLimit(10000),
	)
	if err != nil {
		return nil, fmt.Errorf("program: %w", err)
	}

	mu.Lock()
	prgCache[expr] = p
	mu.Unlock()
	return &Rule{expr: expr, prg: p}, nil
}

// Match evaluates the rule.
func (r *Rule) Match(result, spec string) (bool, error) {
	out, _, err := r.prg.Eval(map[string]any{
		"result": result,
		"spec":   spec,
	})
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", r.expr, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule %q returned %T", r.expr, out.Value())
	}
	return b, nil
}

func (r *Rule) String() string {
	if r == nil {
		return ""
	}
	return r.expr
}
