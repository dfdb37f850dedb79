// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package expression

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/tombee/flowkit/pkg/errors"
)

// Evaluator compiles and evaluates validator expressions.
// Compiled programs are cached, so a single Evaluator should be shared
// across registries. It is safe for concurrent use.
type Evaluator struct {
	cache map[string]*vm.Program
	mu    sync.RWMutex
}

// New creates a new expression evaluator.
func New() *Evaluator {
	return &Evaluator{
		cache: make(map[string]*vm.Program),
	}
}

// Check evaluates a validator expression for a single parameter value.
// params is exposed to the expression as "params" and may be nil.
func (e *Evaluator) Check(expression string, value any, params map[string]any) (bool, error) {
	if params == nil {
		params = map[string]any{}
	}
	return e.Evaluate(expression, map[string]any{
		"value":  value,
		"params": params,
	})
}

// Evaluate evaluates an expression against the given environment.
// An empty expression is always true.
func (e *Evaluator) Evaluate(expression string, env map[string]any) (bool, error) {
	if expression == "" {
		return true, nil
	}

	program, err := e.compile(expression)
	if err != nil {
		return false, &errors.ValidationError{
			Field:      "validator",
			Message:    fmt.Sprintf("failed to compile expression: %s", err.Error()),
			Suggestion: "check expression syntax; use 'value' for the parameter and 'params' for its siblings",
		}
	}

	runEnv := make(map[string]any, len(env)+len(builtins))
	for k, v := range env {
		runEnv[k] = v
	}
	for k, v := range builtins {
		runEnv[k] = v
	}

	result, err := expr.Run(program, runEnv)
	if err != nil {
		return false, &errors.ValidationError{
			Field:   "validator",
			Message: fmt.Sprintf("expression evaluation failed: %s", err.Error()),
		}
	}

	ok, isBool := result.(bool)
	if !isBool {
		return false, &errors.ValidationError{
			Field:   "validator",
			Message: fmt.Sprintf("expression must return boolean, got %T (%v)", result, result),
		}
	}
	return ok, nil
}

func (e *Evaluator) compile(expression string) (*vm.Program, error) {
	e.mu.RLock()
	if prog, ok := e.cache[expression]; ok {
		e.mu.RUnlock()
		return prog, nil
	}
	e.mu.RUnlock()

	env := make(map[string]any, len(builtins)+2)
	for k, v := range builtins {
		env[k] = v
	}

	prog, err := expr.Compile(expression,
		expr.Env(env),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[expression] = prog
	e.mu.Unlock()

	return prog, nil
}

// CacheSize returns the number of cached expressions.
func (e *Evaluator) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}
