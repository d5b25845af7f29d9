//nolint:revive // exported
package expression

import (
	"errors"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/file"
	"github.com/expr-lang/expr/vm"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/errmap"
)

// Env carries the variables visible to an expression. The compiler
// validates expression node parameters without running them; Eval exists
// for the editor's expression preview and for tests.
type Env struct {
	varMap map[string]any
}

func NewEnv(varMap map[string]any) Env {
	if varMap == nil {
		varMap = map[string]any{}
	}
	return Env{varMap: varMap}
}

func (e Env) VarMap() map[string]any {
	return e.varMap
}

type compileMode uint8

const (
	compileModeAny compileMode = iota
	compileModeBool
)

type expressionPhase uint8

const (
	expressionPhaseCompile expressionPhase = iota
	expressionPhaseRun
)

type programCacheKey struct {
	expression string
	mode       compileMode
}

var (
	programCache    sync.Map // map[programCacheKey]*vm.Program
	emptyCompileEnv = map[string]any{}
)

func compileProgram(expression string, mode compileMode, env map[string]any) (*vm.Program, error) {
	key := programCacheKey{expression: expression, mode: mode}
	if cached, ok := programCache.Load(key); ok {
		return cached.(*vm.Program), nil
	}

	compileEnv := env
	if compileEnv == nil {
		compileEnv = emptyCompileEnv
	}

	options := []expr.Option{expr.Env(compileEnv), expr.AllowUndefinedVariables()}
	switch mode {
	case compileModeBool:
		options = append(options, expr.AsBool())
	default:
		options = append(options, expr.AsAny())
	}

	program, err := expr.Compile(expression, options...)
	if err != nil {
		return nil, wrapExpressionError(expressionPhaseCompile, err)
	}
	programCache.Store(key, program)
	return program, nil
}

func wrapExpressionError(phase expressionPhase, err error) error {
	if err == nil {
		return nil
	}

	code := errmap.CodeExpressionRuntime
	phaseVerb := "evaluating"
	if phase == expressionPhaseCompile {
		code = errmap.CodeExpressionSyntax
		phaseVerb = "parsing"
	}

	var fileErr *file.Error
	if errors.As(err, &fileErr) {
		line := fileErr.Line
		column := fileErr.Column + 1
		location := ""
		if line > 0 {
			location = fmt.Sprintf(" at line %d", line)
			if column > 0 {
				location += fmt.Sprintf(" column %d", column)
			}
		}

		message := fmt.Sprintf("error %s expression%s: %s", phaseVerb, location, fileErr.Message)
		if snippet := fileErr.Snippet; snippet != "" {
			message += snippet
		}

		return errmap.New(code, message, err)
	}

	return errmap.New(code, fmt.Sprintf("error %s expression: %v", phaseVerb, err), err)
}

// Validate compiles an expression without running it. This is the only
// expression call the blueprint compiler makes: syntax is checked at
// generation time, evaluation happens inside the engine at runtime.
func Validate(expressionString string) error {
	_, err := compileProgram(expressionString, compileModeAny, nil)
	return err
}

// ValidateBool compiles an expression that must produce a boolean.
func ValidateBool(expressionString string) error {
	_, err := compileProgram(expressionString, compileModeBool, nil)
	return err
}

// Eval runs an expression against the env.
func Eval(env Env, expressionString string) (any, error) {
	program, err := compileProgram(expressionString, compileModeAny, env.varMap)
	if err != nil {
		return nil, err
	}
	output, err := expr.Run(program, env.varMap)
	if err != nil {
		return nil, wrapExpressionError(expressionPhaseRun, err)
	}
	return output, nil
}

// EvalBool runs a boolean expression against the env.
func EvalBool(env Env, expressionString string) (bool, error) {
	program, err := compileProgram(expressionString, compileModeBool, env.varMap)
	if err != nil {
		return false, err
	}
	output, err := expr.Run(program, env.varMap)
	if err != nil {
		return false, wrapExpressionError(expressionPhaseRun, err)
	}
	result, ok := output.(bool)
	if !ok {
		return false, errmap.New(errmap.CodeExpressionRuntime, fmt.Sprintf("expected bool result, got %T", output), nil)
	}
	return result, nil
}
