package cliparser

import (
	"fmt"
	"reflect"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL evaluator.
// Registered functions are reachable through call(name, [args]).
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

var (
	nativeMapType  = reflect.TypeOf(map[string]any{})
	nativeListType = reflect.TypeOf([]any{})
)

type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return evalCEL(program, ctx.withDefaults())
}

func (e *celEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &celCompiledRule{program: program}, nil
}

func (e *celEvaluator) loadOrCompile(expression string) (celgo.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(celgo.Program); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv()
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(expression, program)
	}
	return program, nil
}

func (e *celEvaluator) buildEnv() (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("value", celgo.DynType),
		celgo.Variable("name", celgo.StringType),
		celgo.Variable("values", celgo.MapType(celgo.StringType, celgo.DynType)),
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("metadata", celgo.MapType(celgo.StringType, celgo.DynType)),
	}
	if e.registry != nil {
		opts = append(opts, celgo.Function("call",
			celgo.Overload("call_string",
				[]*celgo.Type{celgo.StringType},
				celgo.DynType,
				celgo.UnaryBinding(func(name ref.Val) ref.Val {
					return e.call(name, nil)
				}),
			),
			celgo.Overload("call_string_list",
				[]*celgo.Type{celgo.StringType, celgo.ListType(celgo.DynType)},
				celgo.DynType,
				celgo.BinaryBinding(func(name, args ref.Val) ref.Val {
					return e.call(name, args)
				}),
			),
		))
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) call(nameVal, argsVal ref.Val) ref.Val {
	name, ok := nameVal.Value().(string)
	if !ok {
		return types.NewErr("cliparser: call name must be string")
	}
	var args []any
	if argsVal != nil {
		native, err := argsVal.ConvertToNative(nativeListType)
		if err != nil {
			return types.NewErr("cliparser: call arguments: %v", err)
		}
		args, _ = native.([]any)
	}
	result, err := e.registry.Call(name, args...)
	if err != nil {
		return types.NewErr("%s", err.Error())
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}

type celCompiledRule struct {
	program celgo.Program
}

func (r *celCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	if r.program == nil {
		return nil, fmt.Errorf("cel compiled rule missing program")
	}
	return evalCEL(r.program, ctx.withDefaults())
}

func evalCEL(program celgo.Program, ctx RuleContext) (any, error) {
	out, _, err := program.Eval(ctx.bindings())
	if err != nil {
		return nil, err
	}
	return celNative(out)
}

// celNative unwraps CEL aggregates into plain Go maps and slices so rule
// results share one shape across engines.
func celNative(out ref.Val) (any, error) {
	switch out.(type) {
	case types.Null:
		return nil, nil
	case traits.Mapper:
		return out.ConvertToNative(nativeMapType)
	case traits.Lister:
		return out.ConvertToNative(nativeListType)
	default:
		return out.Value(), nil
	}
}
