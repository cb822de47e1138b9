package cliparser

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNoEvaluator is returned when a rule is built without an evaluator.
var ErrNoEvaluator = errors.New("cliparser: evaluator not configured")

// RuleContext carries the inputs a rule expression can read. Expressions see
// value, name, values, now and metadata.
type RuleContext struct {
	Value    any
	Name     string
	Values   map[string]any
	Now      *time.Time
	Metadata map[string]any
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Values == nil {
		ctx.Values = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	if ctx.Now == nil {
		return time.Now()
	}
	return *ctx.Now
}

func (ctx RuleContext) bindings() map[string]any {
	return map[string]any{
		"value":    ctx.Value,
		"name":     ctx.Name,
		"values":   ctx.Values,
		"now":      ctx.timestamp(),
		"metadata": ctx.Metadata,
	}
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MemoryProgramCache is a ProgramCache safe for concurrent use.
type MemoryProgramCache struct {
	programs sync.Map
}

// NewMemoryProgramCache constructs an empty in-memory cache.
func NewMemoryProgramCache() *MemoryProgramCache {
	return &MemoryProgramCache{}
}

func (c *MemoryProgramCache) Get(key string) (any, bool) {
	return c.programs.Load(key)
}

func (c *MemoryProgramCache) Set(key string, value any) {
	c.programs.Store(key, value)
}

// RuleOption configures a rule-backed validator or handler.
type RuleOption func(*ruleConfig)

type ruleConfig struct {
	logger   EvaluatorLogger
	metadata map[string]any
	message  string
	now      func() time.Time
}

// WithRuleLogger records every evaluation of the rule.
func WithRuleLogger(logger EvaluatorLogger) RuleOption {
	return func(cfg *ruleConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithRuleMetadata exposes metadata to the expression.
func WithRuleMetadata(metadata map[string]any) RuleOption {
	return func(cfg *ruleConfig) {
		cfg.metadata = cloneValueMap(metadata)
	}
}

// WithRuleMessage sets the rejection message used when a validator rule
// evaluates to false.
func WithRuleMessage(message string) RuleOption {
	return func(cfg *ruleConfig) {
		cfg.message = message
	}
}

// WithRuleClock overrides the time bound to now.
func WithRuleClock(now func() time.Time) RuleOption {
	return func(cfg *ruleConfig) {
		if now != nil {
			cfg.now = now
		}
	}
}

func applyRuleOptions(opts []RuleOption) ruleConfig {
	cfg := ruleConfig{
		logger: noopEvaluatorLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

type compiledRule struct {
	rule   CompiledRule
	engine string
	expr   string
	cfg    ruleConfig
}

func compileRule(evaluator Evaluator, expression string, opts []RuleOption) (*compiledRule, error) {
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	if expression == "" {
		return nil, fmt.Errorf("cliparser: expression must not be empty")
	}
	engine := evaluatorEngineName(evaluator)
	rule, err := evaluator.Compile(expression)
	if err != nil {
		return nil, wrapEvaluationError(engine, expression, "", err)
	}
	return &compiledRule{
		rule:   rule,
		engine: engine,
		expr:   expression,
		cfg:    applyRuleOptions(opts),
	}, nil
}

func (c *compiledRule) run(value any, name string, raw map[string]any) (any, error) {
	now := c.cfg.now()
	ctx := RuleContext{
		Value:    value,
		Name:     name,
		Values:   raw,
		Now:      &now,
		Metadata: c.cfg.metadata,
	}.withDefaults()
	start := time.Now()
	out, err := c.rule.Evaluate(ctx)
	err = wrapEvaluationError(c.engine, c.expr, name, err)
	c.cfg.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:   c.engine,
		Expr:     c.expr,
		Option:   name,
		Duration: time.Since(start),
		Err:      err,
	})
	return out, err
}

// RuleValidator compiles expression into a Validator. A true or empty string
// result accepts, false rejects, a non-empty string rejects with that message
// and nil defers to the next validator. Evaluation failures reject.
func RuleValidator(evaluator Evaluator, expression string, opts ...RuleOption) (Validator, error) {
	rule, err := compileRule(evaluator, expression, opts)
	if err != nil {
		return nil, err
	}
	return func(value any, name string, raw map[string]any) Verdict {
		out, err := rule.run(value, name, raw)
		if err != nil {
			return Reject(err.Error())
		}
		return rule.verdict(out, name)
	}, nil
}

// ExprValidator is RuleValidator backed by a fresh expr evaluator.
func ExprValidator(expression string, opts ...RuleOption) (Validator, error) {
	return RuleValidator(NewExprEvaluator(), expression, opts...)
}

func (c *compiledRule) verdict(out any, name string) Verdict {
	switch result := out.(type) {
	case nil:
		return Pass()
	case bool:
		if result {
			return Accept()
		}
		if c.cfg.message != "" {
			return Reject(c.cfg.message)
		}
		return Rejectf("option %q does not satisfy %s", name, c.expr)
	case string:
		if result == "" {
			return Accept()
		}
		return Reject(result)
	default:
		return Rejectf("rule %s for option %q returned unsupported %T", c.expr, name, out)
	}
}

// RuleHandler compiles expression into a Handler. A nil result defers. A map
// holding "value" continues with that value, or stops when "continue" is
// false. Any other result continues with the result itself. Evaluation
// failures surface as handler protocol errors.
func RuleHandler(evaluator Evaluator, expression string, opts ...RuleOption) (Handler, error) {
	rule, err := compileRule(evaluator, expression, opts)
	if err != nil {
		return nil, err
	}
	return func(value any, name string, raw map[string]any) HandlerResult {
		out, err := rule.run(value, name, raw)
		if err != nil {
			return HandlerResult{}
		}
		return handlerResultOf(out)
	}, nil
}

// ExprHandler is RuleHandler backed by a fresh expr evaluator.
func ExprHandler(expression string, opts ...RuleOption) (Handler, error) {
	return RuleHandler(NewExprEvaluator(), expression, opts...)
}

func handlerResultOf(out any) HandlerResult {
	if out == nil {
		return Defer()
	}
	shaped, ok := out.(map[string]any)
	if !ok {
		return Continue(out)
	}
	value, hasValue := shaped["value"]
	if !hasValue {
		return Continue(out)
	}
	if next, ok := shaped["continue"].(bool); ok && !next {
		return Stop(value)
	}
	return Continue(value)
}

// NewEvaluator returns the evaluator registered for engine: "expr" (the
// default when engine is empty), "cel" or "js". The js engine requires the
// js_eval build tag.
func NewEvaluator(engine string, cache ProgramCache, functions *FunctionRegistry) (Evaluator, error) {
	switch engine {
	case "", "expr":
		return NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(functions)), nil
	case "cel":
		return NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(functions)), nil
	case "js":
		if !jsEvaluatorAvailable() {
			return nil, fmt.Errorf("cliparser: js evaluator requires the js_eval build tag")
		}
		return NewJSEvaluator(JSWithProgramCache(cache), JSWithFunctionRegistry(functions)), nil
	default:
		return nil, fmt.Errorf("cliparser: unknown rule engine %q", engine)
	}
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch e.(type) {
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		if name := jsEngineName(e); name != "" {
			return name
		}
		return "custom"
	}
}
