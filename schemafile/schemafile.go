// Package schemafile loads option definitions from YAML or TOML documents.
// Validators and handlers are declared as rule expressions and compiled with
// the rule engines of the cliparser package.
package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cliparser "github.com/capnajax/cli-parser"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a schema document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("schemafile: cannot infer format of %q", path)
	}
}

// File is a decoded schema document.
type File struct {
	// Engine is the default rule engine for every rule in the file.
	Engine  string  `yaml:"engine,omitempty" toml:"engine,omitempty"`
	Options []Entry `yaml:"options" toml:"options"`
}

// Entry declares one option definition. Arg is either a switch list or one of
// the reserved modes "positional" and "separator"; a single string that is not
// a reserved mode is read as one switch.
type Entry struct {
	Name        string `yaml:"name" toml:"name"`
	Arg         any    `yaml:"arg,omitempty" toml:"arg,omitempty"`
	Env         string `yaml:"env,omitempty" toml:"env,omitempty"`
	Default     any    `yaml:"default,omitempty" toml:"default,omitempty"`
	Type        string `yaml:"type,omitempty" toml:"type,omitempty"`
	Required    bool   `yaml:"required,omitempty" toml:"required,omitempty"`
	Silent      bool   `yaml:"silent,omitempty" toml:"silent,omitempty"`
	Description string `yaml:"description,omitempty" toml:"description,omitempty"`
	Validate    []Rule `yaml:"validate,omitempty" toml:"validate,omitempty"`
	Handle      []Rule `yaml:"handle,omitempty" toml:"handle,omitempty"`
}

// Rule is an expression compiled into a validator or handler.
type Rule struct {
	Expr    string `yaml:"expr" toml:"expr"`
	Engine  string `yaml:"engine,omitempty" toml:"engine,omitempty"`
	Message string `yaml:"message,omitempty" toml:"message,omitempty"`
}

// Load reads and decodes the schema file at path.
func Load(path string) (*File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schemafile: read %s: %w", path, err)
	}
	return Parse(data, format)
}

// Parse decodes data in the given format. Unknown fields are rejected.
func Parse(data []byte, format Format) (*File, error) {
	var file File
	switch format {
	case FormatYAML:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&file); err != nil {
			return nil, fmt.Errorf("schemafile: decode yaml: %w", err)
		}
	case FormatTOML:
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&file); err != nil {
			return nil, fmt.Errorf("schemafile: decode toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("schemafile: unsupported format %q", format)
	}
	return &file, nil
}

// BuildOption configures how rules are compiled.
type BuildOption func(*buildConfig)

type buildConfig struct {
	cache     cliparser.ProgramCache
	functions *cliparser.FunctionRegistry
	rule      []cliparser.RuleOption
}

// WithProgramCache shares compiled programs across rules.
func WithProgramCache(cache cliparser.ProgramCache) BuildOption {
	return func(cfg *buildConfig) {
		cfg.cache = cache
	}
}

// WithFunctions exposes registry functions to every rule.
func WithFunctions(registry *cliparser.FunctionRegistry) BuildOption {
	return func(cfg *buildConfig) {
		cfg.functions = registry
	}
}

// WithRuleOptions applies opts to every compiled rule.
func WithRuleOptions(opts ...cliparser.RuleOption) BuildOption {
	return func(cfg *buildConfig) {
		cfg.rule = append(cfg.rule, opts...)
	}
}

// Definitions converts every entry into a cliparser.Definition. Declaration
// problems such as a required option with a default are left for the
// registry to record; only malformed arg fields and rules that fail to
// compile are reported here.
func (f *File) Definitions(opts ...BuildOption) ([]cliparser.Definition, error) {
	cfg := buildConfig{cache: cliparser.NewMemoryProgramCache()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	b := &builder{cfg: cfg, engine: f.Engine, evaluators: map[string]cliparser.Evaluator{}}
	defs := make([]cliparser.Definition, 0, len(f.Options))
	var errs []error
	for i, entry := range f.Options {
		def, err := b.definition(entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("schemafile: option %d (%q): %w", i, entry.Name, err))
			continue
		}
		defs = append(defs, def)
	}
	return defs, errors.Join(errs...)
}

// Register adds the file's definitions to registry. Definitions that built
// cleanly are registered even when others failed.
func (f *File) Register(registry *cliparser.Registry, opts ...BuildOption) error {
	defs, buildErr := f.Definitions(opts...)
	addErr := registry.AddDefinitions(defs...)
	return errors.Join(buildErr, addErr)
}

type builder struct {
	cfg        buildConfig
	engine     string
	evaluators map[string]cliparser.Evaluator
}

func (b *builder) definition(entry Entry) (cliparser.Definition, error) {
	arg, err := parseArg(entry.Arg)
	if err != nil {
		return cliparser.Definition{}, err
	}
	def := cliparser.Definition{
		Name:        entry.Name,
		Arg:         arg,
		Env:         entry.Env,
		Default:     entry.Default,
		Type:        cliparser.OptionType(strings.ToLower(entry.Type)),
		Required:    entry.Required,
		Silent:      entry.Silent,
		Description: entry.Description,
	}

	var errs []error
	for _, rule := range entry.Validate {
		evaluator, err := b.evaluator(rule)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		opts := append([]cliparser.RuleOption{}, b.cfg.rule...)
		if rule.Message != "" {
			opts = append(opts, cliparser.WithRuleMessage(rule.Message))
		}
		validator, err := cliparser.RuleValidator(evaluator, rule.Expr, opts...)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		def.Validators = append(def.Validators, validator)
	}
	for _, rule := range entry.Handle {
		evaluator, err := b.evaluator(rule)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		handler, err := cliparser.RuleHandler(evaluator, rule.Expr, b.cfg.rule...)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		def.Handlers = append(def.Handlers, handler)
	}
	if len(errs) > 0 {
		return cliparser.Definition{}, errors.Join(errs...)
	}
	return def, nil
}

func (b *builder) evaluator(rule Rule) (cliparser.Evaluator, error) {
	engine := strings.ToLower(rule.Engine)
	if engine == "" {
		engine = strings.ToLower(b.engine)
	}
	if evaluator, ok := b.evaluators[engine]; ok {
		return evaluator, nil
	}
	evaluator, err := cliparser.NewEvaluator(engine, b.cfg.cache, b.cfg.functions)
	if err != nil {
		return nil, err
	}
	b.evaluators[engine] = evaluator
	return evaluator, nil
}

func parseArg(raw any) (cliparser.Arg, error) {
	switch typed := raw.(type) {
	case nil:
		return cliparser.Arg{}, nil
	case string:
		switch typed {
		case "positional":
			return cliparser.Positional, nil
		case "separator":
			return cliparser.Separator, nil
		default:
			return cliparser.Switches(typed), nil
		}
	case []any:
		switches := make([]string, 0, len(typed))
		for _, item := range typed {
			sw, ok := item.(string)
			if !ok {
				return cliparser.Arg{}, fmt.Errorf("arg entry %v (%T) is not a string", item, item)
			}
			switches = append(switches, sw)
		}
		return cliparser.Switches(switches...), nil
	case []string:
		return cliparser.Switches(typed...), nil
	default:
		return cliparser.Arg{}, fmt.Errorf("arg must be a switch list, %q or %q, got %T", "positional", "separator", raw)
	}
}
