package main

import (
	"fmt"

	cliparser "github.com/capnajax/cli-parser"
	"github.com/capnajax/cli-parser/metrics"
	"github.com/capnajax/cli-parser/schemafile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// exitParseFailed is returned when the cycle finishes with a non-empty error
// map.
const exitParseFailed = 2

func newResolveCmd(a *app) *cobra.Command {
	var (
		format      string
		withTraces  bool
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "resolve [flags] -- [tokens...]",
		Short: "Resolve options and print the values or the error map",
		Long: `resolve parses the tokens after "--" against the schema, reading
environment bindings from the process environment. It prints the resolved
values on success and the error map otherwise, exiting with status 2.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens := args
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				tokens = args[dash:]
			}

			var (
				promRegistry *prometheus.Registry
				logger       cliparser.ParseLogger = cliparser.NewSlogParseLogger(a.logger)
				ruleOpts     []cliparser.RuleOption
			)
			if metricsFile != "" {
				promRegistry = prometheus.NewRegistry()
				collector := metrics.NewCollector(metrics.Config{}, promRegistry)
				logger = cliparser.ParseLoggers{logger, collector}
				ruleOpts = append(ruleOpts, cliparser.WithRuleLogger(collector))
			}

			opts := append(a.config.registryOptions(),
				cliparser.WithArgs(tokens),
				cliparser.WithEnviron(a.environ()),
				cliparser.WithLogger(logger),
			)
			registry, err := a.buildRegistry(opts, schemafile.WithRuleOptions(ruleOpts...))
			if err != nil {
				return err
			}

			ok := registry.Parse()
			if err := writeDocument(cmd.OutOrStdout(), format, newResolveOutput(registry.Result(), withTraces)); err != nil {
				return err
			}
			if promRegistry != nil {
				if err := prometheus.WriteToTextfile(metricsFile, promRegistry); err != nil {
					return fmt.Errorf("write metrics: %w", err)
				}
			}
			if !ok {
				return &exitError{code: exitParseFailed}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().BoolVar(&withTraces, "trace", false, "include per-option provenance")
	cmd.Flags().StringVar(&metricsFile, "metrics-textfile", "", "write Prometheus metrics to this file")
	return cmd
}

// buildRegistry loads the schema and registers its definitions. Rules that
// fail to compile abort; declaration problems are left in the registry's
// error map.
func (a *app) buildRegistry(opts []cliparser.Option, buildOpts ...schemafile.BuildOption) (*cliparser.Registry, error) {
	if a.config.Schema == "" {
		return nil, fmt.Errorf("no schema file: use --schema or %s_SCHEMA", EnvPrefix)
	}
	file, err := schemafile.Load(a.config.Schema)
	if err != nil {
		return nil, err
	}
	if file.Engine == "" {
		file.Engine = a.config.Engine
	}
	defs, err := file.Definitions(buildOpts...)
	if err != nil {
		return nil, err
	}

	registry := cliparser.NewRegistry(opts...)
	if err := registry.AddDefinitions(defs...); err != nil {
		a.logger.Debug("schema declares invalid options", "schema", a.config.Schema, "error", err)
	}
	return registry, nil
}
