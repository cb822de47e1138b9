package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// exitError carries a process exit code without printing anything further.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// app holds the state shared by every subcommand.
type app struct {
	stdout  io.Writer
	stderr  io.Writer
	environ func() []string

	viper   *viper.Viper
	cfgFile string
	config  engineConfig
	logger  *slog.Logger
}

func newApp(stdout, stderr io.Writer, environ func() []string) *app {
	return &app{
		stdout:  stdout,
		stderr:  stderr,
		environ: environ,
		viper:   viper.New(),
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "cliparse",
		Short: "Resolve declared options from arguments, environment and defaults",
		Long: `cliparse loads option definitions from a YAML or TOML schema file and
resolves them against the tokens given after "--" and the process
environment. Validators and handlers are rule expressions (expr, cel, js).

Examples:
  cliparse resolve -s options.yaml -- --port 8080 input.txt
  cliparse describe -s options.toml --format openapi`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "engine config file (yaml, toml or json)")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.StringP("schema", "s", "", "option schema file (.yaml, .yml or .toml)")
	_ = a.viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = a.viper.BindPFlag("schema", flags.Lookup("schema"))

	root.AddCommand(newResolveCmd(a))
	root.AddCommand(newDescribeCmd(a))
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := loadEngineConfig(a.viper, a.cfgFile)
	if err != nil {
		return err
	}
	a.config = cfg

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	handler := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Prefix: "cliparse",
		Level:  level,
	})
	a.logger = slog.New(handler)
	return nil
}
