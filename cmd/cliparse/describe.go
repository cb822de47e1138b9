package main

import (
	"github.com/capnajax/cli-parser/schema/openapi"
	"github.com/spf13/cobra"
)

func newDescribeCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print the options declared by the schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := a.buildRegistry(a.config.registryOptions())
			if err != nil {
				return err
			}
			fields := registry.Describe()
			if format != "openapi" {
				return writeDocument(cmd.OutOrStdout(), format, fields)
			}
			doc, err := openapi.NewGenerator(
				openapi.WithCommand(cmd.Root().Name()),
				openapi.WithRootComponent("Options"),
			).Generate(fields)
			if err != nil {
				return err
			}
			return writeDocument(cmd.OutOrStdout(), "json", doc)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, yaml or openapi")
	return cmd
}
