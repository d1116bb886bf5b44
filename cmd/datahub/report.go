package main

import (
	"github.com/felixgeelhaar/datahub/internal/app"
	"github.com/felixgeelhaar/datahub/internal/ports"
	"github.com/spf13/cobra"
)

var reportInputs []string

var reportCmd = &cobra.Command{
	Use:   "report <definition>",
	Short: "Render a Markdown report for a pipeline definition",
	Long: `Render a Markdown report describing every table of a pipeline:
inputs, ranks, joins, keys, step descriptions and a Mermaid dataflow diagram.

Extra input tables can be given as JSON descriptors:

  datahub report pipeline.yaml --input-table '{"name":"events","keys":["id"],"join":"left"}'`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: definitionArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dh := app.New(cmd.OutOrStdout()).WithLogger(ports.LoggerFromContext(cmd.Context()))
		return dh.Report(cmd.Context(), args[0], reportInputs)
	},
}

func init() {
	reportCmd.Flags().StringArrayVar(&reportInputs, "input-table", nil, "input table descriptor as JSON (repeatable)")
}
