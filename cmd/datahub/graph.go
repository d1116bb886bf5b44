package main

import (
	"github.com/felixgeelhaar/datahub/internal/app"
	"github.com/felixgeelhaar/datahub/internal/ports"
	"github.com/spf13/cobra"
)

var graphInputs []string

var graphCmd = &cobra.Command{
	Use:               "graph <definition>",
	Short:             "Print the Mermaid dataflow diagram of a pipeline definition",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: definitionArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dh := app.New(cmd.OutOrStdout()).WithLogger(ports.LoggerFromContext(cmd.Context()))
		return dh.Graph(cmd.Context(), args[0], graphInputs)
	},
}

func init() {
	graphCmd.Flags().StringArrayVar(&graphInputs, "input-table", nil, "input table descriptor as JSON (repeatable)")
}
