package main

import (
	"github.com/felixgeelhaar/datahub/internal/app"
	"github.com/felixgeelhaar/datahub/internal/ports"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:               "validate <definition>",
	Short:             "Check a pipeline definition",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: definitionArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dh := app.New(cmd.OutOrStdout()).WithLogger(ports.LoggerFromContext(cmd.Context()))
		return dh.Validate(cmd.Context(), args[0])
	},
}
