package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/felixgeelhaar/datahub/internal/adapters/logging"
	"github.com/felixgeelhaar/datahub/internal/domain/definition"
	"github.com/felixgeelhaar/datahub/internal/domain/hub"
	"github.com/felixgeelhaar/datahub/internal/ports"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose   bool
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "datahub",
	Short: "Inspect and document table pipelines",
	Long: `Datahub reads a pipeline definition (YAML, TOML or HCL) and describes
the tables it produces: their ranks, joins, keys and dataflow.

  report    Markdown report with a Mermaid dataflow diagram
  graph     Mermaid diagram only
  validate  check a definition and print a summary`,
	SilenceErrors:     true, // We handle error formatting ourselves
	SilenceUsage:      true, // Don't show usage on error
	PersistentPreRunE: setupLogger,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	registerFlagCompletions()

	rootCmd.AddCommand(reportCmd, graphCmd, validateCmd, versionCmd)
}

// setupLogger stores a console logger built from the global flags in the
// command context.
func setupLogger(cmd *cobra.Command, _ []string) error {
	level, err := ports.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	if verbose && level > ports.LevelDebug {
		level = ports.LevelDebug
	}
	format, err := logging.ParseFormat(logFormat)
	if err != nil {
		return err
	}

	logger := logging.NewConsoleLogger(
		logging.WithOutput(cmd.ErrOrStderr()),
		logging.WithLevel(level),
		logging.WithFormat(format),
	)
	cmd.SetContext(ports.ContextWithLogger(cmd.Context(), logger))
	return nil
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var loadErr *definition.LoadError
	if errors.As(err, &loadErr) {
		msg := loadErr.Message
		if loadErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", loadErr.Context)
		}
		if loadErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", loadErr.Suggestion)
		}
		if verbose && loadErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", loadErr.Underlying)
		}
		return msg
	}

	var hubErr *hub.Error
	if errors.As(err, &hubErr) {
		if verbose {
			return hubErr.Format()
		}
		msg := hubErr.Message
		if hubErr.Step != "" {
			msg = fmt.Sprintf("step %q: %s", hubErr.Step, msg)
		}
		if hubErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", hubErr.Suggestion)
		}
		return msg
	}
	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}

func registerFlagCompletions() {
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text\tkey=value lines", "json\tone JSON object per line"}, cobra.ShellCompDirectiveNoFileComp
	})
}

// definitionArgs completes positional arguments with definition files.
func definitionArgs(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"yaml", "yml", "toml", "hcl"}, cobra.ShellCompDirectiveFilterFileExt
}
