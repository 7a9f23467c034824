package main

import (
	"github.com/spf13/cobra"

	"harvest/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel  string
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Aggregate Markdown frontmatter into a schema-driven output document",
	Long: "Harvest collects the frontmatter of many Markdown documents and folds it\n" +
		"into one structured output (JSON/YAML/TOML/Markdown), steered by x-* directives\n" +
		"embedded in a JSON Schema.",
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logging.Init(rootFlags.logLevel, rootFlags.logFormat, nil)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}
