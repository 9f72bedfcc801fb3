package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for woundcore
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "woundcore",
		Short: "Wound assessment rules and scoring engine",
		Long: `Woundcore evaluates wound assessment answers against table schemas.

It derives the patient context (age, BMI, wound chronology, ankle/arm
ratio, risk flags), generates clinical findings from the constat tables,
computes the BWAT composite score and the Braden risk scales, and checks
answers against the bounds their schemas declare.

Configuration is loaded from .woundcore/config.yaml if present.
CLI flags override configuration file settings.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to config file (default: .woundcore/config.yaml)")
	flags.String("log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.String("log-dir", "", "Directory for run logs")
	flags.String("schema-dir", "", "Directory of <table-id>.yaml schemas overriding the built-ins")
	flags.String("schema-db", "", "SQLite schema database consulted before the built-ins")
	flags.String("reference-date", "", "Evaluation date (YYYY-MM-DD), default today")
	flags.StringSlice("constat-table", nil, "Constat table to generate (repeatable)")

	cmd.AddCommand(NewEvaluateCommand())
	cmd.AddCommand(NewVisibleCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewRiskCommand())
	cmd.AddCommand(NewSchemasCommand())

	return cmd
}
