package main

import (
	"github.com/spf13/cobra"

	"debtguardian/internal/version"
)

var (
	// repoRootFlag is the CLI --repo-root flag value
	repoRootFlag string
)

var rootCmd = &cobra.Command{
	Use:   "debtguardian",
	Short: "DebtGuardian - technical debt smell analysis",
	Long: `DebtGuardian slices source files into class and method units, routes each
slice through smell detectors (Blob, DataClass, FeatureEnvy, LongMethod), and
aggregates the results into a deterministic, deduplicated finding report.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("DebtGuardian version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&repoRootFlag, "repo-root", ".",
		"Repository root containing the .debtguardian configuration")
}
